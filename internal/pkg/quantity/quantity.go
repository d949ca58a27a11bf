package quantity

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrIncompatibleDimensions is returned when an operation mixes quantities
	// whose dimensions do not reduce to a common base.
	ErrIncompatibleDimensions = errors.New("incompatible dimensions")
	// ErrNotDimensionless is returned when a power operation is attempted on a
	// quantity that carries dimensions.
	ErrNotDimensionless = errors.New("quantity is not dimensionless")
	// ErrDivideByZero is returned when a ratio or division has a zero divisor.
	ErrDivideByZero = errors.New("divide by zero")
)

// Dimension holds the base-dimension exponents of a unit. Volume is Length^3,
// power is Mass*Length^2/Time^3. Currency is carried as its own dimension so
// that cost terms cannot silently combine with physical terms.
type Dimension struct {
	Mass     int
	Length   int
	Time     int
	Currency int
}

func (d Dimension) add(o Dimension) Dimension {
	return Dimension{d.Mass + o.Mass, d.Length + o.Length, d.Time + o.Time, d.Currency + o.Currency}
}

func (d Dimension) sub(o Dimension) Dimension {
	return Dimension{d.Mass - o.Mass, d.Length - o.Length, d.Time - o.Time, d.Currency - o.Currency}
}

func (d Dimension) scale(n int) Dimension {
	return Dimension{d.Mass * n, d.Length * n, d.Time * n, d.Currency * n}
}

// IsDimensionless reports whether all base-dimension exponents are zero.
func (d Dimension) IsDimensionless() bool {
	return d == Dimension{}
}

// Unit is a named scale of a dimension. Factor converts a value in this unit
// to the coherent base (SI plus USD).
type Unit struct {
	Name   string
	Dim    Dimension
	Factor float64
}

// Product returns the unit formed by multiplying two units.
func Product(a, b Unit) Unit {
	return Unit{
		Name:   a.Name + "*" + b.Name,
		Dim:    a.Dim.add(b.Dim),
		Factor: a.Factor * b.Factor,
	}
}

// Per returns the unit formed by dividing the numerator unit by the
// denominator unit.
func Per(num, den Unit) Unit {
	return Unit{
		Name:   num.Name + "/(" + den.Name + ")",
		Dim:    num.Dim.sub(den.Dim),
		Factor: num.Factor / den.Factor,
	}
}

// Quantity is a scalar value tagged with its unit.
type Quantity struct {
	Value float64
	Unit  Unit
}

// New returns a quantity of the given value and unit.
func New(value float64, unit Unit) Quantity {
	return Quantity{Value: value, Unit: unit}
}

func (q Quantity) String() string {
	if q.Unit.Dim.IsDimensionless() && q.Unit.Factor == 1 {
		return fmt.Sprintf("%g", q.Value)
	}
	return fmt.Sprintf("%g %s", q.Value, q.Unit.Name)
}

// Base returns the quantity's value expressed in coherent base units.
func (q Quantity) Base() float64 {
	return q.Value * q.Unit.Factor
}

// Convert expresses the quantity in the target unit. The dimensions of both
// units must match.
func (q Quantity) Convert(to Unit) (Quantity, error) {
	if q.Unit.Dim != to.Dim {
		return Quantity{}, fmt.Errorf("%w: %s to %s", ErrIncompatibleDimensions, q.Unit.Name, to.Name)
	}
	return Quantity{Value: q.Base() / to.Factor, Unit: to}, nil
}

// Mul multiplies two quantities, combining their units.
func Mul(a, b Quantity) Quantity {
	return Quantity{Value: a.Value * b.Value, Unit: Product(a.Unit, b.Unit)}
}

// Div divides quantity a by quantity b, combining their units.
func Div(a, b Quantity) (Quantity, error) {
	if b.Value == 0 {
		return Quantity{}, fmt.Errorf("%w: %s / %s", ErrDivideByZero, a, b.Unit.Name)
	}
	return Quantity{Value: a.Value / b.Value, Unit: Per(a.Unit, b.Unit)}, nil
}

// Add sums two quantities after converting b into a's unit.
func Add(a, b Quantity) (Quantity, error) {
	bc, err := b.Convert(a.Unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: a.Value + bc.Value, Unit: a.Unit}, nil
}

// Scale multiplies a quantity by a bare number, keeping its unit.
func Scale(q Quantity, f float64) Quantity {
	return Quantity{Value: q.Value * f, Unit: q.Unit}
}

// Ratio reduces a/b to a dimensionless value. The two quantities must share a
// dimension and b must be nonzero.
func Ratio(a, b Quantity) (float64, error) {
	if a.Unit.Dim != b.Unit.Dim {
		return 0, fmt.Errorf("%w: %s over %s", ErrIncompatibleDimensions, a.Unit.Name, b.Unit.Name)
	}
	if b.Value == 0 {
		return 0, fmt.Errorf("%w: reference %s is zero", ErrDivideByZero, b.Unit.Name)
	}
	return a.Base() / b.Base(), nil
}

// Pow raises a quantity to an arbitrary real exponent. The base must be
// dimensionless; a fractional power of a dimensioned quantity has no defined
// unit.
func Pow(q Quantity, exp float64) (Quantity, error) {
	if !q.Unit.Dim.IsDimensionless() {
		return Quantity{}, fmt.Errorf("%w: %s**%g", ErrNotDimensionless, q.Unit.Name, exp)
	}
	return Quantity{Value: math.Pow(q.Base(), exp), Unit: Dimensionless}, nil
}

// Dimensionless reports whether the quantity carries no dimensions.
func (q Quantity) Dimensionless() bool {
	return q.Unit.Dim.IsDimensionless()
}
