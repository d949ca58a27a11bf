package quantity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownUnit is returned when a unit string names a symbol outside the
// supported set.
var ErrUnknownUnit = errors.New("unknown unit")

// Named units. Factors convert to SI base units and USD.
var (
	Dimensionless = Unit{Name: "dimensionless", Dim: Dimension{}, Factor: 1}

	Meter = Unit{Name: "m", Dim: Dimension{Length: 1}, Factor: 1}
	Foot  = Unit{Name: "ft", Dim: Dimension{Length: 1}, Factor: 0.3048}
	Inch  = Unit{Name: "in", Dim: Dimension{Length: 1}, Factor: 0.0254}
	Mile  = Unit{Name: "mile", Dim: Dimension{Length: 1}, Factor: 1609.344}

	Second = Unit{Name: "s", Dim: Dimension{Time: 1}, Factor: 1}
	Hour   = Unit{Name: "h", Dim: Dimension{Time: 1}, Factor: 3600}
	Day    = Unit{Name: "d", Dim: Dimension{Time: 1}, Factor: 86400}

	Kilogram = Unit{Name: "kg", Dim: Dimension{Mass: 1}, Factor: 1}

	CubicMeter          = Unit{Name: "m^3", Dim: Dimension{Length: 3}, Factor: 1}
	USGallon            = Unit{Name: "gal", Dim: Dimension{Length: 3}, Factor: 3.785411784e-3}
	CubicMeterPerSecond = Unit{Name: "m^3/s", Dim: Dimension{Length: 3, Time: -1}, Factor: 1}
	// MGD is million US gallons per day, the customary flow basis of water
	// treatment cost curves.
	MGD = Unit{Name: "MGD", Dim: Dimension{Length: 3, Time: -1}, Factor: 1e6 * 3.785411784e-3 / 86400}

	Watt         = Unit{Name: "W", Dim: Dimension{Mass: 1, Length: 2, Time: -3}, Factor: 1}
	Kilowatt     = Unit{Name: "kW", Dim: Dimension{Mass: 1, Length: 2, Time: -3}, Factor: 1e3}
	KilowattHour = Unit{Name: "kWh", Dim: Dimension{Mass: 1, Length: 2, Time: -2}, Factor: 3.6e6}

	USD        = Unit{Name: "USD", Dim: Dimension{Currency: 1}, Factor: 1}
	MillionUSD = Unit{Name: "MUSD", Dim: Dimension{Currency: 1}, Factor: 1e6}
)

var symbols = map[string]Unit{
	"dimensionless": Dimensionless,
	"none":          Dimensionless,
	"m":             Meter,
	"meter":         Meter,
	"ft":            Foot,
	"foot":          Foot,
	"in":            Inch,
	"inch":          Inch,
	"mi":            Mile,
	"mile":          Mile,
	"s":             Second,
	"sec":           Second,
	"h":             Hour,
	"hr":            Hour,
	"d":             Day,
	"day":           Day,
	"kg":            Kilogram,
	"gal":           USGallon,
	"MGD":           MGD,
	"W":             Watt,
	"kW":            Kilowatt,
	"kWh":           KilowattHour,
	"USD":           USD,
	"MUSD":          MillionUSD,
}

// ParseUnit resolves a unit string of the form used by the parameter
// database, e.g. "m^3/s", "USD/(mile*in)", "dimensionless". The grammar is
// a product of powered symbols, optionally divided by further products:
// successive "/" terms all divide.
func ParseUnit(s string) (Unit, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unit{}, fmt.Errorf("%w: empty unit string", ErrUnknownUnit)
	}

	u := Unit{Name: s, Dim: Dimension{}, Factor: 1}
	for i, part := range splitTop(s, '/') {
		p, err := parseProduct(part)
		if err != nil {
			return Unit{}, err
		}
		if i == 0 {
			u.Dim = u.Dim.add(p.Dim)
			u.Factor *= p.Factor
		} else {
			u.Dim = u.Dim.sub(p.Dim)
			u.Factor /= p.Factor
		}
	}
	return u, nil
}

func parseProduct(s string) (Unit, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = s[1 : len(s)-1]
	}

	u := Unit{Factor: 1}
	for _, tok := range splitTop(s, '*') {
		f, err := parseFactor(tok)
		if err != nil {
			return Unit{}, err
		}
		u.Dim = u.Dim.add(f.Dim)
		u.Factor *= f.Factor
	}
	return u, nil
}

func parseFactor(s string) (Unit, error) {
	s = strings.TrimSpace(s)
	sym, exp := s, 1
	if i := strings.Index(s, "^"); i >= 0 {
		n, err := strconv.Atoi(strings.TrimSpace(s[i+1:]))
		if err != nil {
			return Unit{}, fmt.Errorf("%w: bad exponent in %q", ErrUnknownUnit, s)
		}
		sym, exp = strings.TrimSpace(s[:i]), n
	}

	base, ok := symbols[sym]
	if !ok {
		return Unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, sym)
	}

	u := Unit{Dim: base.Dim.scale(exp), Factor: 1}
	for i := 0; i < exp; i++ {
		u.Factor *= base.Factor
	}
	for i := 0; i > exp; i-- {
		u.Factor /= base.Factor
	}
	return u, nil
}

// splitTop splits on sep, ignoring separators inside parentheses.
func splitTop(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
