package main

import (
	"encoding/json"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/wtrsys/zeroflow/internal/pkg/costing"
	"github.com/wtrsys/zeroflow/internal/pkg/database"
	"github.com/wtrsys/zeroflow/internal/pkg/database/jsondb"
	"github.com/wtrsys/zeroflow/internal/pkg/datastreams/mongodb"
	"github.com/wtrsys/zeroflow/internal/pkg/datastreams/natshandler"
	"github.com/wtrsys/zeroflow/internal/pkg/datastreams/sqldb"
	"github.com/wtrsys/zeroflow/internal/pkg/flowsheet"
	"github.com/wtrsys/zeroflow/internal/pkg/quantity"
	"github.com/wtrsys/zeroflow/internal/pkg/report"
	"github.com/wtrsys/zeroflow/internal/pkg/unit/surfacedischarge"
	"github.com/wtrsys/zeroflow/internal/pkg/webservice"
)

type unitConfig struct {
	Type   string `json:"Type"`
	Config string `json:"Config"`
}

type datastreamsConfig struct {
	MongoDB string `json:"MongoDB"`
	SQL     string `json:"SQL"`
	NATS    string `json:"NATS"`
}

type flowsheetConfig struct {
	Name         string            `json:"Name"`
	BaseCurrency string            `json:"BaseCurrency"`
	Database     string            `json:"Database"`
	Units        []unitConfig      `json:"Units"`
	OutputDir    string            `json:"OutputDir"`
	Webservice   string            `json:"Webservice"`
	Datastreams  datastreamsConfig `json:"Datastreams"`
}

func main() {
	log.Println("[Main] Starting zeroflow v0.1.0")
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := readConfig("./config/flowsheet.json")
	if err != nil {
		panic(err)
	}

	log.Println("[Main] Loading parameter database")
	db, err := jsondb.New(cfg.Database)
	if err != nil {
		panic(err)
	}

	log.Println("[Main] Building flowsheet")
	fs, err := buildFlowsheet(cfg)
	if err != nil {
		panic(err)
	}

	log.Println("[Main] Linking report services")
	ws, err := webservice.New(fs)
	if err != nil {
		panic(err)
	}
	linkDatastreams(cfg.Datastreams, fs)

	log.Println("[Main] Running costing pass")
	agg, err := buildAggregator(cfg, db)
	if err != nil {
		panic(err)
	}
	if err := fs.CostUnits(agg); err != nil {
		panic(err)
	}

	total := agg.TotalCapitalCost()
	log.Printf("[Main] Total capital cost: %s", total)
	elec, err := agg.FlowTotal("electricity", quantity.Kilowatt)
	if err != nil {
		panic(err)
	}
	log.Printf("[Main] Aggregate electricity draw: %s", elec)

	if cfg.OutputDir != "" {
		log.Println("[Main] Writing reports to", cfg.OutputDir)
		if err := writeReports(cfg.OutputDir, fs, agg); err != nil {
			panic(err)
		}
	}

	if cfg.Webservice != "" {
		go func() {
			if err := ws.Serve(cfg.Webservice); err != nil {
				log.Println("[Main] webservice:", err)
			}
		}()
		<-sigs
	}

	log.Println("[Main] Stopping system")
	fs.Stop()
}

func readConfig(path string) (flowsheetConfig, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return flowsheetConfig{}, err
	}
	cfg := flowsheetConfig{}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return flowsheetConfig{}, err
	}
	return cfg, nil
}

func buildFlowsheet(cfg flowsheetConfig) (*flowsheet.Flowsheet, error) {
	fs, err := flowsheet.New(cfg.Name)
	if err != nil {
		return nil, err
	}
	for _, uc := range cfg.Units {
		switch uc.Type {
		case surfacedischarge.TechType:
			u, err := surfacedischarge.New(uc.Config)
			if err != nil {
				return nil, err
			}
			if err := fs.AddUnit(u); err != nil {
				return nil, err
			}
		default:
			log.Printf("[Main] unknown unit type %q in %s, skipped", uc.Type, uc.Config)
		}
	}
	return fs, nil
}

func buildAggregator(cfg flowsheetConfig, db database.Store) (*costing.Aggregator, error) {
	currency := quantity.USD
	if cfg.BaseCurrency != "" {
		u, err := quantity.ParseUnit(cfg.BaseCurrency)
		if err != nil {
			return nil, err
		}
		currency = u
	}
	return costing.New(currency, db)
}

func linkDatastreams(cfg datastreamsConfig, fs *flowsheet.Flowsheet) {
	if cfg.MongoDB != "" {
		h, err := mongodb.New(cfg.MongoDB, fs)
		if err != nil {
			log.Println("[Main] mongodb datastream:", err)
		} else {
			go h.Process()
		}
	}
	if cfg.SQL != "" {
		h, err := sqldb.New(cfg.SQL, fs)
		if err != nil {
			log.Println("[Main] sql datastream:", err)
		} else {
			go h.Process()
		}
	}
	if cfg.NATS != "" {
		h, err := natshandler.New(cfg.NATS, fs)
		if err != nil {
			log.Println("[Main] nats datastream:", err)
		} else {
			go h.Process()
		}
	}
}

func writeReports(dir string, fs *flowsheet.Flowsheet, agg *costing.Aggregator) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var costs []report.CostRecord
	var perf []report.PerfRecord
	for _, u := range fs.Units() {
		perf = append(perf, report.PerfRecords(u)...)
		blk, ok := agg.Block(u.PID())
		if !ok || !blk.Costed() {
			continue
		}
		costs = append(costs, report.CostRecord{
			PID:         u.PID().String(),
			Unit:        u.Name(),
			TechType:    u.TechType(),
			Subtype:     u.Subtype(),
			CapitalCost: blk.CapitalCost().Value,
			Currency:    blk.CapitalCost().Unit.Name,
		})
	}

	fcost, err := os.Create(filepath.Join(dir, "capital_cost.csv"))
	if err != nil {
		return err
	}
	defer fcost.Close()
	if err := report.WriteCostCSV(fcost, costs); err != nil {
		return err
	}

	fperf, err := os.Create(filepath.Join(dir, "performance.csv"))
	if err != nil {
		return err
	}
	defer fperf.Close()
	return report.WritePerfCSV(fperf, perf)
}
