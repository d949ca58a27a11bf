// Package sqldb drains flowsheet costing reports into a MySQL table.
package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wtrsys/zeroflow/internal/pkg/msg"
	"github.com/wtrsys/zeroflow/internal/pkg/report"

	_ "github.com/go-sql-driver/mysql"
)

type Handler struct {
	mux    *sync.Mutex
	inbox  <-chan msg.Msg
	pid    uuid.UUID
	config config
	stop   chan bool
}

type config struct {
	Server   string `json:"Server"`
	Port     int    `json:"Port"`
	Username string `json:"Username"`
	Password string `json:"Password"`
	Database string `json:"Database"`
}

func (h Handler) PID() uuid.UUID {
	return h.pid
}

func redirectMsg(chIn <-chan msg.Msg, chOut chan<- msg.Msg) {
	for m := range chIn {
		chOut <- m
	}
}

// New subscribes a handler to the flowsheet's costing topic.
func New(configPath string, system msg.Publisher) (Handler, error) {
	jsonConfig, err := ioutil.ReadFile(configPath)
	if err != nil {
		return Handler{}, err
	}
	cfg := config{}
	if err := json.Unmarshal(jsonConfig, &cfg); err != nil {
		return Handler{}, err
	}

	pid, err := uuid.NewUUID()
	if err != nil {
		return Handler{}, err
	}

	inbox := make(chan msg.Msg, 50)

	chCosting, err := system.Subscribe(pid, msg.Costing)
	if err != nil {
		return Handler{}, err
	}
	go redirectMsg(chCosting, inbox)

	return Handler{
		mux:    &sync.Mutex{},
		inbox:  inbox,
		pid:    pid,
		config: cfg,
		stop:   make(chan bool),
	}, nil
}

func (h *Handler) Stop() {
	h.stop <- true
}

// DB opens a connection to the configured MySQL database.
func (h Handler) DB() (*sql.DB, error) {
	uri := fmt.Sprintf("%v:%v@tcp(%v:%v)/%v", h.config.Username, h.config.Password, h.config.Server, h.config.Port, h.config.Database)
	return sql.Open("mysql", uri)
}

// Process drains costing reports into the capital_cost table until stopped.
func (h Handler) Process() {
	db, err := h.DB()
	if err != nil {
		log.Println("[SQL] open:", err)
		return
	}
	defer db.Close()

	if err := initDBTables(db); err != nil {
		log.Println("[SQL] init:", err)
		return
	}

loop:
	for {
		select {
		case m := <-h.inbox:
			rec, ok := m.Payload().(report.CostRecord)
			if !ok {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
			err := insertCostRecord(ctx, db, rec)
			cancel()
			if err != nil {
				log.Println("[SQL] insert:", err)
			}

		case <-h.stop:
			break loop
		}
	}
	log.Println("[SQL] Process Shutdown")
}

func initDBTables(db *sql.DB) error {
	sqlStatement := `CREATE TABLE IF NOT EXISTS capital_cost(
		pid VARCHAR(36) PRIMARY KEY,
		unit VARCHAR(255),
		tech_type VARCHAR(64),
		subtype VARCHAR(64),
		capital_cost DOUBLE,
		currency VARCHAR(8))`
	_, err := db.Exec(sqlStatement)
	return err
}

func insertCostRecord(ctx context.Context, db *sql.DB, rec report.CostRecord) error {
	sqlStatement := `INSERT INTO capital_cost (pid, unit, tech_type, subtype, capital_cost, currency)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE capital_cost=VALUES(capital_cost), currency=VALUES(currency)`
	_, err := db.ExecContext(ctx, sqlStatement, rec.PID, rec.Unit, rec.TechType, rec.Subtype, rec.CapitalCost, rec.Currency)
	return err
}
