// Package mongodb drains flowsheet costing and performance reports into
// MongoDB collections, one document per unit.
package mongodb

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wtrsys/zeroflow/internal/pkg/msg"
	"github.com/wtrsys/zeroflow/internal/pkg/report"
)

type Handler struct {
	mux    *sync.Mutex
	inbox  <-chan msg.Msg
	pid    uuid.UUID
	config config
	stop   chan bool
}

type config struct {
	URI      string `json:"URI"`
	Database string `json:"Database"`
	Port     string `json:"Port"`
}

func redirectMsg(chIn <-chan msg.Msg, chOut chan<- msg.Msg) {
	for m := range chIn {
		chOut <- m
	}
}

// New subscribes a handler to the flowsheet's report topics.
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

	chPerf, err := system.Subscribe(pid, msg.Performance)
	if err != nil {
		return Handler{}, err
	}
	go redirectMsg(chPerf, inbox)

	return Handler{
		mux:    &sync.Mutex{},
		inbox:  inbox,
		pid:    pid,
		config: cfg,
		stop:   make(chan bool),
	}, nil
}

// PID is a getter for the handler PID.
func (h Handler) PID() uuid.UUID {
	return h.pid
}

// unitPID extracts the subject unit's PID from a report payload. Documents
// are keyed per unit, not per flowsheet.
func unitPID(m msg.Msg) (string, bool) {
	switch p := m.Payload().(type) {
	case report.CostRecord:
		return p.PID, true
	case []report.PerfRecord:
		if len(p) == 0 {
			return "", false
		}
		return p[0].PID, true
	}
	return "", false
}

func reportToBSON(m msg.Msg, pid string) bson.D {
	return bson.D{
		{Key: "$set", Value: bson.M{
			"unit":      pid,
			"flowsheet": m.PID().String(),
			"report":    m.Payload(),
		}},
	}
}

// StopProcess terminates the drain loop.
func (h *Handler) StopProcess() {
	h.stop <- true
}

// Process drains reports into the unitCosting and unitPerformance
// collections until stopped.
func (h Handler) Process() {
	client, err := mongo.NewClient(options.Client().ApplyURI(h.config.URI + ":" + h.config.Port))
	if err != nil {
		log.Println("[Mongo]", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		log.Println("[Mongo]", err)
		return
	}
	defer client.Disconnect(ctx)

	collection := map[msg.Topic]string{
		msg.Costing:     "unitCosting",
		msg.Performance: "unitPerformance",
	}

loop:
	for {
		select {
		case m := <-h.inbox:
			name, ok := collection[m.Topic()]
			if !ok {
				continue
			}
			pid, ok := unitPID(m)
			if !ok {
				continue
			}
			opts := options.Update().SetUpsert(true)
			_, err := client.Database(h.config.Database).Collection(name).UpdateOne(
				ctx,
				bson.M{"unit": pid},
				reportToBSON(m, pid),
				opts,
			)
			if err != nil {
				log.Println("[Mongo]", err)
			}

		case <-h.stop:
			break loop
		}
	}
	log.Println("[Mongo] Process Shutdown")
}
