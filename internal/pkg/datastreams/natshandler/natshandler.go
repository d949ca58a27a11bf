// Package natshandler publishes flowsheet costing reports to a NATS subject
// per unit.
package natshandler

import (
	"encoding/json"
	"io/ioutil"
	"log"
	"sync"

	"github.com/google/uuid"
	nats "github.com/nats-io/nats.go"

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
	Server string `json:"Server"`
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

func (h Handler) serverURL() string {
	if h.config.Server == "" {
		return nats.DefaultURL
	}
	return h.config.Server
}

// Process relays costing reports onto zeroflow.costing.<unit pid> until
// stopped.
func (h Handler) Process() {
	log.Println("[NATS client] Process Started")
	nc, err := nats.Connect(h.serverURL())
	if err != nil {
		log.Println("[NATS client]", err)
		return
	}
	defer nc.Close()

loop:
	for {
		select {
		case m := <-h.inbox:
			rec, ok := m.Payload().(report.CostRecord)
			if !ok {
				continue
			}
			data, err := json.Marshal(rec)
			if err != nil {
				continue
			}
			if err = nc.Publish("zeroflow.costing."+rec.PID, data); err != nil {
				log.Printf("unable to publish to nats server: %v", err)
			}

		case <-h.stop:
			break loop
		}
	}
	log.Println("[NATS client] Process Shutdown")
}
