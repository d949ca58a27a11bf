package msg

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Topic routes messages to interested subscribers.
type Topic int

const (
	// Performance carries unit performance-variable reports.
	Performance Topic = iota
	// Costing carries unit capital-cost reports.
	Costing
)

// Publisher is an interface for objects that allow subscription to their
// events by topic.
type Publisher interface {
	Subscribe(uuid.UUID, Topic) (<-chan Msg, error)
	Unsubscribe(uuid.UUID)
}

// Msg is a single report published by a flowsheet component.
type Msg struct {
	sender  uuid.UUID
	topic   Topic
	payload interface{}
}

// New is the Msg factory function.
func New(sender uuid.UUID, topic Topic, payload interface{}) Msg {
	return Msg{sender, topic, payload}
}

// PID returns the sender's PID.
func (m Msg) PID() uuid.UUID {
	return m.sender
}

// Topic returns the message topic.
func (m Msg) Topic() Topic {
	return m.topic
}

// Payload returns the message data.
func (m Msg) Payload() interface{} {
	return m.payload
}

// PubSub is a topic-keyed broadcast hub for Msg.
type PubSub struct {
	mux       *sync.Mutex
	pid       uuid.UUID
	broadcast map[Topic]map[uuid.UUID]chan<- Msg
}

// NewPublisher returns an empty PubSub owned by pid.
func NewPublisher(pid uuid.UUID) *PubSub {
	return &PubSub{
		mux:       &sync.Mutex{},
		pid:       pid,
		broadcast: make(map[Topic]map[uuid.UUID]chan<- Msg),
	}
}

// Subscribe returns a read only channel delivering messages on the topic.
func (p *PubSub) Subscribe(pid uuid.UUID, topic Topic) (<-chan Msg, error) {
	p.mux.Lock()
	defer p.mux.Unlock()
	subs, ok := p.broadcast[topic]
	if !ok {
		subs = make(map[uuid.UUID]chan<- Msg)
		p.broadcast[topic] = subs
	}
	if _, ok := subs[pid]; ok {
		return nil, errors.New("pid already subscribed to topic")
	}
	ch := make(chan Msg, 50)
	subs[pid] = ch
	return ch, nil
}

// Unsubscribe closes and removes all channels held for the pid.
func (p *PubSub) Unsubscribe(pid uuid.UUID) {
	p.mux.Lock()
	defer p.mux.Unlock()
	for _, subs := range p.broadcast {
		if ch, ok := subs[pid]; ok {
			delete(subs, pid)
			close(ch)
		}
	}
}

// Publish broadcasts a payload to all subscribers of the topic. Slow
// subscribers with a full buffer are skipped.
func (p *PubSub) Publish(topic Topic, payload interface{}) {
	p.mux.Lock()
	defer p.mux.Unlock()
	for _, ch := range p.broadcast[topic] {
		select {
		case ch <- New(p.pid, topic, payload):
		default:
		}
	}
}

// Stop closes all subscriber channels.
func (p *PubSub) Stop() {
	p.mux.Lock()
	defer p.mux.Unlock()
	for topic, subs := range p.broadcast {
		for pid, ch := range subs {
			delete(subs, pid)
			close(ch)
		}
		delete(p.broadcast, topic)
	}
}
