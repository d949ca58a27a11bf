package msg

import (
	"testing"

	"github.com/google/uuid"
	"gotest.tools/v3/assert"
)

func TestSubscribe(t *testing.T) {
	pidPub, err := uuid.NewUUID()
	assert.NilError(t, err)

	pidSub1, err := uuid.NewUUID()
	assert.NilError(t, err)

	pidSub2, err := uuid.NewUUID()
	assert.NilError(t, err)

	pubsub := NewPublisher(pidPub)
	ch1, err := pubsub.Subscribe(pidSub1, Costing)
	assert.NilError(t, err)
	ch2, err := pubsub.Subscribe(pidSub2, Costing)
	assert.NilError(t, err)

	pubsub.Publish(Costing, 112000.0)

	m1 := <-ch1
	assert.Equal(t, m1.Payload(), 112000.0, "first subscriber did not receive the published value")
	assert.Equal(t, m1.PID(), pidPub)
	assert.Equal(t, m1.Topic(), Costing)

	m2 := <-ch2
	assert.Equal(t, m2.Payload(), 112000.0, "second subscriber did not receive the published value")
}

func TestSubscribeDuplicatePID(t *testing.T) {
	pubsub := NewPublisher(uuid.New())
	pid := uuid.New()

	_, err := pubsub.Subscribe(pid, Performance)
	assert.NilError(t, err)

	_, err = pubsub.Subscribe(pid, Performance)
	assert.Assert(t, err != nil)
}

func TestTopicsAreIndependent(t *testing.T) {
	pubsub := NewPublisher(uuid.New())
	pid := uuid.New()

	chPerf, err := pubsub.Subscribe(pid, Performance)
	assert.NilError(t, err)

	pubsub.Publish(Costing, 1.0)
	pubsub.Publish(Performance, 2.0)

	m := <-chPerf
	assert.Equal(t, m.Payload(), 2.0, "performance subscriber saw the costing publish")
}

func TestUnsubscribe(t *testing.T) {
	pubsub := NewPublisher(uuid.New())
	pid := uuid.New()

	ch, err := pubsub.Subscribe(pid, Costing)
	assert.NilError(t, err)

	pubsub.Unsubscribe(pid)
	_, open := <-ch
	assert.Assert(t, !open, "channel left open after unsubscribe")
}
