package sqldb

import (
	"testing"

	"github.com/google/uuid"
	"gotest.tools/v3/assert"

	"github.com/wtrsys/zeroflow/internal/pkg/msg"
)

func newHandler() (Handler, error) {
	pid, _ := uuid.NewUUID()
	pub := msg.NewPublisher(pid)
	return New("./db_config_test.json", pub)
}

func TestGetConfig(t *testing.T) {
	h, err := newHandler()
	assert.NilError(t, err)

	assert.Equal(t, h.config.Port, 3306)
	assert.Equal(t, h.config.Server, "localhost")
	assert.Equal(t, h.config.Database, "flowsheet")
}

func TestMissingConfig(t *testing.T) {
	pid, _ := uuid.NewUUID()
	_, err := New("./no_such_config.json", msg.NewPublisher(pid))
	assert.Assert(t, err != nil)
}
