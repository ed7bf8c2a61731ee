package monitoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avieira/tourbase-be/internal/services"
)

type purgeRecorder struct {
	services.UserServiceProvider
	calls chan int64
}

func (p *purgeRecorder) PurgeExpiredResetTokens() (int64, error) {
	p.calls <- 1
	return 2, nil
}

func TestResetJanitor_RejectsBadSchedule(t *testing.T) {
	_, err := NewResetJanitor(&purgeRecorder{}, "not a schedule")
	assert.Error(t, err)
}

func TestResetJanitor_PurgesOnStart(t *testing.T) {
	rec := &purgeRecorder{calls: make(chan int64, 1)}
	janitor, err := NewResetJanitor(rec, "@every 1h")
	require.NoError(t, err)

	go janitor.Run()
	defer janitor.Stop()

	select {
	case <-rec.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("expected an immediate purge on start")
	}
}
