package service

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestCleanupService_SweepsOnStartAndTick(t *testing.T) {
	sweeper := &countingSweeper{removed: 1}

	svc := newCleanupService(sweeper, zerolog.Nop(), time.Hour, 20*time.Millisecond)
	svc.Start()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)

	svc.Stop()
	after := sweeper.calls.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, after, sweeper.calls.Load(), "no sweeps after Stop")
}

func TestCleanupService_ErrorsDoNotStopTheLoop(t *testing.T) {
	sweeper := &countingSweeper{err: errors.New("permission denied")}

	svc := newCleanupService(sweeper, zerolog.Nop(), time.Minute, 20*time.Millisecond)
	svc.Start()
	defer svc.Stop()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}
