package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careers/listing-service/internal/scheduler"
)

type fakeSweeper struct {
	mu    sync.Mutex
	calls int
	n     int64
	err   error
	ran   chan struct{}
	hold  chan struct{} // when set, a sweep blocks until it is closed
}

func (f *fakeSweeper) CloseExpiredPositions(context.Context, time.Time) (int64, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.ran != nil {
		select {
		case f.ran <- struct{}{}:
		default:
		}
	}
	if f.hold != nil {
		<-f.hold
	}
	return f.n, f.err
}

type recorder struct{ total int64 }

func (r *recorder) PositionsClosed(n int64) { r.total += n }

func TestRunOnce_RecordsClosedCount(t *testing.T) {
	sw := &fakeSweeper{n: 4}
	rec := &recorder{}
	s := scheduler.New(sw, rec, "@every 1h")

	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, int64(4), rec.total)
}

func TestRunOnce_PropagatesError(t *testing.T) {
	sw := &fakeSweeper{err: errors.New("db down")}
	rec := &recorder{}
	s := scheduler.New(sw, rec, "@every 1h")

	_, err := s.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Zero(t, rec.total)
}

func TestStart_SweepsImmediately(t *testing.T) {
	sw := &fakeSweeper{ran: make(chan struct{}, 1)}
	s := scheduler.New(sw, nil, "@every 1h")

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	select {
	case <-sw.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("no sweep on startup")
	}
}

func TestStart_InvalidSpec(t *testing.T) {
	s := scheduler.New(&fakeSweeper{}, nil, "every now and then")
	assert.Error(t, s.Start(context.Background()))
}

func TestStop_WaitsForStartupSweep(t *testing.T) {
	sw := &fakeSweeper{ran: make(chan struct{}, 1), hold: make(chan struct{})}
	s := scheduler.New(sw, nil, "@every 1h")
	require.NoError(t, s.Start(context.Background()))

	select {
	case <-sw.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("no sweep on startup")
	}

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while the startup sweep was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(sw.hold)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the sweep finished")
	}
}
