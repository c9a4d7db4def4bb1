package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(buf *bytes.Buffer) *Scheduler {
	return New(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func TestScheduler_Register(t *testing.T) {
	var buf bytes.Buffer
	s := newTestScheduler(&buf)

	require.NoError(t, s.Register("late-fees", "5 0 * * *", func(context.Context) error { return nil }))
	require.NoError(t, s.Register("outbox", "@every 10s", func(context.Context) error { return nil }))

	err := s.Register("broken", "every day", func(context.Context) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Len(t, s.cron.Entries(), 2)
}

func TestScheduler_RunNow(t *testing.T) {
	var buf bytes.Buffer
	s := newTestScheduler(&buf)

	var order []string
	require.NoError(t, s.Register("first", "@every 1h", func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline, "jobs run with a timeout")
		order = append(order, "first")
		return nil
	}))
	require.NoError(t, s.Register("second", "@every 1h", func(context.Context) error {
		order = append(order, "second")
		return errors.New("broker unavailable")
	}))

	s.RunNow()

	assert.Equal(t, []string{"first", "second"}, order)
	assert.Contains(t, buf.String(), "job failed")
	assert.Contains(t, buf.String(), "broker unavailable")
}

func TestScheduler_RecoversFromPanics(t *testing.T) {
	var buf bytes.Buffer
	s := newTestScheduler(&buf)
	require.NoError(t, s.Register("panicky", "@every 1h", func(context.Context) error {
		panic("boom")
	}))

	assert.NotPanics(t, s.RunNow)
	assert.Contains(t, buf.String(), "panic")
}

func TestScheduler_StopCancelsJobs(t *testing.T) {
	var buf bytes.Buffer
	s := newTestScheduler(&buf)

	started := make(chan struct{})
	cancelled := make(chan struct{})
	require.NoError(t, s.Register("slow", "@every 1h", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	}))
	s.Start()
	go s.RunNow()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	select {
	case <-cancelled:
	case <-time.After(5 * time.Second):
		t.Fatal("running job was not cancelled")
	}
}
