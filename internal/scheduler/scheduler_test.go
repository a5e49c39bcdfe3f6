package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_Add(t *testing.T) {
	s := New()

	require.NoError(t, s.Add("refresh", "@every 15m", func(context.Context) error { return nil }))
	require.NoError(t, s.Add("nightly", "0 2 * * *", func(context.Context) error { return nil }))
	assert.Equal(t, 2, s.Jobs())

	err := s.Add("broken", "every now and then", func(context.Context) error { return nil })
	assert.Error(t, err)
	assert.Equal(t, 2, s.Jobs())
}

func TestScheduler_RunsAndStops(t *testing.T) {
	s := New()

	var runs atomic.Int32
	done := make(chan struct{}, 1)
	require.NoError(t, s.Add("tick", "@every 1s", func(ctx context.Context) error {
		runs.Add(1)
		select {
		case done <- struct{}{}:
		default:
		}
		return errors.New("logged, not fatal")
	}))

	s.Start()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.GreaterOrEqual(t, runs.Load(), int32(1))
}
