package iolock_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vetcare/vetdb/internal/iolock"
	"github.com/vetcare/vetdb/internal/iotesting"
)

func TestKey(t *testing.T) {
	a := iolock.Key("vetdb:vetcare")
	assert.Equal(t, a, iolock.Key("vetdb:vetcare"))
	assert.NotEqual(t, a, iolock.Key("vetdb:vetdb_test"))
	assert.GreaterOrEqual(t, a, int64(0))
}

func TestNoop(t *testing.T) {
	l := iolock.NewNoop()
	release, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)
	release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Acquire(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

// TestPostgresExclusive verifies that a second holder waits for the first.
func TestPostgresExclusive(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	op := iotesting.Connect(t)
	l := iolock.NewPostgres(op.Pool())
	ctx := context.Background()

	release, err := l.Acquire(ctx, "vetdb:test")
	require.NoError(t, err)

	var got atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		r, err := l.Acquire(ctx, "vetdb:test")
		if err == nil {
			got.Store(true)
			r()
		}
	}()

	time.Sleep(200 * time.Millisecond)
	assert.False(t, got.Load(), "lock must be held by the first caller")
	release()
	<-done
	assert.True(t, got.Load())
}

// TestPostgresCancel verifies that waiting stops with the context.
func TestPostgresCancel(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	op := iotesting.Connect(t)
	l := iolock.NewPostgres(op.Pool())

	release, err := l.Acquire(context.Background(), "vetdb:cancel")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, "vetdb:cancel")
	require.Error(t, err)
	var lockErr iolock.AcquireLockError
	assert.True(t, errors.As(err, &lockErr))
}
