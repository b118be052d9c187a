package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRetryRecoversFromTransientErrors(t *testing.T) {
	calls := 0
	err := retry(context.Background(), zerolog.Nop(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("503 unavailable")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryGivesUp(t *testing.T) {
	calls := 0
	boom := errors.New("503 unavailable")
	err := retry(context.Background(), zerolog.Nop(), 2, time.Millisecond, func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed after 2 attempts")
	assert.Equal(t, 2, calls)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	bad := errors.New("bad request")
	err := retry(context.Background(), zerolog.Nop(), 5, time.Millisecond, func() error {
		calls++
		return permanent(bad)
	})
	assert.Equal(t, bad, err)
	assert.Equal(t, 1, calls)
}

func TestRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry(ctx, zerolog.Nop(), 5, time.Hour, func() error {
		calls++
		cancel()
		return errors.New("transient")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
