package utils

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetry(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		attempts  int
		failures  int
		permanent bool
		wantCalls int
		wantErr   error
	}{
		{name: "éxito a la primera", attempts: 3, failures: 0, wantCalls: 1},
		{name: "éxito tras reintentos", attempts: 3, failures: 2, wantCalls: 3},
		{name: "agota los intentos", attempts: 3, failures: 5, wantCalls: 3, wantErr: boom},
		{name: "error permanente no se reintenta", attempts: 3, failures: 5, permanent: true, wantCalls: 1, wantErr: boom},
		{name: "sin intentos", attempts: 0, failures: 5, wantCalls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), tt.attempts, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					if tt.permanent {
						return Permanent(fmt.Errorf("wrapped: %w", boom))
					}
					return boom
				}
				return nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRetry_NoWaitAfterLastAttempt(t *testing.T) {
	start := time.Now()
	err := Retry(context.Background(), 1, time.Hour, func() error { return errors.New("falla") })

	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Minute)
}

func TestRetry_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 3, time.Hour, func() error {
		calls++
		cancel()
		return errors.New("falla")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPermanent_Nil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}
