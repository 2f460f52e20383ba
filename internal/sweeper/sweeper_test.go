package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/mocks"
)

func TestSweeperRemovesStaleRows(t *testing.T) {
	presenceRepo := new(mocks.PresenceRepositoryMock)

	swept := make(chan time.Time, 1)
	presenceRepo.On("RemoveStale", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			select {
			case swept <- args.Get(1).(time.Time):
			default:
			}
		}).
		Return(int64(2), nil)

	threshold := 20 * time.Second
	s := New(presenceRepo, 10*time.Millisecond, threshold, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case cutoff := <-swept:
		// Cutoff trails now by the liveness threshold.
		require.InDelta(t, threshold.Seconds(), time.Since(cutoff).Seconds(), 1.0)
	case <-time.After(2 * time.Second):
		t.Fatal("sweep never ran")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop on context cancel")
	}
}

func TestSweeperKeepsRunningAfterError(t *testing.T) {
	presenceRepo := new(mocks.PresenceRepositoryMock)

	calls := make(chan struct{}, 4)
	presenceRepo.On("RemoveStale", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			select {
			case calls <- struct{}{}:
			default:
			}
		}).
		Return(int64(0), context.DeadlineExceeded)

	s := New(presenceRepo, 10*time.Millisecond, 20*time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(2 * time.Second):
			t.Fatal("sweep stopped after error")
		}
	}
}
