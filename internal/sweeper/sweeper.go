package sweeper

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"messenger-service/internal/observability"
	"messenger-service/internal/repositories"
)

// Sweeper periodically reclaims presence rows whose last heartbeat is older
// than the liveness threshold. Correctness never depends on it running:
// readers derive online/offline from timestamps, the sweep only keeps the
// presence table from accumulating rows for users who disappeared.
type Sweeper struct {
	presenceRepo repositories.PresenceRepository
	interval     time.Duration
	threshold    time.Duration
	log          zerolog.Logger
}

// New builds a Sweeper.
func New(presenceRepo repositories.PresenceRepository, interval, threshold time.Duration, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		presenceRepo: presenceRepo,
		interval:     interval,
		threshold:    threshold,
		log:          log,
	}
}

// Run sweeps on a ticker until the context is canceled. Blocks; callers run
// it in a goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().
		Dur("interval", s.interval).
		Dur("threshold", s.threshold).
		Msg("presence sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("presence sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.threshold)
	removed, err := s.presenceRepo.RemoveStale(ctx, cutoff)
	if err != nil {
		s.log.Error().Err(err).Msg("presence sweep failed")
		return
	}
	if removed > 0 {
		observability.AddPresenceSwept(removed)
		s.log.Debug().Int64("removed", removed).Msg("swept stale presence rows")
	}
}
