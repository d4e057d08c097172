package job

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	repo "payflow-backend/internal/domains/payment/repository"
)

// =====================================================
// STALE JOB REAPER
// =====================================================

// staleJobAge is how long a job may sit in processing before we assume its
// worker died and return it to the pending pool.
const staleJobAge = 2 * time.Minute

// Reaper periodically recovers jobs orphaned by crashed or killed workers.
type Reaper struct {
	jobRepo repo.JobRepository
	every   time.Duration
}

func NewReaper(jobRepo repo.JobRepository, every time.Duration) *Reaper {
	return &Reaper{jobRepo: jobRepo, every: every}
}

// Run wakes on an interval until ctx is canceled.
func (r *Reaper) Run(ctx context.Context) {
	log.Info().Msg("stale job reaper started")

	t := time.NewTicker(r.every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stale job reaper shutting down")
			return
		case <-t.C:
			n, err := r.jobRepo.ReapStale(ctx, staleJobAge)
			if err != nil {
				log.Error().Err(err).Msg("reaper error")
				continue
			}
			if n > 0 {
				log.Info().Int64("count", n).Msg("reaped stale jobs")
			}
		}
	}
}
