package sched

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"ai-interview-service/internal/infra/metrics"
)

// StagingJanitor periodically removes staging files older than maxAge.
// Pipeline cleanup is best-effort, so a crashed run or a failed Remove
// can leave orphans behind; the janitor is the backstop.
type StagingJanitor struct {
	dir      string
	interval time.Duration
	maxAge   time.Duration
	log      *zerolog.Logger
}

func NewStagingJanitor(dir string, interval, maxAge time.Duration, logger *zerolog.Logger) *StagingJanitor {
	l := logger.With().Str("component", "StagingJanitor").Logger()
	return &StagingJanitor{dir: dir, interval: interval, maxAge: maxAge, log: &l}
}

func (j *StagingJanitor) Run(ctx context.Context) error {
	j.log.Info().Str("dir", j.dir).Dur("interval", j.interval).Msg("starting staging janitor")
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.Info().Msg("stopping staging janitor")
			return ctx.Err()
		case <-ticker.C:
			n, err := j.Sweep()
			if err != nil {
				j.log.Error().Err(err).Msg("janitor sweep error")
			}
			if n > 0 {
				metrics.AddStagingSweptFiles(n)
				j.log.Info().Int("count", n).Msg("orphaned staging files removed")
			}
		}
	}
}

// Sweep removes regular files under the staging dir whose mtime is older
// than maxAge and returns how many were deleted.
func (j *StagingJanitor) Sweep() (int, error) {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-j.maxAge)

	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		p := filepath.Join(j.dir, e.Name())
		if err := os.Remove(p); err != nil {
			j.log.Warn().Err(err).Str("path", p).Msg("janitor remove failed")
			continue
		}
		removed++
	}
	return removed, nil
}
