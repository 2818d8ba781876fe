package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/burdurhub-hq/burdur-news-hub/internal/domain"
	"github.com/burdurhub-hq/burdur-news-hub/internal/logger"
)

// Package scheduler drives per-candidate date resolution in fixed-size
// concurrent batches with an optional consecutive-stale early stop.

const (
	DefaultBatchSize         = 10
	DefaultWindowDays        = 1
	DefaultMaxConsecutiveOld = 3
)

// ResolveFunc fetches the article page behind a candidate and extracts its
// publish timestamp. ok=false means "no date", which counts as stale.
type ResolveFunc func(ctx context.Context, c domain.RawCandidate) (time.Time, bool)

// BuildFunc turns a candidate with a confirmed in-window date into an Article.
type BuildFunc func(c domain.RawCandidate, date time.Time) domain.Article

// Options tunes one ResolveDates pass.
type Options struct {
	BatchSize         int
	WindowDays        int
	MaxConsecutiveOld int
	EarlyStop         bool
	Now               func() time.Time
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.WindowDays < 0 {
		o.WindowDays = DefaultWindowDays
	}
	if o.MaxConsecutiveOld <= 0 {
		o.MaxConsecutiveOld = DefaultMaxConsecutiveOld
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type resolution struct {
	date time.Time
	ok   bool
}

// ResolveDates partitions candidates into contiguous batches, resolves each
// batch concurrently with settle-all semantics, and applies results in the
// original listing order. With EarlyStop set, resolution halts once
// MaxConsecutiveOld consecutive candidates resolve stale (failed, dateless, or
// outside the recency window); listings are assumed roughly newest-first, so
// the remainder is almost certainly stale too. Already-dispatched fetches in
// the current batch are allowed to finish and are ignored.
func ResolveDates(ctx context.Context, candidates []domain.RawCandidate, resolve ResolveFunc, build BuildFunc, opts Options) []domain.Article {
	opts = opts.withDefaults()
	now := opts.Now()

	final := make([]domain.Article, 0, len(candidates))
	consecutiveOld := 0
	processed := 0

outer:
	for start := 0; start < len(candidates); start += opts.BatchSize {
		if opts.EarlyStop && consecutiveOld >= opts.MaxConsecutiveOld {
			break
		}

		end := start + opts.BatchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[start:end]

		results := make([]resolution, len(batch))
		var wg sync.WaitGroup
		for i := range batch {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				date, ok := resolve(ctx, batch[i])
				results[i] = resolution{date: date, ok: ok}
			}(i)
		}
		wg.Wait()

		// Results apply in listing order so the stale counter resets
		// deterministically regardless of network completion order.
		for i, res := range results {
			processed++
			if opts.EarlyStop && consecutiveOld >= opts.MaxConsecutiveOld {
				break outer
			}

			if res.ok && WithinWindow(now, res.date, opts.WindowDays) {
				final = append(final, build(batch[i], res.date))
				consecutiveOld = 0
			} else {
				consecutiveOld++
			}
		}
	}

	if skipped := len(candidates) - processed; skipped > 0 {
		logger.DebugObj("date resolution stopped early", "early_stop", map[string]any{
			"skipped":   skipped,
			"processed": processed,
			"total":     len(candidates),
		})
	}

	return final
}

// WithinWindow reports whether date falls inside the trailing recency window,
// inclusive on both ends, using calendar-day truncation rather than wall-clock
// difference.
func WithinWindow(now, date time.Time, windowDays int) bool {
	diff := int(midnightUTC(now).Sub(midnightUTC(date)) / (24 * time.Hour))
	return diff >= 0 && diff <= windowDays
}

// SameDay reports whether two timestamps share a calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
