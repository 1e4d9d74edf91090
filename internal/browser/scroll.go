package browser

import (
	"context"
	"math/rand"
	"time"
)

// ScrollTarget is the slice of a live page the scroller needs: measuring the
// content extent and triggering another round of loading.
type ScrollTarget interface {
	ContentHeight(ctx context.Context) (int64, error)
	GrowContent(ctx context.Context) error
}

// Interval is a pause range; each pause is drawn uniformly from [Min, Max).
type Interval struct {
	Min time.Duration
	Max time.Duration
}

func (iv Interval) pick(rng *rand.Rand) time.Duration {
	if iv.Max <= iv.Min {
		return iv.Min
	}
	return iv.Min + time.Duration(rng.Int63n(int64(iv.Max-iv.Min)))
}

// Scroller drives a page through repeated scroll-to-bottom actions until the
// measured content height stops growing, which is when a result page that
// loads incrementally is considered fully loaded.
type Scroller struct {
	// LoadPause is waited after each growth action for new content to load.
	LoadPause Interval
	// StepPause paces consecutive rounds once content did grow.
	StepPause Interval
	// MaxRounds caps growth actions on pages that never stabilize; 0 means
	// no cap.
	MaxRounds int

	rng   *rand.Rand
	sleep func(time.Duration)
}

func NewScroller(load, step Interval, maxRounds int) *Scroller {
	return &Scroller{
		LoadPause: load,
		StepPause: step,
		MaxRounds: maxRounds,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:     time.Sleep,
	}
}

// ScrollToEnd runs the protocol: measure, grow, pause, re-measure, and stop
// as soon as the height repeats. It returns the number of growth actions
// issued.
func (s *Scroller) ScrollToEnd(ctx context.Context, target ScrollTarget) (int, error) {
	last, err := target.ContentHeight(ctx)
	if err != nil {
		return 0, err
	}

	rounds := 0
	for {
		if s.MaxRounds > 0 && rounds >= s.MaxRounds {
			return rounds, nil
		}
		if err := ctx.Err(); err != nil {
			return rounds, err
		}

		if err := target.GrowContent(ctx); err != nil {
			return rounds, err
		}
		rounds++
		s.sleep(s.LoadPause.pick(s.rng))

		height, err := target.ContentHeight(ctx)
		if err != nil {
			return rounds, err
		}
		if height == last {
			return rounds, nil
		}
		last = height
		s.sleep(s.StepPause.pick(s.rng))
	}
}
