package tasks

import (
	"time"

	"github.com/lunamoth/cadenza/internal/shared"
)

const (
	defaultSearchConcurrent = 4
	defaultApplyConcurrent  = 3
	defaultMinDelay         = 100 * time.Millisecond
	defaultThrottledDelay   = 2 * time.Second

	// maxConcurrentCap bounds any configured concurrency; the provider's
	// tolerance is undocumented and more workers than this buys nothing.
	maxConcurrentCap = 10
)

// Limits bounds one batch pipeline: how many items may run their provider
// call at once, and how long each item waits before calling.
//
// A Limits value is immutable for the duration of a batch run; the engine
// copies it at dispatch time.
type Limits struct {
	MaxConcurrent  int           // concurrent provider calls
	MinDelay       time.Duration // per-item delay when the provider is quiet
	ThrottledDelay time.Duration // per-item delay inside the throttle window
}

// SearchLimits returns the preset for read-only catalog searches.
func SearchLimits() Limits {
	return Limits{
		MaxConcurrent:  defaultSearchConcurrent,
		MinDelay:       defaultMinDelay,
		ThrottledDelay: defaultThrottledDelay,
	}
}

// ApplyLimits returns the stricter preset for apply runs, which fetch full
// track payloads and artwork per item.
func ApplyLimits() Limits {
	return Limits{
		MaxConcurrent:  defaultApplyConcurrent,
		MinDelay:       defaultMinDelay,
		ThrottledDelay: defaultThrottledDelay,
	}
}

// WithConfig overlays the non-zero values from cfg onto l. Zero config
// values keep the preset, so a partially filled [sync.search] section only
// overrides what it names.
func (l Limits) WithConfig(cfg shared.LimitsConfig) Limits {
	if cfg.MaxConcurrent > 0 {
		l.MaxConcurrent = cfg.MaxConcurrent
	}
	if cfg.MinDelayMS > 0 {
		l.MinDelay = time.Duration(cfg.MinDelayMS) * time.Millisecond
	}
	if cfg.ThrottledDelayMS > 0 {
		l.ThrottledDelay = time.Duration(cfg.ThrottledDelayMS) * time.Millisecond
	}
	return l
}

// normalized clamps l to usable bounds, falling back to defaults for values
// that make the pipeline degenerate. A zero MinDelay is allowed (no pacing);
// a zero ThrottledDelay is not, since it would disable backoff entirely.
func (l Limits) normalized(defaults Limits) Limits {
	if l.MaxConcurrent <= 0 {
		l.MaxConcurrent = defaults.MaxConcurrent
	}
	if l.MaxConcurrent > maxConcurrentCap {
		l.MaxConcurrent = maxConcurrentCap
	}
	if l.MinDelay < 0 {
		l.MinDelay = defaults.MinDelay
	}
	if l.ThrottledDelay <= 0 {
		l.ThrottledDelay = defaults.ThrottledDelay
	}
	return l
}
