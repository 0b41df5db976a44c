package tasks

import (
	"testing"
	"time"

	"github.com/lunamoth/cadenza/internal/shared"
)

func TestLimitPresets(t *testing.T) {
	search := SearchLimits()
	if search.MaxConcurrent != 4 || search.MinDelay != 100*time.Millisecond || search.ThrottledDelay != 2*time.Second {
		t.Errorf("SearchLimits() = %+v, want 4/100ms/2s", search)
	}

	apply := ApplyLimits()
	if apply.MaxConcurrent != 3 || apply.MinDelay != 100*time.Millisecond || apply.ThrottledDelay != 2*time.Second {
		t.Errorf("ApplyLimits() = %+v, want 3/100ms/2s", apply)
	}
}

func TestLimits_WithConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  shared.LimitsConfig
		want Limits
	}{
		{
			name: "zero config keeps preset",
			cfg:  shared.LimitsConfig{},
			want: SearchLimits(),
		},
		{
			name: "full override",
			cfg:  shared.LimitsConfig{MaxConcurrent: 8, MinDelayMS: 250, ThrottledDelayMS: 5000},
			want: Limits{MaxConcurrent: 8, MinDelay: 250 * time.Millisecond, ThrottledDelay: 5 * time.Second},
		},
		{
			name: "partial override keeps the rest",
			cfg:  shared.LimitsConfig{MinDelayMS: 10},
			want: Limits{MaxConcurrent: 4, MinDelay: 10 * time.Millisecond, ThrottledDelay: 2 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SearchLimits().WithConfig(tt.cfg); got != tt.want {
				t.Errorf("WithConfig() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLimits_Normalized(t *testing.T) {
	defaults := SearchLimits()

	tests := []struct {
		name string
		in   Limits
		want Limits
	}{
		{
			name: "valid values pass through",
			in:   Limits{MaxConcurrent: 2, MinDelay: 50 * time.Millisecond, ThrottledDelay: time.Second},
			want: Limits{MaxConcurrent: 2, MinDelay: 50 * time.Millisecond, ThrottledDelay: time.Second},
		},
		{
			name: "zero concurrency falls back",
			in:   Limits{MaxConcurrent: 0, MinDelay: 50 * time.Millisecond, ThrottledDelay: time.Second},
			want: Limits{MaxConcurrent: defaults.MaxConcurrent, MinDelay: 50 * time.Millisecond, ThrottledDelay: time.Second},
		},
		{
			name: "concurrency capped",
			in:   Limits{MaxConcurrent: 64, MinDelay: 50 * time.Millisecond, ThrottledDelay: time.Second},
			want: Limits{MaxConcurrent: maxConcurrentCap, MinDelay: 50 * time.Millisecond, ThrottledDelay: time.Second},
		},
		{
			name: "zero min delay allowed",
			in:   Limits{MaxConcurrent: 2, MinDelay: 0, ThrottledDelay: time.Second},
			want: Limits{MaxConcurrent: 2, MinDelay: 0, ThrottledDelay: time.Second},
		},
		{
			name: "negative min delay falls back",
			in:   Limits{MaxConcurrent: 2, MinDelay: -time.Second, ThrottledDelay: time.Second},
			want: Limits{MaxConcurrent: 2, MinDelay: defaults.MinDelay, ThrottledDelay: time.Second},
		},
		{
			name: "zero throttled delay falls back",
			in:   Limits{MaxConcurrent: 2, MinDelay: 50 * time.Millisecond, ThrottledDelay: 0},
			want: Limits{MaxConcurrent: 2, MinDelay: 50 * time.Millisecond, ThrottledDelay: defaults.ThrottledDelay},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.normalized(defaults); got != tt.want {
				t.Errorf("normalized() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
