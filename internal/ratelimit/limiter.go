// Package ratelimit provides per-tool token bucket limits for gesture tools.
package ratelimit

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// ToolLimiters maps tool names to their rate limiters.
type ToolLimiters map[string]*rate.Limiter

// Gesture tools mutate the engine and share the configured gesture budget.
var gestureTools = []string{
	"neurosim_inject",
	"neurosim_collapse",
	"neurosim_stimulate",
	"neurosim_trace",
	"neurosim_commit",
	"neurosim_recall",
}

// NewToolLimiters creates one limiter per gesture tool, each allowing
// perSecond events with the given burst. Read-only tools are unlimited.
func NewToolLimiters(perSecond float64, burst int) ToolLimiters {
	if burst < 1 {
		burst = 1
	}
	limiters := make(ToolLimiters, len(gestureTools)+1)
	for _, name := range gestureTools {
		limiters[name] = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
	// Snapshots can be large; keep them to a few per second.
	limiters["neurosim_snapshot"] = rate.NewLimiter(rate.Every(200*time.Millisecond), 5)
	return limiters
}

// CheckLimit checks the rate limit for a given tool name.
// Returns nil if allowed, or an error if rate limited.
// Tools without a configured limiter are always allowed.
func CheckLimit(limiters ToolLimiters, toolName string) error {
	return checkAt(limiters, toolName, time.Now())
}

func checkAt(limiters ToolLimiters, toolName string, now time.Time) error {
	limiter, ok := limiters[toolName]
	if !ok {
		return nil
	}
	if !limiter.AllowN(now, 1) {
		return fmt.Errorf("rate limit exceeded for %s, please try again shortly", toolName)
	}
	return nil
}
