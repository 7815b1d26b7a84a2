// Package policy decides whether posting is currently allowed under the
// configured rate limits. Evaluation is a pure function of the attempt
// history, so callers can reason about it without touching the store.
package policy

import (
	"fmt"
	"time"

	"reelpost/internal/catalog"
	"reelpost/internal/config"
)

// Window is the trailing period the daily limit applies to. The limit is a
// rolling 24 hours, not a calendar day, so a midnight rollover never unlocks
// a burst.
const Window = 24 * time.Hour

// Denial codes carried on Decision for programmatic handling.
const (
	CodeDailyLimit = "daily_limit"
	CodeCooldown   = "cooldown"
)

// Config holds the evaluated limits.
type Config struct {
	MaxPostsPerDay int
	MinDelay       time.Duration
}

// FromSafety converts the TOML safety section into evaluator limits.
func FromSafety(s config.Safety) Config {
	return Config{
		MaxPostsPerDay: s.MaxPostsPerDay,
		MinDelay:       time.Duration(s.MinDelayBetweenPosts) * time.Second,
	}
}

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Allowed bool
	Code    string
	Reason  string
	// Wait is how long until the cooldown clears. Zero unless Code is cooldown.
	Wait time.Duration
}

// Evaluate checks the attempt history against the limits at the given
// instant. Only confirmed posts consume budget; aborted and errored attempts
// never count. Events may arrive in any order.
func Evaluate(now time.Time, events []*catalog.PostEvent, cfg Config) Decision {
	cutoff := now.Add(-Window)
	confirmed := 0
	var latest time.Time
	for _, event := range events {
		if event == nil || !event.Outcome.CountsTowardLimits() {
			continue
		}
		at := event.StartedAt
		if event.ResolvedAt != nil {
			at = *event.ResolvedAt
		}
		if at.Before(cutoff) {
			continue
		}
		confirmed++
		if at.After(latest) {
			latest = at
		}
	}

	if cfg.MaxPostsPerDay > 0 && confirmed >= cfg.MaxPostsPerDay {
		return Decision{
			Code:   CodeDailyLimit,
			Reason: fmt.Sprintf("daily limit reached: %d/%d", confirmed, cfg.MaxPostsPerDay),
		}
	}

	if cfg.MinDelay > 0 && !latest.IsZero() {
		elapsed := now.Sub(latest)
		if elapsed < 0 {
			// Clock skew: treat a future timestamp as a post made just now.
			elapsed = 0
		}
		if elapsed < cfg.MinDelay {
			wait := cfg.MinDelay - elapsed
			return Decision{
				Code:   CodeCooldown,
				Reason: fmt.Sprintf("cooldown: must wait %s more", wait.Round(time.Second)),
				Wait:   wait,
			}
		}
	}

	return Decision{Allowed: true}
}
