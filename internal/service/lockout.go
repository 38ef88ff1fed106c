package service

import (
	"time"
)

// Lockout policy constants. The window starts at the fifth consecutive
// failure and grows by five minutes with each failure after that.
const (
	lockoutThreshold  = 5
	lockoutStepMinute = 5
)

// LockoutDecision is the outcome of evaluating an account's lockout state.
// It is derived, never stored; persistence of the inputs is the caller's
// side effect.
type LockoutDecision struct {
	Blocked          bool
	RemainingMinutes int
}

// EvaluateLockout decides whether an account is currently blocked. It is a
// pure function of the stored block end and the clock, checked before any
// credential comparison so that attempts against a blocked account never
// advance the failure counter.
//
// RemainingMinutes is ceil(remaining/minute) − 1: the boundary minute is
// not shown rounded up, so "4 minutes remaining" means between 4 and 5.
func EvaluateLockout(blockedUntil *time.Time, now time.Time) LockoutDecision {
	if blockedUntil == nil || !now.Before(*blockedUntil) {
		return LockoutDecision{}
	}
	remaining := blockedUntil.Sub(now)
	mins := int((remaining+time.Minute-1)/time.Minute) - 1
	if mins < 0 {
		mins = 0
	}
	return LockoutDecision{Blocked: true, RemainingMinutes: mins}
}

// RecordFailure advances the failure counter and computes the new block
// end, if any. At the fifth consecutive failure a five-minute window opens;
// each further failure adds five minutes: window = (attempts − 4) × 5m.
// Returns the new attempt count and the block end (nil below threshold).
func RecordFailure(attempts int, now time.Time) (int, *time.Time) {
	attempts++
	if attempts < lockoutThreshold {
		return attempts, nil
	}
	window := time.Duration(attempts-lockoutThreshold+1) * lockoutStepMinute * time.Minute
	until := now.Add(window)
	return attempts, &until
}
