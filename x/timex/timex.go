package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// StopTimer stops t and drains a pending fire so a later Reset starts clean.
func StopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

// ResetTimer re-arms t for d. Negative durations are clamped to zero.
func ResetTimer(t *time.Timer, d time.Duration) {
	if d < 0 {
		d = 0
	}
	StopTimer(t)
	t.Reset(d)
}

// Micros converts a duration from config (integer microseconds).
// Zero and negative values pass through unchanged as durations.
func Micros(us int) time.Duration { return time.Duration(us) * time.Microsecond }

// Millis converts a duration from config (integer milliseconds).
func Millis(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }
