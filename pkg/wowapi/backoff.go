package wowapi

import (
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// fixedSchedule implements backoff.BackOff over an explicit list of delays,
// used where spec.md pins exact retry timings (rather than a geometric
// series cenkalti/backoff's ExponentialBackOff can express directly).
type fixedSchedule struct {
	delays     []time.Duration
	jitterFrac float64 // 0 disables jitter
	idx        int
}

// newFixedSchedule builds a fixedSchedule. jitterFrac of 0.2 means ±20%.
func newFixedSchedule(delays []time.Duration, jitterFrac float64) *fixedSchedule {
	return &fixedSchedule{delays: delays, jitterFrac: jitterFrac}
}

// NextBackOff returns the next delay, or backoff.Stop once the schedule is
// exhausted — at which point the caller has made len(delays)+1 attempts.
func (s *fixedSchedule) NextBackOff() time.Duration {
	if s.idx >= len(s.delays) {
		return backoff.Stop
	}
	d := s.delays[s.idx]
	s.idx++
	return jitter(d, s.jitterFrac)
}

// Reset rewinds the schedule so it can be reused for a subsequent call.
func (s *fixedSchedule) Reset() { s.idx = 0 }

// OverrideNext forces the next NextBackOff call to return d verbatim,
// un-jittered. Used to honor an upstream Retry-After header.
func (s *fixedSchedule) OverrideNext(d time.Duration) {
	s.jitterFrac = 0
	if s.idx >= len(s.delays) {
		s.delays = append(s.delays, d)
		return
	}
	s.delays[s.idx] = d
}

func jitter(d time.Duration, frac float64) time.Duration {
	if frac <= 0 {
		return d
	}
	// Uniform in [d*(1-frac), d*(1+frac)].
	span := float64(d) * frac
	offset := (rand.Float64()*2 - 1) * span
	return time.Duration(float64(d) + offset)
}
