package ops

import (
	"math/rand/v2"
	"sync"
)

// Sampler decides which operational events are kept. Rates range from 0
// (drop everything) to 1 (keep everything).
type Sampler struct {
	mu           sync.RWMutex
	defaultRate  float64
	rateByAction map[string]float64
	roll         func() float64
}

// NewSampler creates a sampler with the given default rate.
func NewSampler(defaultRate float64) *Sampler {
	return &Sampler{
		defaultRate:  clamp(defaultRate),
		rateByAction: make(map[string]float64),
		roll:         rand.Float64,
	}
}

// ShouldSample reports whether an event with action should be kept.
func (s *Sampler) ShouldSample(action string) bool {
	return s.roll() < s.rateFor(action)
}

// SetRate overrides the rate of one action.
func (s *Sampler) SetRate(action string, rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateByAction[action] = clamp(rate)
}

func (s *Sampler) rateFor(action string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rate, ok := s.rateByAction[action]; ok {
		return rate
	}
	return s.defaultRate
}

func clamp(rate float64) float64 {
	switch {
	case rate < 0:
		return 0
	case rate > 1:
		return 1
	default:
		return rate
	}
}
