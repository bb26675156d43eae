package rate

import (
	"math/rand"
	"time"

	"fx-converter-go/internal/config"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultInitialRate  = 1.1
	DefaultTickInterval = 3 * time.Second
	DefaultMaxDelta     = 0.05

	// Precision is the number of decimals a rate is stored and displayed with.
	Precision = 4
)

// Simulator is a bounded-step random walk over the EUR/USD rate.
// It is not safe for concurrent use; a single owner drives Step on its own ticker.
type Simulator struct {
	logger   *zap.Logger
	rng      *rand.Rand
	current  float64
	interval time.Duration
	maxDelta float64
}

// NewSimulator creates a simulator from cfg. Zero values fall back to the defaults.
func NewSimulator(cfg config.Simulator, logger *zap.Logger) *Simulator {
	initial := cfg.InitialRate
	if initial <= 0 {
		initial = DefaultInitialRate
	}
	interval := cfg.TickInterval
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	maxDelta := cfg.MaxDelta
	if maxDelta <= 0 {
		maxDelta = DefaultMaxDelta
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Simulator{
		logger:   logger.Named("simulator"),
		rng:      rand.New(rand.NewSource(seed)),
		current:  Round(initial),
		interval: interval,
		maxDelta: maxDelta,
	}
}

// Current returns the last simulated rate.
func (s *Simulator) Current() float64 {
	return s.current
}

// Interval is the period between two Step calls.
func (s *Simulator) Interval() time.Duration {
	return s.interval
}

// Step moves the rate by a delta drawn uniformly from [-maxDelta, +maxDelta]
// and stores the result rounded to Precision decimals.
func (s *Simulator) Step() float64 {
	delta := s.rng.Float64()*2*s.maxDelta - s.maxDelta
	next := decimal.NewFromFloat(s.current).
		Add(decimal.NewFromFloat(delta)).
		Round(Precision).
		InexactFloat64()

	s.logger.Debug("Simulated rate updated",
		zap.Float64("previous", s.current),
		zap.Float64("delta", delta),
		zap.Float64("rate", next),
	)
	s.current = next
	return next
}

// Round rounds r to Precision decimals, half away from zero.
func Round(r float64) float64 {
	if !isFinite(r) {
		return r
	}
	return decimal.NewFromFloat(r).Round(Precision).InexactFloat64()
}

// Format renders r with exactly Precision decimals.
func Format(r float64) string {
	if !isFinite(r) {
		return "0.0000"
	}
	return decimal.NewFromFloat(r).StringFixed(Precision)
}
