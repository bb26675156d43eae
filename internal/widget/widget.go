package widget

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync/atomic"
	"time"

	"fx-converter-go/internal/config"
	"fx-converter-go/internal/converter"
	"fx-converter-go/internal/history"
	"fx-converter-go/internal/rate"
	"go.uber.org/zap"
)

var (
	ErrStopped        = errors.New("widget is stopped")
	ErrAlreadyRunning = errors.New("widget is already running")
	ErrInvalidInput   = errors.New("input rejected")
)

var (
	amountPattern   = regexp.MustCompile(`^\d*\.?\d*$`)
	overridePattern = regexp.MustCompile(`^\d*\.?\d{0,4}$`)
)

// ticker is the part of time.Ticker the event loop needs.
type ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

func newRealTicker(d time.Duration) ticker {
	return realTicker{t: time.NewTicker(d)}
}

type event struct {
	name  string
	apply func() error
	reply chan result
}

type result struct {
	snap Snapshot
	err  error
}

// Widget owns the converter state. Every tick and user edit is applied by the
// single goroutine running Run, one at a time.
type Widget struct {
	logger   *zap.Logger
	sim      *rate.Simulator
	resolver rate.Resolver
	history  *history.Log

	amount        string
	overrideInput string
	mode          converter.Mode

	events    chan event
	done      chan struct{}
	running   atomic.Bool
	newTicker func(time.Duration) ticker
	onTick    func(Snapshot)
}

// Option configures a Widget.
type Option func(*Widget)

// WithHistory replaces the default history log.
func WithHistory(h *history.Log) Option {
	return func(w *Widget) {
		w.history = h
	}
}

// WithTickHook registers fn to be called from the event loop after every rate tick.
func WithTickHook(fn func(Snapshot)) Option {
	return func(w *Widget) {
		w.onTick = fn
	}
}

// New creates a widget in EUR→USD mode with empty inputs.
func New(cfg config.Config, logger *zap.Logger, opts ...Option) *Widget {
	logger = logger.Named("widget")
	w := &Widget{
		logger:    logger,
		sim:       rate.NewSimulator(cfg.Simulator, logger),
		resolver:  rate.NewResolver(cfg.Override.TolerancePercent),
		history:   history.New(),
		mode:      converter.EURToUSD,
		events:    make(chan event),
		done:      make(chan struct{}),
		newTicker: newRealTicker,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run processes ticks and edits until ctx is cancelled. The tick timer is
// created on entry and stopped on return; a widget runs at most once.
func (w *Widget) Run(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(w.done)

	interval := w.sim.Interval()
	t := w.newTicker(interval)
	defer t.Stop()

	w.logger.Info("Starting rate simulation",
		zap.Duration("interval", interval),
		zap.String("rate", rate.Format(w.sim.Current())),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping widget...")
			return nil
		case <-t.C():
			w.sim.Step()
			if w.onTick != nil {
				w.onTick(w.snapshot())
			}
		case ev := <-w.events:
			err := ev.apply()
			if err != nil {
				w.logger.Debug("Event rejected", zap.String("event", ev.name), zap.Error(err))
			}
			ev.reply <- result{snap: w.snapshot(), err: err}
		}
	}
}

// SetAmount replaces the amount text. A value that is a positive number records a conversion.
func (w *Widget) SetAmount(ctx context.Context, value string) (Snapshot, error) {
	return w.do(ctx, "amount", func() error {
		if !amountPattern.MatchString(value) {
			return fmt.Errorf("%w: amount %q", ErrInvalidInput, value)
		}
		w.amount = value
		w.recordConversion()
		return nil
	})
}

// SetOverride replaces the override text. Empty clears the override.
func (w *Widget) SetOverride(ctx context.Context, value string) (Snapshot, error) {
	return w.do(ctx, "override", func() error {
		if !overridePattern.MatchString(value) {
			return fmt.Errorf("%w: override %q", ErrInvalidInput, value)
		}
		w.overrideInput = value
		return nil
	})
}

// Toggle flips the conversion direction. The current output becomes the new amount.
func (w *Widget) Toggle(ctx context.Context) (Snapshot, error) {
	return w.do(ctx, "toggle", func() error {
		w.toggle()
		return nil
	})
}

// SetMode switches to mode, toggling only if it differs from the current one.
func (w *Widget) SetMode(ctx context.Context, mode converter.Mode) (Snapshot, error) {
	return w.do(ctx, "mode", func() error {
		if _, err := converter.ParseMode(string(mode)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if mode != w.mode {
			w.toggle()
		}
		return nil
	})
}

// Snapshot returns the current view of the widget.
func (w *Widget) Snapshot(ctx context.Context) (Snapshot, error) {
	return w.do(ctx, "snapshot", func() error { return nil })
}

func (w *Widget) do(ctx context.Context, name string, apply func() error) (Snapshot, error) {
	ev := event{name: name, apply: apply, reply: make(chan result, 1)}

	select {
	case w.events <- ev:
	case <-w.done:
		return Snapshot{}, ErrStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}

	select {
	case r := <-ev.reply:
		return r.snap, r.err
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (w *Widget) effective() rate.Effective {
	var override *float64
	if v, ok := converter.ParseAmount(w.overrideInput); ok {
		override = &v
	}
	return w.resolver.Resolve(override, w.sim.Current())
}

func (w *Widget) toggle() {
	output := converter.Convert(w.amount, w.mode, w.effective().Rate)
	w.amount = converter.CarryOver(output)
	w.mode = w.mode.Toggle()
	w.logger.Debug("Mode toggled", zap.Stringer("mode", w.mode), zap.String("amount", w.amount))
}

func (w *Widget) recordConversion() {
	amount, ok := converter.ParseAmount(w.amount)
	if !ok || amount <= 0 {
		return
	}
	simRate := w.sim.Current()
	eff := w.effective()
	out, ok := converter.Amount(amount, w.mode, eff.Rate)
	if !ok {
		return
	}

	c := history.Conversion{
		SimRate:        simRate,
		OverrideActive: eff.OverrideActive,
		FromAmount:     amount,
		FromCurrency:   w.mode.From(),
		ToAmount:       out.InexactFloat64(),
		ToCurrency:     w.mode.To(),
	}
	if eff.OverrideActive {
		c.OverrideRate = eff.Rate
	}
	e := w.history.Record(c)

	w.logger.Info("Conversion recorded",
		zap.String("id", e.ID.String()),
		zap.Float64("from_amount", c.FromAmount),
		zap.String("from", string(c.FromCurrency)),
		zap.Float64("to_amount", c.ToAmount),
		zap.String("to", string(c.ToCurrency)),
		zap.Float64("rate", eff.Rate),
		zap.Bool("override", eff.OverrideActive),
	)
}
