package widget

import (
	"fmt"

	"fx-converter-go/internal/converter"
	"fx-converter-go/internal/history"
	"fx-converter-go/internal/rate"
)

const statusActive = "Override active"

// Snapshot is everything the presentation layer renders.
type Snapshot struct {
	Amount         string             `json:"amount"`
	OverrideInput  string             `json:"override_input"`
	Mode           converter.Mode     `json:"mode"`
	FromCurrency   converter.Currency `json:"from_currency"`
	ToCurrency     converter.Currency `json:"to_currency"`
	Output         string             `json:"output"`
	SimulatedRate  string             `json:"simulated_rate"`
	EffectiveRate  string             `json:"effective_rate"`
	OverrideActive bool               `json:"override_active"`
	// OverrideStatus is empty while the override field is empty.
	OverrideStatus string        `json:"override_status,omitempty"`
	History        []history.Row `json:"history"`
}

// snapshot derives the view from current state; nothing in it is cached.
func (w *Widget) snapshot() Snapshot {
	eff := w.effective()

	var status string
	if w.overrideInput != "" {
		if eff.OverrideActive {
			status = statusActive
		} else {
			status = fmt.Sprintf("Override disabled (>%g%% difference)", w.resolver.Tolerance())
		}
	}

	return Snapshot{
		Amount:         w.amount,
		OverrideInput:  w.overrideInput,
		Mode:           w.mode,
		FromCurrency:   w.mode.From(),
		ToCurrency:     w.mode.To(),
		Output:         converter.Convert(w.amount, w.mode, eff.Rate),
		SimulatedRate:  rate.Format(w.sim.Current()),
		EffectiveRate:  rate.Format(eff.Rate),
		OverrideActive: eff.OverrideActive,
		OverrideStatus: status,
		History:        w.history.Rows(),
	}
}
