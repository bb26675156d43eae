package history

import (
	"fmt"
	"time"

	"fx-converter-go/internal/converter"
	"fx-converter-go/internal/rate"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NoOverride marks a history row recorded without an active override.
const NoOverride = "—"

// timeOfDay is the layout of the Time column.
const timeOfDay = "15:04:05"

// Conversion is what the widget knows at the instant an amount is converted.
type Conversion struct {
	SimRate        float64
	OverrideRate   float64 // meaningful only when OverrideActive
	OverrideActive bool
	FromAmount     float64
	FromCurrency   converter.Currency
	ToAmount       float64
	ToCurrency     converter.Currency
}

// Entry is an immutable record of a completed conversion.
type Entry struct {
	ID        uuid.UUID
	Timestamp time.Time
	Conversion
}

// Row is an Entry formatted for the five-row history table.
type Row struct {
	ID           string `json:"id"`
	Time         string `json:"time"`
	RealTimeRate string `json:"real_time_rate"`
	OverrideRate string `json:"override_rate"`
	From         string `json:"from"`
	To           string `json:"to"`
}

// Row renders the entry for display.
func (e Entry) Row() Row {
	override := NoOverride
	if e.OverrideActive {
		override = rate.Format(e.OverrideRate)
	}
	return Row{
		ID:           e.ID.String(),
		Time:         e.Timestamp.Format(timeOfDay),
		RealTimeRate: rate.Format(e.SimRate),
		OverrideRate: override,
		From:         formatMoney(e.FromAmount, e.FromCurrency),
		To:           formatMoney(e.ToAmount, e.ToCurrency),
	}
}

func formatMoney(amount float64, c converter.Currency) string {
	return fmt.Sprintf("%s %s", converter.FormatAmount(decimal.NewFromFloat(amount)), c)
}
