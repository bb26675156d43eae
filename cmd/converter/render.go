package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"fx-converter-go/internal/history"
	"fx-converter-go/internal/widget"
	"github.com/fatih/color"
)

var (
	activeStyle   = color.New(color.FgGreen)
	disabledStyle = color.New(color.FgYellow)
	badgeStyle    = color.New(color.FgCyan, color.Bold)
)

func render(out io.Writer, s widget.Snapshot) {
	fmt.Fprintf(out, "Real-time Rate: 1 EUR = %s USD\n", s.SimulatedRate)

	active := fmt.Sprintf("Active Rate:    1 EUR = %s USD", s.EffectiveRate)
	if s.OverrideActive {
		active += " " + badgeStyle.Sprint("[Custom]")
	}
	fmt.Fprintln(out, active)

	switch {
	case s.OverrideStatus == "":
	case s.OverrideActive:
		fmt.Fprintf(out, "Override %s: %s\n", s.OverrideInput, activeStyle.Sprint("✓ "+s.OverrideStatus))
	default:
		fmt.Fprintf(out, "Override %s: %s\n", s.OverrideInput, disabledStyle.Sprint("⚠ "+s.OverrideStatus))
	}

	fmt.Fprintf(out, "%s %s %s → %s %s %s\n",
		s.FromCurrency.Symbol(), displayAmount(s.Amount), s.FromCurrency,
		s.ToCurrency.Symbol(), s.Output, s.ToCurrency)
}

func displayAmount(a string) string {
	if a == "" {
		return "0.00"
	}
	return a
}

// renderHistory prints the history table padded to history.Capacity rows.
func renderHistory(out io.Writer, rows []history.Row) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Conversion History (Last %d)\n", history.Capacity)
	fmt.Fprintln(tw, "Time\tReal-time Rate\tOverride Rate\tFrom\tTo")
	for i := 0; i < history.Capacity; i++ {
		if i < len(rows) {
			r := rows[i]
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Time, r.RealTimeRate, r.OverrideRate, r.From, r.To)
			continue
		}
		fmt.Fprintln(tw, "\t\t\t\t")
	}
	_ = tw.Flush()
}
