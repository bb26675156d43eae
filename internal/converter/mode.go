package converter

import "fmt"

// Currency is one side of the supported pair.
type Currency string

const (
	EUR Currency = "EUR"
	USD Currency = "USD"
)

// Symbol returns the display sign of the currency.
func (c Currency) Symbol() string {
	switch c {
	case EUR:
		return "€"
	case USD:
		return "$"
	}
	return ""
}

// Mode is the conversion direction. Its value is the "from" currency.
type Mode string

const (
	EURToUSD Mode = "EUR"
	USDToEUR Mode = "USD"
)

// ParseMode accepts a mode value ("EUR", "USD").
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case EURToUSD, USDToEUR:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown conversion mode %q", s)
}

// From is the currency the entered amount is denominated in.
func (m Mode) From() Currency {
	if m == USDToEUR {
		return USD
	}
	return EUR
}

// To is the currency of the converted amount.
func (m Mode) To() Currency {
	if m == USDToEUR {
		return EUR
	}
	return USD
}

// Toggle returns the opposite direction.
func (m Mode) Toggle() Mode {
	if m == USDToEUR {
		return EURToUSD
	}
	return USDToEUR
}

func (m Mode) String() string {
	return fmt.Sprintf("%s → %s", m.From(), m.To())
}
