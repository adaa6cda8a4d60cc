package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// DefaultCurrency is the shop currency when none is configured.
var DefaultCurrency = currency.USD

// ParseCurrency parses an ISO 4217 currency code.
func ParseCurrency(code string) (currency.Unit, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("parse currency %q: %w", code, err)
	}
	return unit, nil
}

// FormatMoney renders amount in unit with two decimal places, e.g. "USD 24.00".
func FormatMoney(unit currency.Unit, amount decimal.Decimal) string {
	return unit.String() + " " + amount.StringFixed(2)
}
