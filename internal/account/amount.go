package account

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input into a positive, finite amount.
func ParseAmount(raw string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

// FormatAmount renders an amount with exactly two decimals.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}
