package account

import "errors"

var (
	// ErrInvalidAmount is returned for amounts that are not numbers or not positive.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds occurs when a withdrawal exceeds the available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
)
