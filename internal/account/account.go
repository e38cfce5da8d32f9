package account

import (
	"fmt"
	"time"
)

const timestampLayout = "1/2/2006, 3:04:05 PM"

// Account holds the balance and recent history of the single simulated account.
// It is not safe for concurrent use; the owning terminal serialises access.
type Account struct {
	balance float64
	history []Transaction
	now     func() time.Time
}

// New builds an account from previously stored values. The history is trimmed to
// HistoryLimit entries and is not reconciled with the balance.
func New(balance float64, history []Transaction) *Account {
	if len(history) > HistoryLimit {
		history = history[:HistoryLimit]
	}
	h := make([]Transaction, len(history))
	copy(h, history)
	return &Account{balance: balance, history: h, now: time.Now}
}

// Balance returns the current balance.
func (a *Account) Balance() float64 {
	return a.balance
}

// History returns a copy of the transaction history, newest first.
func (a *Account) History() []Transaction {
	out := make([]Transaction, len(a.history))
	copy(out, a.history)
	return out
}

// Deposit adds amount to the balance and records the transaction.
func (a *Account) Deposit(amount float64) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, ErrInvalidAmount
	}
	a.balance += amount
	return a.record(KindDeposit, amount), nil
}

// Withdraw subtracts amount from the balance and records the transaction.
func (a *Account) Withdraw(amount float64) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, ErrInvalidAmount
	}
	if amount > a.balance {
		return Transaction{}, fmt.Errorf("%w: available %s", ErrInsufficientFunds, FormatAmount(a.balance))
	}
	a.balance -= amount
	return a.record(KindWithdraw, amount), nil
}

// Restore puts back a balance and history captured earlier with Balance and
// History.
func (a *Account) Restore(balance float64, history []Transaction) {
	a.balance = balance
	a.history = append([]Transaction(nil), history...)
}

// Reset zeroes the balance and drops the history.
func (a *Account) Reset() {
	a.balance = 0
	a.history = nil
}

func (a *Account) record(kind Kind, amount float64) Transaction {
	tx := Transaction{
		Kind:      kind,
		Amount:    amount,
		Timestamp: a.now().Format(timestampLayout),
		Balance:   a.balance,
	}
	a.history = append([]Transaction{tx}, a.history...)
	if len(a.history) > HistoryLimit {
		a.history = a.history[:HistoryLimit]
	}
	return tx
}
