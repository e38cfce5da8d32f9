package account

// HistoryLimit is the number of transactions kept, newest first.
const HistoryLimit = 10

// Kind distinguishes deposits from withdrawals.
type Kind string

const (
	KindDeposit  Kind = "deposit"
	KindWithdraw Kind = "withdraw"
)

// Transaction is an immutable record of a completed deposit or withdrawal.
// Balance holds the account balance right after the transaction was applied.
type Transaction struct {
	Kind      Kind    `json:"type"`
	Amount    float64 `json:"amount"`
	Timestamp string  `json:"timestamp"`
	Balance   float64 `json:"balance"`
}

// Tier is the textual classification of a balance.
type Tier string

const (
	TierEmpty    Tier = "empty"
	TierLow      Tier = "low"
	TierModerate Tier = "moderate"
	TierGood     Tier = "good"
)

// LowBalanceThreshold separates the low tier from the moderate tier.
const LowBalanceThreshold = 100

const goodBalanceThreshold = 1000

// Classify maps a balance to its tier.
func Classify(balance float64) Tier {
	switch {
	case balance == 0:
		return TierEmpty
	case balance < LowBalanceThreshold:
		return TierLow
	case balance < goodBalanceThreshold:
		return TierModerate
	default:
		return TierGood
	}
}

// Status returns the line shown on the balance screen for the tier.
func (t Tier) Status() string {
	switch t {
	case TierEmpty:
		return "Status: Account is empty"
	case TierLow:
		return "Status: Low balance"
	case TierModerate:
		return "Status: Moderate balance"
	default:
		return "Status: Good balance"
	}
}
