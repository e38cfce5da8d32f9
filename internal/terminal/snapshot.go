package terminal

import (
	"github.com/congo-pay/bank_terminal/internal/account"
	"github.com/congo-pay/bank_terminal/internal/notification"
)

// Snapshot is a point-in-time copy of a terminal, safe to hand to renderers and
// HTTP responses.
type Snapshot struct {
	SessionID      string                 `json:"session_id"`
	View           View                   `json:"view"`
	ActiveInput    Input                  `json:"active_input"`
	Currency       string                 `json:"currency"`
	Balance        float64                `json:"balance"`
	BalanceDisplay string                 `json:"balance_display"`
	Tier           account.Tier           `json:"tier"`
	TierStatus     string                 `json:"tier_status"`
	Transactions   []account.Transaction  `json:"transactions"`
	Messages       []notification.Message `json:"messages"`
	Screen         string                 `json:"screen"`
}
