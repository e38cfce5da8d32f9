package terminal

import (
	"fmt"
	"strings"

	"github.com/congo-pay/bank_terminal/internal/account"
)

const banner = `╔══════════════════════════════════════╗
║        Bank Management System        ║
╚══════════════════════════════════════╝`

const mainMenu = `┌─────────── MAIN MENU ───────────┐
│ 1. 💰 Deposit Money             │
│ 2. 💸 Withdraw Money            │
│ 3. 💳 Check Balance             │
│ 4. 🚪 Exit System               │
└─────────────────────────────────┘`

const farewell = `══════════════════════════════════════════
Thank you for using our Bank Management System!
Have a great day!
══════════════════════════════════════════`

// Render draws the terminal screen for s. input is the text currently typed
// into the active input, if any.
func Render(s Snapshot, input string) string {
	var b strings.Builder
	b.WriteString(banner)
	b.WriteString("\n\n")

	switch s.View {
	case ViewMain:
		b.WriteString(mainMenu)
		fmt.Fprintf(&b, "\nEnter your choice (1-4): %s\n", input)
	case ViewDeposit:
		b.WriteString("--- DEPOSIT TRANSACTION ---\n")
		fmt.Fprintf(&b, "Current Balance: %s\n", s.BalanceDisplay)
		fmt.Fprintf(&b, "Enter amount to deposit: %s%s\n", s.Currency, input)
	case ViewWithdraw:
		b.WriteString("--- WITHDRAWAL TRANSACTION ---\n")
		fmt.Fprintf(&b, "Current Balance: %s\n", s.BalanceDisplay)
		fmt.Fprintf(&b, "Enter amount to withdraw: %s%s\n", s.Currency, input)
	case ViewBalance:
		b.WriteString("--- ACCOUNT BALANCE ---\n")
		fmt.Fprintf(&b, "Current Balance: %s\n", s.BalanceDisplay)
		b.WriteString(s.TierStatus)
		b.WriteString("\n")
	case ViewExit:
		b.WriteString(farewell)
		b.WriteString("\n")
	}

	if len(s.Messages) > 0 {
		b.WriteString("\n")
		for _, msg := range s.Messages {
			b.WriteString(msg.Text)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n📊 Transaction History\n")
	if len(s.Transactions) == 0 {
		b.WriteString("No transactions yet\n")
		return b.String()
	}
	for _, tx := range s.Transactions {
		icon, label, sign := "💰", "Deposit", "+"
		if tx.Kind == account.KindWithdraw {
			icon, label, sign = "💸", "Withdraw", "-"
		}
		fmt.Fprintf(&b, "%s %-8s %s%s%s  %s\n", icon, label, sign, s.Currency, account.FormatAmount(tx.Amount), tx.Timestamp)
	}
	return b.String()
}
