package terminal

// View is the screen currently shown by a terminal.
type View string

const (
	ViewMain     View = "main"
	ViewDeposit  View = "deposit"
	ViewWithdraw View = "withdraw"
	ViewBalance  View = "balance"
	ViewExit     View = "exit"
)

// Input names the field that receives keystrokes on a view.
type Input string

const (
	InputNone     Input = ""
	InputChoice   Input = "choice"
	InputDeposit  Input = "deposit_amount"
	InputWithdraw Input = "withdraw_amount"
)

// ActiveInput returns the input focused on view v.
func (v View) ActiveInput() Input {
	switch v {
	case ViewMain:
		return InputChoice
	case ViewDeposit:
		return InputDeposit
	case ViewWithdraw:
		return InputWithdraw
	default:
		return InputNone
	}
}

// menu maps the numeric menu choices to their target views.
var menu = map[int]View{
	1: ViewDeposit,
	2: ViewWithdraw,
	3: ViewBalance,
	4: ViewExit,
}
