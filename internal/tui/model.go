// Package tui drives a terminal session from the keyboard with Bubble Tea.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/congo-pay/bank_terminal/internal/account"
	"github.com/congo-pay/bank_terminal/internal/terminal"
)

// refreshInterval re-renders the screen so expired status messages disappear
// without a keystroke.
const refreshInterval = 250 * time.Millisecond

type tickMsg time.Time

// Model is the Bubble Tea model wrapping one terminal session.
type Model struct {
	ctx      context.Context
	term     *terminal.Terminal
	input    string
	err      error
	quitting bool
}

// New builds a model driving term.
func New(ctx context.Context, term *terminal.Terminal) Model {
	return Model{ctx: ctx, term: term}
}

// Input returns the text typed into the focused input.
func (m Model) Input() string {
	return m.input
}

// Err returns the last storage failure, if any.
func (m Model) Err() error {
	return m.err
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view := m.term.View()
	focused := view.ActiveInput() != terminal.InputNone

	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyCtrlL:
		m.term.ClearMessages()
		return m, nil
	case tea.KeyEsc:
		switch view {
		case terminal.ViewExit:
			m.run(m.term.StartNewSession)
		case terminal.ViewDeposit, terminal.ViewWithdraw, terminal.ViewBalance:
			m.run(m.term.Back)
			m.input = ""
		}
		return m, nil
	case tea.KeyEnter:
		if focused {
			m.submit(view)
		}
		return m, nil
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
		return m, nil
	case tea.KeyRunes:
		if focused && isAmountText(msg.Runes) {
			m.input += string(msg.Runes)
			return m, nil
		}
	default:
		return m, nil
	}

	switch strings.ToLower(string(msg.Runes)) {
	case "b":
		if view == terminal.ViewBalance {
			m.run(m.term.Back)
		}
	case "n":
		if view == terminal.ViewExit {
			m.run(m.term.StartNewSession)
		}
	case "r":
		if view == terminal.ViewExit {
			m.run(m.term.Reset)
		}
	case "q":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// submit sends the typed text to the action of the focused input. The input
// is kept after a rejected entry so it can be corrected.
func (m *Model) submit(view terminal.View) {
	var action func(context.Context, string) error
	switch view {
	case terminal.ViewMain:
		action = m.term.SelectMenu
	case terminal.ViewDeposit:
		action = m.term.Deposit
	case terminal.ViewWithdraw:
		action = m.term.Withdraw
	default:
		return
	}

	err := action(m.ctx, m.input)
	if err == nil {
		m.input = ""
		m.err = m.term.Touch(m.ctx)
		return
	}
	if !isDomainError(err) {
		m.err = err
	}
}

func (m *Model) run(action func(context.Context) error) {
	if err := action(m.ctx); err != nil && !isDomainError(err) {
		m.err = err
		return
	}
	m.err = m.term.Touch(m.ctx)
}

func isAmountText(runes []rune) bool {
	for _, r := range runes {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return len(runes) > 0
}

func isDomainError(err error) bool {
	return errors.Is(err, terminal.ErrInvalidChoice) ||
		errors.Is(err, terminal.ErrActionUnavailable) ||
		errors.Is(err, account.ErrInvalidAmount) ||
		errors.Is(err, account.ErrInsufficientFunds)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.term.Snapshot()
	var b strings.Builder
	b.WriteString(terminal.Render(snap, m.input))
	if m.err != nil {
		b.WriteString("\n⚠️  storage error: ")
		b.WriteString(m.err.Error())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(help(snap.View))
	b.WriteString("\n")
	return b.String()
}

func help(view terminal.View) string {
	switch view {
	case terminal.ViewMain:
		return "enter select • ctrl+l clear messages • q quit"
	case terminal.ViewDeposit, terminal.ViewWithdraw:
		return "enter confirm • esc back • q quit"
	case terminal.ViewBalance:
		return "b/esc back • q quit"
	case terminal.ViewExit:
		return "n/esc new session • r reset all data • q quit"
	}
	return ""
}
