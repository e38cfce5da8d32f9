package terminal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/congo-pay/bank_terminal/internal/account"
	"github.com/congo-pay/bank_terminal/internal/logging"
	"github.com/congo-pay/bank_terminal/internal/notification"
	"github.com/congo-pay/bank_terminal/internal/session"
)

const defaultCurrency = "₹"

// Options tunes terminals built by Load and by the Registry.
type Options struct {
	Currency  string
	StatusTTL time.Duration
	Scheduler notification.Scheduler
}

func (o Options) currency() string {
	if o.Currency == "" {
		return defaultCurrency
	}
	return o.Currency
}

// Terminal is one bank terminal session: the current view, the account it
// operates on and the status messages it shows. All methods are safe for
// concurrent use; actions are applied one at a time.
type Terminal struct {
	mu       sync.Mutex
	id       string
	view     View
	account  *account.Account
	notifier *notification.Notifier
	store    *session.Store
	currency string
	logger   *slog.Logger
}

// Load rehydrates the session's balance and history from storage and starts on
// the main menu with no status messages.
func Load(ctx context.Context, id string, storage session.Storage, opts Options, logger *slog.Logger) (*Terminal, error) {
	store := session.NewStore(storage, id, logger)
	logger = logging.ForSession(logger, id)
	balance, history, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Terminal{
		id:       id,
		view:     ViewMain,
		account:  account.New(balance, history),
		notifier: notification.NewNotifier(opts.StatusTTL, opts.Scheduler, logger),
		store:    store,
		currency: opts.currency(),
		logger:   logger,
	}, nil
}

// ID returns the session id.
func (t *Terminal) ID() string {
	return t.id
}

// View returns the current view.
func (t *Terminal) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view
}

// SelectMenu handles a menu choice typed on the main view.
func (t *Terminal) SelectMenu(ctx context.Context, raw string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.require(ViewMain); err != nil {
		return err
	}

	choice, err := strconv.Atoi(strings.TrimSpace(raw))
	target, ok := menu[choice]
	if err != nil || !ok {
		t.notifier.Push(ctx, "❌ Invalid choice! Please select from options 1-4.", notification.SeverityError)
		return fmt.Errorf("%w: %q", ErrInvalidChoice, raw)
	}

	t.notifier.Clear()
	t.view = target
	return nil
}

// Deposit credits the parsed amount on the deposit view.
func (t *Terminal) Deposit(ctx context.Context, raw string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.require(ViewDeposit); err != nil {
		return err
	}

	amount, err := account.ParseAmount(raw)
	if err != nil {
		t.notifier.Push(ctx, "❌ Invalid amount! Please enter positive value.", notification.SeverityError)
		return err
	}
	balance, history := t.account.Balance(), t.account.History()
	tx, err := t.account.Deposit(amount)
	if err != nil {
		return err
	}
	if err := t.persist(ctx); err != nil {
		t.rollback(ctx, balance, history)
		return err
	}

	t.notifier.Push(ctx, fmt.Sprintf("✅ Successfully deposited %s\nNew Balance: %s",
		t.money(tx.Amount), t.money(tx.Balance)), notification.SeveritySuccess)
	return nil
}

// Withdraw debits the parsed amount on the withdraw view. A remaining balance
// strictly between zero and the low balance threshold yields a warning.
func (t *Terminal) Withdraw(ctx context.Context, raw string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.require(ViewWithdraw); err != nil {
		return err
	}

	amount, err := account.ParseAmount(raw)
	if err != nil {
		t.notifier.Push(ctx, "❌ Invalid amount! Please enter positive value.", notification.SeverityError)
		return err
	}
	balance, history := t.account.Balance(), t.account.History()
	tx, err := t.account.Withdraw(amount)
	if errors.Is(err, account.ErrInsufficientFunds) {
		t.notifier.Push(ctx, fmt.Sprintf("❌ Insufficient balance!\nAvailable Balance: %s",
			t.money(t.account.Balance())), notification.SeverityError)
		return err
	}
	if err != nil {
		return err
	}
	if err := t.persist(ctx); err != nil {
		t.rollback(ctx, balance, history)
		return err
	}

	text := fmt.Sprintf("✅ Successfully withdrawn %s\nRemaining Balance: %s", t.money(tx.Amount), t.money(tx.Balance))
	if tx.Balance > 0 && tx.Balance < account.LowBalanceThreshold {
		t.notifier.Push(ctx, text+"\n⚠️ Warning: Your balance is getting low!", notification.SeverityWarning)
	} else {
		t.notifier.Push(ctx, text, notification.SeveritySuccess)
	}
	return nil
}

// Back returns to the main menu from the deposit, withdraw or balance view.
func (t *Terminal) Back(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.require(ViewDeposit, ViewWithdraw, ViewBalance); err != nil {
		return err
	}
	t.toMain()
	return nil
}

// StartNewSession leaves the exit view for the main menu, keeping the balance.
func (t *Terminal) StartNewSession(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.require(ViewExit); err != nil {
		return err
	}
	t.toMain()
	return nil
}

// Reset removes the stored keys, wipes the balance and the history, then
// returns to the main menu. Nothing changes when the storage cannot be cleared.
func (t *Terminal) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.require(ViewExit); err != nil {
		return err
	}

	if err := t.store.Clear(ctx); err != nil {
		t.logError(ctx, "clear session storage", err)
		return err
	}
	t.account.Reset()
	t.view = ViewMain
	t.notifier.Push(ctx, "🔄 New session started!", notification.SeveritySuccess)
	return nil
}

// Touch extends the lifetime of the session's stored keys.
func (t *Terminal) Touch(ctx context.Context) error {
	return t.store.Touch(ctx)
}

// ClearMessages hides every status message.
func (t *Terminal) ClearMessages() {
	t.notifier.Clear()
}

// Snapshot captures the terminal state together with its rendered screen.
func (t *Terminal) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	balance := t.account.Balance()
	tier := account.Classify(balance)
	snap := Snapshot{
		SessionID:      t.id,
		View:           t.view,
		ActiveInput:    t.view.ActiveInput(),
		Currency:       t.currency,
		Balance:        balance,
		BalanceDisplay: t.money(balance),
		Tier:           tier,
		TierStatus:     tier.Status(),
		Transactions:   t.account.History(),
		Messages:       t.notifier.Messages(),
	}
	snap.Screen = Render(snap, "")
	return snap
}

func (t *Terminal) require(views ...View) error {
	for _, v := range views {
		if t.view == v {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrActionUnavailable, t.view)
}

func (t *Terminal) toMain() {
	t.view = ViewMain
	t.notifier.Clear()
}

func (t *Terminal) persist(ctx context.Context) error {
	if err := t.store.Save(ctx, t.account.Balance(), t.account.History()); err != nil {
		t.logError(ctx, "persist session", err)
		return err
	}
	return nil
}

// rollback undoes an operation whose result could not be stored, so that a
// retried request applies it once.
func (t *Terminal) rollback(ctx context.Context, balance float64, history []account.Transaction) {
	t.account.Restore(balance, history)
	if err := t.store.Save(ctx, balance, history); err != nil {
		t.logError(ctx, "restore session storage", err)
	}
}

func (t *Terminal) money(amount float64) string {
	return t.currency + account.FormatAmount(amount)
}

func (t *Terminal) logError(ctx context.Context, msg string, err error) {
	if t.logger == nil {
		return
	}
	t.logger.ErrorContext(ctx, msg, slog.Any("error", err))
}
