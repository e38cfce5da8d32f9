package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/congo-pay/bank_terminal/internal/account"
	"github.com/congo-pay/bank_terminal/internal/logging"
)

// Storage keys mirrored for every session.
const (
	BalanceKey      = "bankBalance"
	TransactionsKey = "bankTransactions"
)

// Store mirrors one session's balance and history into Storage.
type Store struct {
	storage   Storage
	sessionID string
	logger    *slog.Logger
}

// NewStore binds a storage to a session id.
func NewStore(storage Storage, sessionID string, logger *slog.Logger) *Store {
	return &Store{storage: storage, sessionID: sessionID, logger: logging.ForSession(logger, sessionID)}
}

// Load reads both keys. Missing or unreadable values fall back to a zero
// balance and an empty history independently of each other.
func (s *Store) Load(ctx context.Context) (float64, []account.Transaction, error) {
	balance, err := s.loadBalance(ctx)
	if err != nil {
		return 0, nil, err
	}
	history, err := s.loadHistory(ctx)
	if err != nil {
		return 0, nil, err
	}
	return balance, history, nil
}

// Save writes the balance and history keys.
func (s *Store) Save(ctx context.Context, balance float64, history []account.Transaction) error {
	if err := s.storage.SetItem(ctx, s.sessionID, BalanceKey, strconv.FormatFloat(balance, 'f', -1, 64)); err != nil {
		return fmt.Errorf("save balance: %w", err)
	}
	if history == nil {
		history = []account.Transaction{}
	}
	payload, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}
	if err := s.storage.SetItem(ctx, s.sessionID, TransactionsKey, string(payload)); err != nil {
		return fmt.Errorf("save transactions: %w", err)
	}
	return nil
}

// Touch extends the lifetime of both keys.
func (s *Store) Touch(ctx context.Context) error {
	if err := s.storage.Touch(ctx, s.sessionID, BalanceKey, TransactionsKey); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// Clear removes both keys so the next load starts fresh.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.RemoveItem(ctx, s.sessionID, BalanceKey); err != nil {
		return fmt.Errorf("remove balance: %w", err)
	}
	if err := s.storage.RemoveItem(ctx, s.sessionID, TransactionsKey); err != nil {
		return fmt.Errorf("remove transactions: %w", err)
	}
	return nil
}

func (s *Store) loadBalance(ctx context.Context) (float64, error) {
	raw, ok, err := s.storage.GetItem(ctx, s.sessionID, BalanceKey)
	if err != nil {
		return 0, fmt.Errorf("load balance: %w", err)
	}
	if !ok {
		return 0, nil
	}
	balance, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(balance) || math.IsInf(balance, 0) || balance < 0 {
		s.warn(ctx, "discarding stored balance", BalanceKey, raw)
		return 0, nil
	}
	return balance, nil
}

func (s *Store) loadHistory(ctx context.Context) ([]account.Transaction, error) {
	raw, ok, err := s.storage.GetItem(ctx, s.sessionID, TransactionsKey)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var history []account.Transaction
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		s.warn(ctx, "discarding stored transactions", TransactionsKey, raw)
		return nil, nil
	}
	return history, nil
}

func (s *Store) warn(ctx context.Context, msg, key, raw string) {
	if s.logger == nil {
		return
	}
	s.logger.WarnContext(ctx, msg, slog.String("key", key), slog.String("value", raw))
}
