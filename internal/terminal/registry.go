package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/congo-pay/bank_terminal/internal/session"
)

type entry struct {
	term     *Terminal
	lastSeen time.Time
}

// Registry keeps the live terminals of a process, keyed by session id. Only the
// view and status messages live here; balance and history always come from
// storage when a terminal is (re)loaded.
type Registry struct {
	mu       sync.Mutex
	storage  session.Storage
	opts     Options
	idleTTL  time.Duration
	logger   *slog.Logger
	sessions map[string]*entry
	now      func() time.Time
}

// NewRegistry builds a registry. Terminals idle for longer than idleTTL are
// dropped by Sweep.
func NewRegistry(storage session.Storage, opts Options, idleTTL time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		storage:  storage,
		opts:     opts,
		idleTTL:  idleTTL,
		logger:   logger,
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

// Create starts a brand new session.
func (r *Registry) Create(ctx context.Context) (*Terminal, error) {
	return r.Open(ctx, uuid.NewString())
}

// Open returns the live terminal for id, loading it from storage on first use.
// Every open extends the lifetime of the session's stored keys.
func (r *Registry) Open(ctx context.Context, id string) (*Terminal, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSession, id)
	}

	r.mu.Lock()
	e, ok := r.sessions[id]
	if ok {
		e.lastSeen = r.now()
	}
	r.mu.Unlock()

	var term *Terminal
	if ok {
		term = e.term
	} else {
		loaded, err := r.load(ctx, id)
		if err != nil {
			return nil, err
		}
		term = r.insert(id, loaded, false)
	}
	r.touch(ctx, term)
	return term, nil
}

// Reload discards the in-memory terminal for id and loads it again from
// storage. The view resets to the main menu and status messages are dropped.
func (r *Registry) Reload(ctx context.Context, id string) (*Terminal, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSession, id)
	}

	loaded, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	term := r.insert(id, loaded, true)
	r.touch(ctx, term)
	return term, nil
}

// Len reports the number of live terminals.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops terminals idle for longer than the idle TTL and returns how many
// were removed. Storages that do not expire on their own forget the session too.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	cutoff := r.now().Add(-r.idleTTL)
	var idle []string
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			idle = append(idle, id)
		}
	}
	r.mu.Unlock()

	if evicter, ok := r.storage.(session.Evicter); ok {
		for _, id := range idle {
			evicter.Evict(id)
		}
	}
	return len(idle)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 && r.logger != nil {
				r.logger.Debug("evicted idle sessions", slog.Int("count", n))
			}
		}
	}
}

func (r *Registry) load(ctx context.Context, id string) (*Terminal, error) {
	term, err := Load(ctx, id, r.storage, r.opts, r.logger)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return term, nil
}

// insert registers a freshly loaded terminal. Unless replace is set, a terminal
// registered concurrently for the same id wins.
func (r *Registry) insert(id string, term *Terminal, replace bool) *Terminal {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok && !replace {
		e.lastSeen = r.now()
		return e.term
	}
	r.sessions[id] = &entry{term: term, lastSeen: r.now()}
	return term
}

func (r *Registry) touch(ctx context.Context, term *Terminal) {
	if err := term.Touch(ctx); err != nil && r.logger != nil {
		r.logger.WarnContext(ctx, "refresh session lifetime", slog.String("session_id", term.ID()), slog.Any("error", err))
	}
}
