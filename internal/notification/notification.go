package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity classifies a status message.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// DefaultTTL is how long a status message stays visible.
const DefaultTTL = 5 * time.Second

// Message is a transient, user-facing status message.
type Message struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
}

// Scheduler runs fn once after d has elapsed.
type Scheduler func(d time.Duration, fn func())

// AfterFunc schedules with the runtime timer.
func AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

// Notifier holds the queue of visible status messages. Every pushed message
// schedules its own removal; Clear hides everything immediately and leaves the
// pending removals to fire as no-ops.
type Notifier struct {
	mu       sync.Mutex
	messages []Message
	ttl      time.Duration
	schedule Scheduler
	logger   *slog.Logger
}

// NewNotifier constructs a notifier. A nil scheduler uses AfterFunc and a
// non-positive ttl uses DefaultTTL.
func NewNotifier(ttl time.Duration, schedule Scheduler, logger *slog.Logger) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if schedule == nil {
		schedule = AfterFunc
	}
	return &Notifier{ttl: ttl, schedule: schedule, logger: logger}
}

// Push appends a message and schedules its expiry.
func (n *Notifier) Push(ctx context.Context, text string, severity Severity) Message {
	msg := Message{ID: uuid.NewString(), Text: text, Severity: severity}

	n.mu.Lock()
	n.messages = append(n.messages, msg)
	n.mu.Unlock()

	n.schedule(n.ttl, func() { n.Remove(msg.ID) })

	if n.logger != nil {
		n.logger.Log(ctx, levelFor(severity), "status message", "id", msg.ID, "severity", string(severity), "text", text)
	}
	return msg
}

// Remove drops the message with the given id. Unknown ids are ignored.
func (n *Notifier) Remove(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, msg := range n.messages {
		if msg.ID == id {
			n.messages = append(n.messages[:i:i], n.messages[i+1:]...)
			return
		}
	}
}

// Clear hides all messages.
func (n *Notifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = nil
}

// Messages returns the visible messages in insertion order.
func (n *Notifier) Messages() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Message, len(n.messages))
	copy(out, n.messages)
	return out
}

func levelFor(severity Severity) slog.Level {
	switch severity {
	case SeverityError:
		return slog.LevelWarn
	case SeverityWarning:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
