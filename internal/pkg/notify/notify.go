// Package notify delivers toast-style user notifications.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier receives user-facing messages
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Notification is one queued toast
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Inbox queues notifications until the UI drains them.
// When full, the oldest notification is discarded.
type Inbox struct {
	mu    sync.Mutex
	limit int
	items []Notification
}

// NewInbox creates an inbox holding at most limit notifications
func NewInbox(limit int) *Inbox {
	if limit < 1 {
		limit = 1
	}
	return &Inbox{limit: limit}
}

func (i *Inbox) Success(message string) { i.push(LevelSuccess, message) }
func (i *Inbox) Error(message string)   { i.push(LevelError, message) }

func (i *Inbox) push(level Level, message string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if len(i.items) == i.limit {
		i.items = i.items[1:]
	}
	i.items = append(i.items, Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	})
}

// Drain returns every queued notification in arrival order and empties the inbox
func (i *Inbox) Drain() []Notification {
	i.mu.Lock()
	defer i.mu.Unlock()

	out := i.items
	i.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// Len returns the number of queued notifications
func (i *Inbox) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.items)
}

// LogNotifier writes notifications to the log
type LogNotifier struct {
	log logrus.FieldLogger
}

func NewLogNotifier(log logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Success(message string) {
	n.log.WithField("level_hint", LevelSuccess).Info(message)
}

func (n *LogNotifier) Error(message string) {
	n.log.WithField("level_hint", LevelError).Warn(message)
}

// Multi fans a notification out to several notifiers
type Multi []Notifier

func (m Multi) Success(message string) {
	for _, n := range m {
		n.Success(message)
	}
}

func (m Multi) Error(message string) {
	for _, n := range m {
		n.Error(message)
	}
}

// Discard drops every notification
type Discard struct{}

func (Discard) Success(string) {}
func (Discard) Error(string)   {}
