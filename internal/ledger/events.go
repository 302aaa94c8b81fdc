package ledger

import (
	"context"
	"time"

	"smartbudget/internal/core"
)

// EventType names a ledger change.
type EventType string

const (
	EventCreated  EventType = "created"
	EventUpdated  EventType = "updated"
	EventDeleted  EventType = "deleted"
	EventImported EventType = "imported"
	EventReset    EventType = "reset"
	EventBudgets  EventType = "budgets"
)

// Event describes one persisted change. Transaction events carry the kind
// and id; collection-wide events leave them empty.
type Event struct {
	Type EventType `json:"type"`
	Kind core.Kind `json:"kind,omitempty"`
	ID   string    `json:"id,omitempty"`
	At   time.Time `json:"at"`
}

// Notifier receives events after the change has been written through.
// Publish failures are logged and never undo the mutation.
type Notifier interface {
	Publish(ctx context.Context, e Event) error
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, Event) error { return nil }

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, e Event) error

func (f NotifierFunc) Publish(ctx context.Context, e Event) error { return f(ctx, e) }
