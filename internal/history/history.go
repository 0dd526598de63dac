// Package history stores finished chat and comparison exchanges so they can be
// listed and exported later.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/sokinpui/maano.go/model"
)

// Kind distinguishes single-model chats from comparisons.
type Kind string

const (
	KindChat    Kind = "chat"
	KindCompare Kind = "compare"
)

// ErrNotFound is returned by Get for an unknown conversation id.
var ErrNotFound = errors.New("conversation not found")

// Record is one saved exchange.
type Record struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId,omitempty"`
	Kind      Kind             `json:"kind"`
	Prompt    string           `json:"prompt"`
	ContextID string           `json:"contextId,omitempty"`
	Responses []model.Envelope `json:"responses"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Sink accepts records for persistence.
type Sink interface {
	Save(ctx context.Context, rec Record) error
}

// Store is a Sink that can also read records back, newest first.
type Store interface {
	Sink
	List(ctx context.Context, limit int) ([]Record, error)
	Get(ctx context.Context, id string) (Record, error)
}

// Noop discards everything it is given.
type Noop struct{}

func (Noop) Save(context.Context, Record) error { return nil }

func (Noop) List(context.Context, int) ([]Record, error) { return []Record{}, nil }

func (Noop) Get(context.Context, string) (Record, error) { return Record{}, ErrNotFound }
