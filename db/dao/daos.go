package dao

import (
	"context"

	"github.com/webhookx-io/eventsvc/db/entities"
	"github.com/webhookx-io/eventsvc/db/query"
)

type BaseDAO[T any] interface {
	Get(ctx context.Context, id string) (*T, error)
	Insert(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, q query.Queryer) ([]*T, error)
	Count(ctx context.Context, conditions map[string]interface{}) (int64, error)
}

// EventDAO is implemented by every record store driver.
type EventDAO interface {
	BaseDAO[entities.Event]
	// Exists reports whether a record matches the duplicate query.
	Exists(ctx context.Context, q *query.DuplicateQuery) (bool, error)
	// NewID allocates an identifier for a record about to be inserted.
	NewID() string
	// ValidID reports whether id is well-formed for this store.
	ValidID(id string) bool
}
