package entities

import "github.com/webhookx-io/eventsvc/pkg/types"

// Timestamps are stamped by the SQL stores on write. MongoDB documents are
// stored as submitted and carry none.
type Timestamps struct {
	CreatedAt types.Time `db:"created_at" json:"created_at"`
	UpdatedAt types.Time `db:"updated_at" json:"updated_at"`
}
