package entities

import (
	"github.com/webhookx-io/eventsvc/pkg/types"
)

// Event is a stored event record. Name, Schedule and ScheduleAt are copies
// of document fields kept as columns for duplicate lookups and ordering.
type Event struct {
	ID         string         `db:"id" json:"id"`
	Name       string         `db:"name" json:"name"`
	Schedule   string         `db:"schedule" json:"schedule"`
	ScheduleAt types.Time     `db:"schedule_at" json:"schedule_at"`
	Document   types.Document `db:"document" json:"document"`

	Timestamps
}

// Record renders the event the way clients see it: the document plus _id.
func (m *Event) Record() types.Document {
	record := m.Document.Clone()
	if record == nil {
		record = types.Document{}
	}
	record["_id"] = m.ID
	return record
}
