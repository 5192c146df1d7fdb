package query

import "time"

type EventQuery struct {
	Query
}

func (q *EventQuery) WhereMap() map[string]interface{} {
	return map[string]interface{}{}
}

// DuplicateQuery matches records with the same name whose schedule denotes
// the same instant in any of the representations records were stored with.
type DuplicateQuery struct {
	Name string
	// At is the instant compared against the native date column.
	At time.Time
	// ISO is At rendered as an ISO-8601 string.
	ISO string
	// Raw is the schedule value exactly as submitted.
	Raw interface{}
	// RawText is Raw in text form, for stores that keep schedules as strings.
	RawText string
	// ExcludeID, when set, leaves that record out of the match.
	ExcludeID string
}
