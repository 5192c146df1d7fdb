package resolver

import (
	"context"

	"github.com/pkg/errors"
	"github.com/webhookx-io/eventsvc/db/query"
	"github.com/webhookx-io/eventsvc/normalizer"
)

//go:generate mockgen -destination=../test/mocks/finder.go -package=mocks github.com/webhookx-io/eventsvc/resolver Finder

// Finder answers whether any stored record matches q.
type Finder interface {
	Exists(ctx context.Context, q *query.DuplicateQuery) (bool, error)
}

type Resolver struct {
	finder Finder
}

func New(finder Finder) *Resolver {
	return &Resolver{finder: finder}
}

// NewCriteria builds the duplicate query for a draft. ok is false when the
// draft cannot collide with anything: name or schedule is absent, or the
// schedule does not denote a calendar instant.
func NewCriteria(draft *normalizer.Draft, excludeID string) (q *query.DuplicateQuery, ok bool) {
	if draft == nil || draft.Name == nil || draft.Schedule == nil {
		return nil, false
	}
	name := draft.NameText()
	if name == "" {
		return nil, false
	}
	at, ok := normalizer.ParseSchedule(draft.Schedule)
	if !ok {
		return nil, false
	}
	return &query.DuplicateQuery{
		Name:      name,
		At:        at,
		ISO:       normalizer.ISOString(at),
		Raw:       draft.Schedule,
		RawText:   normalizer.ScheduleText(draft.Schedule),
		ExcludeID: excludeID,
	}, true
}

// FindDuplicate reports whether a record other than excludeID has the same
// name and a schedule denoting the same instant.
func (r *Resolver) FindDuplicate(ctx context.Context, draft *normalizer.Draft, excludeID string) (bool, error) {
	q, ok := NewCriteria(draft, excludeID)
	if !ok {
		return false, nil
	}
	exists, err := r.finder.Exists(ctx, q)
	if err != nil {
		return false, errors.Wrap(err, "failed to look up duplicate events")
	}
	return exists, nil
}
