package service

import (
	"context"
	"errors"

	"github.com/webhookx-io/eventsvc/config/modules"
	"github.com/webhookx-io/eventsvc/constants"
	"github.com/webhookx-io/eventsvc/db"
	"github.com/webhookx-io/eventsvc/db/dao"
	"github.com/webhookx-io/eventsvc/db/entities"
	"github.com/webhookx-io/eventsvc/db/query"
	"github.com/webhookx-io/eventsvc/mcache"
	"github.com/webhookx-io/eventsvc/normalizer"
	"github.com/webhookx-io/eventsvc/pkg/errs"
	"github.com/webhookx-io/eventsvc/pkg/metrics"
	"github.com/webhookx-io/eventsvc/pkg/tracing"
	"github.com/webhookx-io/eventsvc/pkg/types"
	"github.com/webhookx-io/eventsvc/resolver"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const (
	DefaultPage  = 1
	DefaultLimit = 5

	ListTypeLatest = "latest"
)

// Service runs the write path of event records: normalize, duplicate check,
// then store write.
type Service struct {
	log      *zap.SugaredLogger
	db       *db.DB
	resolver *resolver.Resolver
	locker   Locker
	metrics  *metrics.Metrics
}

type Options struct {
	DB *db.DB
	// Locker serializes the duplicate check and the write that follows it.
	// Without one concurrent writers can both pass the check.
	Locker Locker
	// Metrics defaults to instruments that record nothing.
	Metrics *metrics.Metrics
}

func NewService(opts Options) *Service {
	m := opts.Metrics
	if m == nil {
		m = metrics.NewDiscard()
	}
	return &Service{
		log:      zap.S().Named("service"),
		db:       opts.DB,
		resolver: resolver.New(opts.DB.Events),
		locker:   opts.Locker,
		metrics:  m,
	}
}

func (s *Service) trace(ctx context.Context, name string) (context.Context, trace.Span) {
	if !tracing.Enabled(modules.InstrumentationService) {
		return ctx, noop.Span{}
	}
	return tracing.Start(ctx, name)
}

// guard runs fn while holding the lock of the draft's name and schedule
// instant. Drafts that cannot collide run unlocked.
func (s *Service) guard(ctx context.Context, draft *normalizer.Draft, fn func() error) error {
	if s.locker == nil {
		return fn()
	}
	q, ok := resolver.NewCriteria(draft, "")
	if !ok {
		return fn()
	}
	unlock, err := s.locker.Lock(ctx, constants.EventLockPrefix+q.Name+":"+q.ISO)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

func (s *Service) checkDuplicate(ctx context.Context, draft *normalizer.Draft, excludeID string) error {
	found, err := s.resolver.FindDuplicate(ctx, draft, excludeID)
	if err != nil {
		return err
	}
	if found {
		s.metrics.EventConflictCounter.Add(1)
		return errs.NewConflictError(normalizer.FieldName, normalizer.FieldSchedule)
	}
	return nil
}

func fill(event *entities.Event, draft *normalizer.Draft) {
	event.Document = draft.Document()
	event.Name = draft.NameText()
	event.Schedule = normalizer.ScheduleText(draft.Schedule)
	event.ScheduleAt = types.Time{}
	if at, ok := normalizer.ParseSchedule(draft.Schedule); ok {
		event.ScheduleAt = types.NewTime(at)
	}
}

// Create stores a new record built from raw. upload, when not nil, is an
// attachment already written to upload storage.
func (s *Service) Create(ctx context.Context, raw map[string]interface{}, upload *normalizer.FileRef) (*entities.Event, error) {
	ctx, span := s.trace(ctx, "service.events.create")
	defer span.End()

	draft, missing := normalizer.Normalize(raw, upload)
	if !missing.Empty() {
		return nil, errs.NewMissingFieldsError(missing)
	}

	event := &entities.Event{ID: s.db.Events.NewID()}
	fill(event, draft)

	err := s.guard(ctx, draft, func() error {
		if err := s.checkDuplicate(ctx, draft, ""); err != nil {
			return err
		}
		return s.db.Events.Insert(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.EventWriteCounter.With("op", "create").Add(1)
	return event, nil
}

// Get returns the record with id, served from the cache when possible.
func (s *Service) Get(ctx context.Context, id string) (*entities.Event, error) {
	ctx, span := s.trace(ctx, "service.events.get")
	defer span.End()

	if !s.db.Events.ValidID(id) {
		return nil, errs.ErrInvalidID
	}
	event, err := mcache.Load(ctx, constants.EventCacheKey.Build(id), nil, s.db.Events.Get, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, errs.ErrNotFound
	}
	return event, nil
}

type ListOptions struct {
	Type  string
	Page  int64
	Limit int64
}

// Normalize applies the pagination defaults: limit falls back to 5 when not
// positive and page is floored at 1.
func (o *ListOptions) Normalize() {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Page < 1 {
		o.Page = DefaultPage
	}
}

// List returns a page of records. The latest type orders by schedule
// descending, records without a parsable schedule last. Otherwise records
// come in store order.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]*entities.Event, error) {
	ctx, span := s.trace(ctx, "service.events.list")
	defer span.End()

	opts.Normalize()
	var q query.EventQuery
	q.Page(uint64(opts.Page), uint64(opts.Limit))
	if opts.Type == ListTypeLatest {
		q.OrderNullsLast("schedule_at", query.DESC)
		q.Order("id", query.DESC)
	} else {
		q.Order("id", query.ASC)
	}
	return s.db.Events.List(ctx, &q)
}

// Update overlays the fields present in raw onto the stored record. The
// duplicate check runs only when raw carries name or schedule, against the
// merged name and schedule.
func (s *Service) Update(ctx context.Context, id string, raw map[string]interface{}, upload *normalizer.FileRef) (*entities.Event, error) {
	ctx, span := s.trace(ctx, "service.events.update")
	defer span.End()

	if !s.db.Events.ValidID(id) {
		return nil, errs.ErrInvalidID
	}
	event, err := s.db.Events.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, errs.ErrNotFound
	}

	patch, _ := normalizer.Normalize(raw, upload)
	current := normalizer.Stored(event.Document)
	merged := current.Merge(patch)
	fill(event, merged)

	write := func() error {
		return s.db.Events.Update(ctx, event)
	}
	if patch.HasIdentity() {
		write = func() error {
			if err := s.checkDuplicate(ctx, merged, id); err != nil {
				return err
			}
			return s.db.Events.Update(ctx, event)
		}
	}

	err = s.guard(ctx, merged, write)
	if errors.Is(err, dao.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.metrics.EventWriteCounter.With("op", "update").Add(1)
	s.invalidate(ctx, id)
	return event, nil
}

// invalidate drops the cached copy of id on this node. Other nodes drop
// theirs on the crud event.
func (s *Service) invalidate(ctx context.Context, id string) {
	if err := mcache.Invalidate(ctx, constants.EventCacheKey.Build(id)); err != nil {
		s.log.Warnf("failed to invalidate cache: key=%s %v", id, err)
	}
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := s.trace(ctx, "service.events.delete")
	defer span.End()

	if !s.db.Events.ValidID(id) {
		return errs.ErrInvalidID
	}
	deleted, err := s.db.Events.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return errs.ErrNotFound
	}
	s.metrics.EventWriteCounter.With("op", "delete").Add(1)
	s.invalidate(ctx, id)
	return nil
}
