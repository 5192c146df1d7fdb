package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/webhookx-io/eventsvc/constants"
	"github.com/webhookx-io/eventsvc/db/dao"
	"github.com/webhookx-io/eventsvc/db/entities"
	"github.com/webhookx-io/eventsvc/db/query"
	"github.com/webhookx-io/eventsvc/normalizer"
	"github.com/webhookx-io/eventsvc/pkg/tracing"
	"github.com/webhookx-io/eventsvc/pkg/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// fieldScheduleAt holds the parsed schedule instant as a BSON date, or null.
// It is kept out of the record view.
const fieldScheduleAt = "schedule_at"

// columns map sql column names used in queries to document keys
var columns = map[string]string{
	"id": "_id",
}

// EventStore keeps events as top-level documents keyed by ObjectID.
type EventStore struct {
	log    *zap.SugaredLogger
	store  *Store
	events *mongo.Collection
	opts   dao.Options
}

var _ dao.EventDAO = (*EventStore)(nil)

func NewEventStore(store *Store, fns ...dao.OptionFunc) *EventStore {
	opts := dao.Options{
		Table:          collectionEvents,
		EntityName:     "event",
		CachePropagate: true,
		CacheName:      constants.EventCacheKey.Name,
	}
	for _, fn := range fns {
		fn(&opts)
	}
	return &EventStore{
		log:    zap.S().Named("db"),
		store:  store,
		events: store.events,
		opts:   opts,
	}
}

func (s *EventStore) trace(ctx context.Context, name string) (context.Context, trace.Span) {
	if !s.opts.Instrumented {
		return ctx, noop.Span{}
	}
	return tracing.Start(ctx, name)
}

func (s *EventStore) propagate(ctx context.Context, id string, entity interface{}) {
	if s.opts.CachePropagate && s.opts.Propagate != nil {
		s.opts.Propagate(ctx, &s.opts, id, entity)
	}
}

func (s *EventStore) NewID() string {
	return primitive.NewObjectID().Hex()
}

func (s *EventStore) ValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

func toEntity(raw bson.M) *entities.Event {
	doc := types.Document(fromBSON(raw).(map[string]interface{}))
	event := &entities.Event{}
	if id, ok := doc["_id"].(string); ok {
		event.ID = id
	} else if doc["_id"] != nil {
		event.ID = fmt.Sprint(doc["_id"])
	}
	delete(doc, "_id")
	at, stored := doc[fieldScheduleAt].(time.Time)
	delete(doc, fieldScheduleAt)
	event.Document = doc
	event.Name = normalizer.ScheduleText(doc[normalizer.FieldName])
	event.Schedule = normalizer.ScheduleText(doc[normalizer.FieldSchedule])
	if !stored {
		// documents written before schedule_at existed
		at, stored = normalizer.ParseSchedule(doc[normalizer.FieldSchedule])
	}
	if stored {
		event.ScheduleAt = types.NewTime(at)
	}
	return event
}

// fields renders the stored fields of event, without _id.
func fields(event *entities.Event) bson.M {
	doc := make(bson.M, len(event.Document)+1)
	for k, v := range event.Document {
		doc[k] = v
	}
	if event.ScheduleAt.IsZero() {
		doc[fieldScheduleAt] = nil
	} else {
		doc[fieldScheduleAt] = primitive.NewDateTimeFromTime(event.ScheduleAt.Time)
	}
	return doc
}

func toBSON(event *entities.Event) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(event.ID)
	if err != nil {
		return nil, err
	}
	doc := fields(event)
	doc["_id"] = oid
	return doc, nil
}

func (s *EventStore) Get(ctx context.Context, id string) (*entities.Event, error) {
	ctx, span := s.trace(ctx, "dao.events.get")
	defer span.End()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var raw bson.M
	err = s.events.FindOne(ctx, bson.M{"_id": oid}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toEntity(raw), nil
}

func (s *EventStore) Insert(ctx context.Context, event *entities.Event) error {
	ctx, span := s.trace(ctx, "dao.events.insert")
	defer span.End()

	doc, err := toBSON(event)
	if err != nil {
		return err
	}
	if _, err := s.events.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return dao.ErrConstraintViolation
		}
		return err
	}
	s.propagate(ctx, event.ID, event)
	return nil
}

func (s *EventStore) Update(ctx context.Context, event *entities.Event) error {
	ctx, span := s.trace(ctx, "dao.events.update")
	defer span.End()

	oid, err := primitive.ObjectIDFromHex(event.ID)
	if err != nil {
		return dao.ErrNoRows
	}
	// $set leaves keys the document no longer names (such as legacy alias
	// spellings) in place
	result, err := s.events.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields(event)})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return dao.ErrNoRows
	}
	s.propagate(ctx, event.ID, event)
	return nil
}

func (s *EventStore) Delete(ctx context.Context, id string) (bool, error) {
	ctx, span := s.trace(ctx, "dao.events.delete")
	defer span.End()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	result, err := s.events.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	if result.DeletedCount > 0 {
		s.propagate(ctx, id, nil)
	}
	return result.DeletedCount > 0, nil
}

func (s *EventStore) List(ctx context.Context, q query.Queryer) ([]*entities.Event, error) {
	ctx, span := s.trace(ctx, "dao.events.list")
	defer span.End()

	opts := options.Find()
	if q.Limit() != 0 {
		opts.SetSkip(q.Offset()).SetLimit(q.Limit())
	}
	if orders := q.Orders(); len(orders) > 0 {
		sort := bson.D{}
		for _, order := range orders {
			key := order.Column
			if mapped, ok := columns[key]; ok {
				key = mapped
			}
			direction := 1
			if order.Sort == query.DESC {
				direction = -1
			}
			sort = append(sort, bson.E{Key: key, Value: direction})
		}
		opts.SetSort(sort)
	}

	filter := bson.M{}
	for k, v := range q.WhereMap() {
		filter[k] = v
	}
	cursor, err := s.events.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	list := make([]*entities.Event, 0)
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		list = append(list, toEntity(raw))
	}
	return list, cursor.Err()
}

func (s *EventStore) Count(ctx context.Context, where map[string]interface{}) (int64, error) {
	filter := bson.M{}
	for k, v := range where {
		filter[k] = v
	}
	return s.events.CountDocuments(ctx, filter)
}

// Exists matches the name exactly and the schedule by its stored instant, as
// a native date, as an ISO-8601 string, or as the value originally submitted.
func (s *EventStore) Exists(ctx context.Context, q *query.DuplicateQuery) (bool, error) {
	ctx, span := s.trace(ctx, "dao.events.exists")
	defer span.End()

	schedule := bson.A{
		bson.M{fieldScheduleAt: q.At},
		bson.M{"schedule": q.At},
		bson.M{"schedule": q.ISO},
	}
	if q.RawText != "" && q.RawText != q.ISO {
		schedule = append(schedule, bson.M{"schedule": q.RawText})
	}
	if _, isString := q.Raw.(string); !isString && q.Raw != nil {
		schedule = append(schedule, bson.M{"schedule": q.Raw})
	}
	filter := bson.M{
		"name": q.Name,
		"$or":  schedule,
	}
	if q.ExcludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(q.ExcludeID); err == nil {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}

	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err := s.events.FindOne(ctx, filter, opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
