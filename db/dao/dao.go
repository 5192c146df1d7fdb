package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/webhookx-io/eventsvc/db/query"
	"github.com/webhookx-io/eventsvc/pkg/tracing"
	"github.com/webhookx-io/eventsvc/pkg/types"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

var (
	ErrNoRows              = sql.ErrNoRows
	ErrConstraintViolation = errors.New("constraint violation")
)

// Queryable is implemented by sqlx.DB and its unsafe variant.
type Queryable interface {
	sqlx.ExtContext
	GetContext(context.Context, interface{}, string, ...interface{}) error
	SelectContext(context.Context, interface{}, string, ...interface{}) error
}

type PropagateHandler func(ctx context.Context, opts *Options, id string, entity interface{})

type Options struct {
	Table          string
	EntityName     string
	CachePropagate bool
	CacheName      string
	Instrumented   bool
	Propagate      PropagateHandler
}

type OptionFunc func(*Options)

func WithInstrumented() OptionFunc {
	return func(o *Options) {
		o.Instrumented = true
	}
}

// WithPropagateHandler sets the handler notified after an entity is written.
func WithPropagateHandler(fn PropagateHandler) OptionFunc {
	return func(o *Options) {
		o.Propagate = fn
	}
}

type DAO[T any] struct {
	log     *zap.SugaredLogger
	db      *sqlx.DB
	builder sq.StatementBuilderType
	opts    Options
}

func NewDAO[T any](db *sqlx.DB, opts Options, fns ...OptionFunc) *DAO[T] {
	for _, fn := range fns {
		fn(&opts)
	}
	return &DAO[T]{
		log:     zap.S().Named("db"),
		db:      db,
		builder: StatementBuilder(db.DriverName()),
		opts:    opts,
	}
}

// StatementBuilder returns a squirrel builder using the placeholder format
// of the driver.
func StatementBuilder(driverName string) sq.StatementBuilderType {
	switch driverName {
	case "sqlite3":
		return sq.StatementBuilder.PlaceholderFormat(sq.Question)
	default:
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
}

func (dao *DAO[T]) debugSQL(sql string, args []interface{}) {
	dao.log.Debugf("[dao] execute: %s", sql)
}

func (dao *DAO[T]) trace(ctx context.Context, name string) (context.Context, trace.Span) {
	if !dao.opts.Instrumented {
		return ctx, noop.Span{}
	}
	return tracing.Start(ctx, name)
}

func (dao *DAO[T]) propagate(ctx context.Context, id string, entity interface{}) {
	if dao.opts.CachePropagate && dao.opts.Propagate != nil {
		dao.opts.Propagate(ctx, &dao.opts, id, entity)
	}
}

func (dao *DAO[T]) DB(ctx context.Context) Queryable {
	return dao.db
}

// UnsafeDB tolerates columns the entity does not map.
func (dao *DAO[T]) UnsafeDB(ctx context.Context) Queryable {
	return dao.db.Unsafe()
}

func (dao *DAO[T]) Get(ctx context.Context, id string) (entity *T, err error) {
	ctx, span := dao.trace(ctx, fmt.Sprintf("dao.%s.get", dao.opts.Table))
	defer span.End()

	statement, args := dao.builder.Select("*").From(dao.opts.Table).Where(sq.Eq{"id": id}).MustSql()
	dao.debugSQL(statement, args)
	entity = new(T)
	err = dao.UnsafeDB(ctx).GetContext(ctx, entity, statement, args...)
	if errors.Is(err, ErrNoRows) {
		return nil, nil
	}
	return
}

func (dao *DAO[T]) Delete(ctx context.Context, id string) (bool, error) {
	ctx, span := dao.trace(ctx, fmt.Sprintf("dao.%s.delete", dao.opts.Table))
	defer span.End()

	statement, args := dao.builder.Delete(dao.opts.Table).Where(sq.Eq{"id": id}).MustSql()
	dao.debugSQL(statement, args)
	result, err := dao.DB(ctx).ExecContext(ctx, statement, args...)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows > 0 {
		dao.propagate(ctx, id, nil)
	}
	return rows > 0, nil
}

func (dao *DAO[T]) Count(ctx context.Context, where map[string]interface{}) (total int64, err error) {
	ctx, span := dao.trace(ctx, fmt.Sprintf("dao.%s.count", dao.opts.Table))
	defer span.End()

	builder := dao.builder.Select("COUNT(*)").From(dao.opts.Table)
	if len(where) > 0 {
		builder = builder.Where(sq.Eq(where))
	}
	statement, args := builder.MustSql()
	dao.debugSQL(statement, args)
	err = dao.DB(ctx).GetContext(ctx, &total, statement, args...)
	return
}

func (dao *DAO[T]) List(ctx context.Context, q query.Queryer) (list []*T, err error) {
	ctx, span := dao.trace(ctx, fmt.Sprintf("dao.%s.list", dao.opts.Table))
	defer span.End()

	builder := dao.builder.Select("*").From(dao.opts.Table)
	where := q.WhereMap()
	if len(where) > 0 {
		builder = builder.Where(sq.Eq(where))
	}
	if q.Limit() != 0 {
		builder = builder.Offset(uint64(q.Offset()))
		builder = builder.Limit(uint64(q.Limit()))
	}
	for _, order := range q.Orders() {
		builder = builder.OrderBy(order.String())
	}
	statement, args := builder.MustSql()
	dao.debugSQL(statement, args)
	list = make([]*T, 0)
	err = dao.UnsafeDB(ctx).SelectContext(ctx, &list, statement, args...)
	return
}

func (dao *DAO[T]) Insert(ctx context.Context, entity *T) error {
	ctx, span := dao.trace(ctx, fmt.Sprintf("dao.%s.insert", dao.opts.Table))
	defer span.End()

	now := types.NewTime(time.Now().Truncate(time.Millisecond))
	columns := make([]string, 0)
	values := make([]interface{}, 0)
	var id string
	EachField(entity, func(f reflect.StructField, v reflect.Value, column string) {
		switch column {
		case "id":
			id = v.String()
			columns = append(columns, column)
			values = append(values, v.Interface())
		case "created_at", "updated_at":
			columns = append(columns, column)
			values = append(values, now)
		default:
			columns = append(columns, column)
			values = append(values, v.Interface())
		}
	})
	statement, args := dao.builder.Insert(dao.opts.Table).Columns(columns...).Values(values...).
		Suffix("RETURNING *").
		MustSql()
	dao.debugSQL(statement, args)
	err := dao.UnsafeDB(ctx).QueryRowxContext(ctx, statement, args...).StructScan(entity)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConstraintViolation
		}
		return err
	}
	dao.propagate(ctx, id, entity)
	return nil
}

// Update writes every column of entity except created_at. It returns
// ErrNoRows when no row has the entity's id.
func (dao *DAO[T]) Update(ctx context.Context, entity *T) error {
	ctx, span := dao.trace(ctx, fmt.Sprintf("dao.%s.update", dao.opts.Table))
	defer span.End()

	var id string
	builder := dao.builder.Update(dao.opts.Table)
	EachField(entity, func(f reflect.StructField, v reflect.Value, column string) {
		switch column {
		case "id":
			id = v.String()
		case "created_at": // ignore
		case "updated_at":
			builder = builder.Set(column, types.NewTime(time.Now().Truncate(time.Millisecond)))
		default:
			builder = builder.Set(column, v.Interface())
		}
	})
	statement, args := builder.Where(sq.Eq{"id": id}).Suffix("RETURNING *").MustSql()
	dao.debugSQL(statement, args)
	err := dao.UnsafeDB(ctx).QueryRowxContext(ctx, statement, args...).StructScan(entity)
	if err != nil {
		return err
	}
	dao.propagate(ctx, id, entity)
	return nil
}
