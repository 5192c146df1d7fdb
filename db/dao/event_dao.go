package dao

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/webhookx-io/eventsvc/constants"
	"github.com/webhookx-io/eventsvc/db/entities"
	"github.com/webhookx-io/eventsvc/db/query"
	"github.com/webhookx-io/eventsvc/pkg/types"
	"github.com/webhookx-io/eventsvc/utils"
)

type eventDao struct {
	*DAO[entities.Event]
}

func NewEventDao(db *sqlx.DB, fns ...OptionFunc) EventDAO {
	opts := Options{
		Table:          "events",
		EntityName:     "event",
		CachePropagate: true,
		CacheName:      constants.EventCacheKey.Name,
	}
	return &eventDao{
		DAO: NewDAO[entities.Event](db, opts, fns...),
	}
}

func (dao *eventDao) NewID() string {
	return utils.KSUID()
}

func (dao *eventDao) ValidID(id string) bool {
	return utils.IsValidKSUID(id)
}

// Exists matches records with the same name whose schedule equals the
// queried instant as a stored instant, as an ISO-8601 string, or as the raw
// submitted text.
func (dao *eventDao) Exists(ctx context.Context, q *query.DuplicateQuery) (bool, error) {
	ctx, span := dao.trace(ctx, fmt.Sprintf("dao.%s.exists", dao.opts.Table))
	defer span.End()

	schedule := sq.Or{
		sq.Eq{"schedule_at": types.NewTime(q.At)},
		sq.Eq{"schedule": q.ISO},
	}
	if q.RawText != "" && q.RawText != q.ISO {
		schedule = append(schedule, sq.Eq{"schedule": q.RawText})
	}
	builder := dao.builder.Select("id").
		From(dao.opts.Table).
		Where(sq.Eq{"name": q.Name}).
		Where(schedule).
		Limit(1)
	if q.ExcludeID != "" {
		builder = builder.Where(sq.NotEq{"id": q.ExcludeID})
	}

	statement, args := builder.MustSql()
	dao.debugSQL(statement, args)
	ids := make([]string, 0, 1)
	if err := dao.DB(ctx).SelectContext(ctx, &ids, statement, args...); err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}
