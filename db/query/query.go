package query

import "strings"

// Queryer is what the stores need to run a list query.
type Queryer interface {
	Offset() int64
	Limit() int64
	WhereMap() map[string]interface{}
	Orders() []*Order
}

type Sort = string

const (
	ASC  Sort = "ASC"
	DESC Sort = "DESC"
)

// Order is one ORDER BY term.
type Order struct {
	Column    string
	Sort      Sort
	NullsLast bool
}

func (o Order) String() string {
	var b strings.Builder
	b.WriteString(o.Column)
	b.WriteByte(' ')
	b.WriteString(o.Sort)
	if o.NullsLast {
		b.WriteString(" NULLS LAST")
	}
	return b.String()
}

// Query carries paging and ordering. A zero limit means unbounded.
type Query struct {
	offset int64
	limit  int64
	orders []*Order
}

// Page selects the 1-based page of size records. Pages below 1 select the
// first page.
func (q *Query) Page(page, size uint64) {
	page = max(page, 1)
	q.offset = int64((page - 1) * size)
	q.limit = int64(size)
}

func (q *Query) Offset() int64 { return q.offset }

func (q *Query) Limit() int64 { return q.limit }

func (q *Query) WhereMap() map[string]interface{} { return nil }

func (q *Query) Orders() []*Order { return q.orders }

func (q *Query) Order(column string, sort Sort) {
	q.orders = append(q.orders, &Order{Column: column, Sort: sort})
}

func (q *Query) OrderNullsLast(column string, sort Sort) {
	q.orders = append(q.orders, &Order{Column: column, Sort: sort, NullsLast: true})
}
