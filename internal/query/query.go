package query

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Query is a filter, sort and page request resolved against a Table.
// Builder methods record resolution failures; Err, Apply and SQL report them
// before doing any work.
type Query[T any] struct {
	table *Table[T]
	conds []condition[T]
	sorts []resolvedSort[T]
	page  Page
	errs  []error
}

// Result is one page of rows plus the number of rows matching the filters.
type Result[T any] struct {
	Items      []T
	TotalCount int
}

// New starts a query over table.
func New[T any](table *Table[T]) *Query[T] {
	return &Query[T]{table: table}
}

// WhereIDs filters an id or foreign key field. A nil filter is ignored.
func (q *Query[T]) WhereIDs(path string, f *IDFilter) *Query[T] {
	if f == nil {
		return q
	}
	field, err := q.table.Resolve(path)
	if err != nil {
		q.errs = append(q.errs, err)
		return q
	}
	if !field.Ref {
		q.errs = append(q.errs, fmt.Errorf("%w: %q is not an id field", ErrBadFilter, path))
		return q
	}
	q.conds = append(q.conds, condition[T]{field: field, ids: f})
	return q
}

// WhereTerms filters a string field. A nil filter is ignored.
func (q *Query[T]) WhereTerms(path string, f *TermFilter) *Query[T] {
	if f == nil {
		return q
	}
	field, err := q.table.Resolve(path)
	if err != nil {
		q.errs = append(q.errs, err)
		return q
	}
	if field.Kind != KindString {
		q.errs = append(q.errs, fmt.Errorf("%w: %q is not a string field", ErrBadFilter, path))
		return q
	}
	q.conds = append(q.conds, condition[T]{field: field, terms: f})
	return q
}

// OrderBy appends sort keys in precedence order.
func (q *Query[T]) OrderBy(keys ...SortKey) *Query[T] {
	for _, key := range keys {
		field, err := q.table.Resolve(key.Path)
		if err != nil {
			q.errs = append(q.errs, err)
			continue
		}
		q.sorts = append(q.sorts, resolvedSort[T]{field: field, desc: key.Desc})
	}
	return q
}

// Paginate sets the page window.
func (q *Query[T]) Paginate(p Page) *Query[T] {
	if err := p.validate(); err != nil {
		q.errs = append(q.errs, err)
		return q
	}
	q.page = p
	return q
}

// Err returns the resolution failures recorded so far.
func (q *Query[T]) Err() error {
	return errors.Join(q.errs...)
}

func (q *Query[T]) matches(row *T) bool {
	for _, c := range q.conds {
		if !c.match(row) {
			return false
		}
	}
	return true
}

func (q *Query[T]) compare(a, b *T) int {
	for _, s := range q.sorts {
		c := compareValues(s.field.Value(a), s.field.Value(b))
		if s.desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// Apply runs the query over rows. Rows that compare equal keep their input
// order, so callers that pass rows in a fixed order get a repeatable result.
func (q *Query[T]) Apply(rows []T) (Result[T], error) {
	if err := q.Err(); err != nil {
		return Result[T]{}, err
	}
	matched := make([]*T, 0, len(rows))
	for i := range rows {
		if q.matches(&rows[i]) {
			matched = append(matched, &rows[i])
		}
	}
	if len(q.sorts) > 0 {
		slices.SortStableFunc(matched, q.compare)
	}

	total := len(matched)
	if q.page.Limit != nil {
		start := min(q.page.Offset, total)
		end := start + min(*q.page.Limit, total-start)
		matched = matched[start:end]
	}

	items := make([]T, len(matched))
	for i, row := range matched {
		items[i] = *row
	}
	return Result[T]{Items: items, TotalCount: total}, nil
}

// Statement is a rendered SQL query. Select and Count share Args.
type Statement struct {
	Select string
	Count  string
	Args   []any
	// Paged is set when a limit applies, in which case the total count must
	// come from Count rather than from the number of selected rows.
	Paged bool
}

// SQL renders the query for PostgreSQL. columns is the select list and from
// the FROM clause including joins for every embedded relation. Ordering
// always ends with the table key so pages are stable.
func (q *Query[T]) SQL(columns, from string) (Statement, error) {
	if err := q.Err(); err != nil {
		return Statement{}, err
	}
	a := &args{}
	var where string
	if len(q.conds) > 0 {
		parts := make([]string, len(q.conds))
		for i, c := range q.conds {
			parts[i] = c.sql(a)
		}
		where = " WHERE " + strings.Join(parts, " AND ")
	}

	order := make([]string, 0, len(q.sorts)+1)
	for _, s := range q.sorts {
		dir := "ASC"
		if s.desc {
			dir = "DESC"
		}
		col := s.field.Column
		if s.field.Kind == KindString {
			// Byte order, matching Apply.
			col += ` COLLATE "C"`
		}
		order = append(order, col+" "+dir)
	}
	order = append(order, q.table.keyField().Column+" ASC")

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(columns)
	sb.WriteString(" FROM ")
	sb.WriteString(from)
	sb.WriteString(where)
	sb.WriteString(" ORDER BY ")
	sb.WriteString(strings.Join(order, ", "))
	if q.page.Limit != nil {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(*q.page.Limit))
		sb.WriteString(" OFFSET ")
		sb.WriteString(strconv.Itoa(q.page.Offset))
	}

	return Statement{
		Select: sb.String(),
		Count:  "SELECT COUNT(*) FROM " + from + where,
		Args:   a.vals,
		Paged:  q.page.Limit != nil,
	}, nil
}

type args struct {
	vals []any
}

func (a *args) add(v any) string {
	a.vals = append(a.vals, v)
	return "$" + strconv.Itoa(len(a.vals))
}
