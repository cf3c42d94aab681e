package query

import (
	"errors"

	dErrors "spoolman/pkg/domain-errors"
)

// Options are the sort and page parameters every find operation accepts.
type Options struct {
	Sort []SortKey
	Page Page
}

// With applies opts to q.
func (q *Query[T]) With(opts Options) *Query[T] {
	return q.OrderBy(opts.Sort...).Paginate(opts.Page)
}

// AsDomainError turns a resolution or parse failure into an invalid query
// domain error and passes any other error through.
func AsDomainError(err error) error {
	if err == nil || !errors.Is(err, ErrInvalidQuery) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInvalidQuery, err.Error())
}
