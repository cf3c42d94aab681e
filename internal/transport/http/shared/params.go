// Package shared holds request parsing helpers used by every entity handler.
package shared

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"spoolman/internal/query"
	dErrors "spoolman/pkg/domain-errors"
	"spoolman/pkg/platform/httputil"
)

// TotalCountHeader carries the number of matches before pagination.
const TotalCountHeader = "X-Total-Count"

// ParseID reads a positive integer route parameter.
func ParseID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.Newf(dErrors.CodeBadRequest, "invalid %s %q", name, raw)
	}
	return id, nil
}

// ParseOptions reads the sort, limit and offset query parameters.
func ParseOptions(r *http.Request) (query.Options, error) {
	values := r.URL.Query()
	var opts query.Options

	keys, err := query.ParseSort(values.Get("sort"))
	if err != nil {
		return opts, query.AsDomainError(err)
	}
	opts.Sort = keys

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return opts, dErrors.Newf(dErrors.CodeInvalidQuery, "limit %q is not an integer", raw)
		}
		opts.Page.Limit = &limit
	}
	if raw := values.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return opts, dErrors.Newf(dErrors.CodeInvalidQuery, "offset %q is not an integer", raw)
		}
		opts.Page.Offset = offset
	}
	return opts, nil
}

// OptionalParam returns a pointer to the query parameter value, or nil when
// the parameter is absent. A present but empty value is kept.
func OptionalParam(r *http.Request, name string) *string {
	values := r.URL.Query()
	if !values.Has(name) {
		return nil
	}
	v := values.Get(name)
	return &v
}

// WriteList writes one page of items with the total count header.
func WriteList[T any](w http.ResponseWriter, res query.Result[T]) {
	w.Header().Set(TotalCountHeader, strconv.Itoa(res.TotalCount))
	items := res.Items
	if items == nil {
		items = []T{}
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}
