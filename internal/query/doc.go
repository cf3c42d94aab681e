// Package query is the dynamic query layer shared by every "find" endpoint.
//
// Each entity declares a static Table mapping field paths ("name",
// "filament.vendor.name") to typed accessors and SQL column expressions.
// Tables are assembled once at package init and validated with MustValidate;
// a Query resolves its filter and sort paths against the table when it is
// built, so an unknown path is reported before anything executes.
//
// A built Query runs in one of two ways:
//
//	res, err := q.Apply(rows)           // in-memory stores
//	stmt, err := q.SQL(columns, from)   // PostgreSQL stores
//
// Both honour the same semantics: id filters accept a set of values where -1
// matches an absent reference, string filters are comma-separated terms that
// match case-insensitive substrings (or exact values when quoted), sort keys
// apply in the given order, and TotalCount is computed before pagination.
package query
