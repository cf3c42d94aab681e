package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	pstrings "spoolman/pkg/platform/strings"
)

// NullID is the id filter value that matches an absent reference.
const NullID = -1

// IDFilter accepts rows whose field is one of Values, or absent when
// MatchNull is set. The alternatives are OR'd.
type IDFilter struct {
	Values    []int64
	MatchNull bool
}

// ParseIDs parses a comma-separated list of integers such as "1,2,-1".
func ParseIDs(raw string) (*IDFilter, error) {
	parts := pstrings.SplitList(raw)
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: empty id list", ErrBadFilter)
	}
	f := &IDFilter{}
	for _, part := range parts {
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrBadFilter, part)
		}
		if v == NullID {
			f.MatchNull = true
			continue
		}
		f.Values = append(f.Values, v)
	}
	return f, nil
}

func (f *IDFilter) match(v Value) bool {
	if v.Null {
		return f.MatchNull
	}
	for _, want := range f.Values {
		if v.Int == want {
			return true
		}
	}
	return false
}

// Term is one alternative of a string filter.
type Term struct {
	Text  string
	Exact bool
}

// TermFilter accepts rows whose field matches any of Terms.
type TermFilter struct {
	Terms []Term
}

// ParseTerms parses a comma-separated list of search terms. A term wrapped in
// double quotes requires a case-insensitive exact match, any other term a
// case-insensitive substring match. An empty term matches an absent or empty
// value.
func ParseTerms(raw string) *TermFilter {
	parts := strings.Split(raw, ",")
	f := &TermFilter{Terms: make([]Term, 0, len(parts))}
	for _, part := range parts {
		if len(part) >= 2 && part[0] == '"' && part[len(part)-1] == '"' {
			f.Terms = append(f.Terms, Term{Text: part[1 : len(part)-1], Exact: true})
			continue
		}
		f.Terms = append(f.Terms, Term{Text: part})
	}
	return f
}

func (f *TermFilter) match(v Value) bool {
	for _, term := range f.Terms {
		if term.match(v) {
			return true
		}
	}
	return false
}

func (t Term) match(v Value) bool {
	if t.Text == "" {
		return v.Null || v.Str == ""
	}
	if v.Null {
		return false
	}
	if t.Exact {
		return strings.EqualFold(v.Str, t.Text)
	}
	return strings.Contains(strings.ToLower(v.Str), strings.ToLower(t.Text))
}

// condition binds a parsed filter to a resolved field.
type condition[T any] struct {
	field *Field[T]
	ids   *IDFilter
	terms *TermFilter
}

func (c condition[T]) match(row *T) bool {
	v := c.field.Value(row)
	if c.ids != nil {
		return c.ids.match(v)
	}
	return c.terms.match(v)
}

func (c condition[T]) sql(a *args) string {
	col := c.field.Column
	var alts []string
	if c.ids != nil {
		if c.ids.MatchNull {
			alts = append(alts, col+" IS NULL")
		}
		if len(c.ids.Values) > 0 {
			alts = append(alts, col+" = ANY("+a.add(pq.Int64Array(c.ids.Values))+")")
		}
	} else {
		for _, term := range c.terms.Terms {
			switch {
			case term.Text == "":
				alts = append(alts, "("+col+" IS NULL OR "+col+" = '')")
			case term.Exact:
				alts = append(alts, "LOWER("+col+") = LOWER("+a.add(term.Text)+")")
			default:
				alts = append(alts, col+" ILIKE "+a.add("%"+escapeLike(term.Text)+"%"))
			}
		}
	}
	if len(alts) == 0 {
		return "FALSE"
	}
	return "(" + strings.Join(alts, " OR ") + ")"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
