package query

import (
	"fmt"
	"strings"
)

// SortKey is one (field, direction) pair of a sort parameter.
type SortKey struct {
	Path string
	Desc bool
}

// ParseSort parses "field:direction" items separated by commas, e.g.
// "power_watts:asc,name:desc". Items keep their order as key precedence.
func ParseSort(raw string) ([]SortKey, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	items := strings.Split(raw, ",")
	keys := make([]SortKey, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		path, dir, ok := strings.Cut(strings.TrimSpace(item), ":")
		if !ok || path == "" {
			return nil, fmt.Errorf("%w: %q is not field:direction", ErrBadSort, item)
		}
		var desc bool
		switch strings.ToLower(dir) {
		case "asc":
		case "desc":
			desc = true
		default:
			return nil, fmt.Errorf("%w: unknown direction %q", ErrBadSort, dir)
		}
		if _, dup := seen[path]; dup {
			return nil, fmt.Errorf("%w: %q listed twice", ErrBadSort, path)
		}
		seen[path] = struct{}{}
		keys = append(keys, SortKey{Path: path, Desc: desc})
	}
	return keys, nil
}

type resolvedSort[T any] struct {
	field *Field[T]
	desc  bool
}

// Page selects a window of the filtered result. Offset only applies when
// Limit is set.
type Page struct {
	Limit  *int
	Offset int
}

func (p Page) validate() error {
	if p.Limit != nil && *p.Limit < 0 {
		return fmt.Errorf("%w: negative limit", ErrBadPage)
	}
	if p.Offset < 0 {
		return fmt.Errorf("%w: negative offset", ErrBadPage)
	}
	return nil
}
