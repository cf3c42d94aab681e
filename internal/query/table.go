package query

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidQuery is the root of every resolution and parse failure.
	ErrInvalidQuery = errors.New("invalid query")

	ErrUnknownField   = fmt.Errorf("%w: unknown field", ErrInvalidQuery)
	ErrNotTraversable = fmt.Errorf("%w: field is not a relation", ErrInvalidQuery)
	ErrBadFilter      = fmt.Errorf("%w: malformed filter", ErrInvalidQuery)
	ErrBadSort        = fmt.Errorf("%w: malformed sort", ErrInvalidQuery)
	ErrBadPage        = fmt.Errorf("%w: malformed pagination", ErrInvalidQuery)
)

// Field is a resolved, typed accessor into rows of T.
type Field[T any] struct {
	Path   string
	Kind   Kind
	Column string
	// Ref marks id and foreign key fields, which take id filters.
	Ref bool
	get func(*T) Value
}

// Value reads the field from row.
func (f *Field[T]) Value(row *T) Value {
	return f.get(row)
}

// Table is the static field and relation table of one entity.
type Table[T any] struct {
	name      string
	alias     string
	key       string
	fields    map[string]*Field[T]
	order     []string
	relations map[string]struct{}
	errs      []error
}

// NewTable starts a table for the entity name whose SQL columns live under
// alias. The key field must be declared with Int.
func NewTable[T any](name, alias, key string) *Table[T] {
	return &Table[T]{
		name:      name,
		alias:     alias,
		key:       key,
		fields:    make(map[string]*Field[T]),
		relations: make(map[string]struct{}),
	}
}

// Name returns the entity name.
func (t *Table[T]) Name() string {
	return t.name
}

// Paths lists every resolvable field path in declaration order.
func (t *Table[T]) Paths() []string {
	return append([]string(nil), t.order...)
}

func (t *Table[T]) add(f *Field[T]) *Table[T] {
	if f.Path == "" {
		t.errs = append(t.errs, fmt.Errorf("%s: empty field path", t.name))
		return t
	}
	if _, dup := t.fields[f.Path]; dup {
		t.errs = append(t.errs, fmt.Errorf("%s: duplicate field %q", t.name, f.Path))
		return t
	}
	if _, dup := t.relations[f.Path]; dup {
		t.errs = append(t.errs, fmt.Errorf("%s: field %q shadows a relation", t.name, f.Path))
		return t
	}
	t.fields[f.Path] = f
	t.order = append(t.order, f.Path)
	return t
}

func (t *Table[T]) column(name string) string {
	return t.alias + "." + name
}

// Int declares a non-null integer field.
func (t *Table[T]) Int(name string, get func(*T) int64) *Table[T] {
	return t.add(&Field[T]{
		Path:   name,
		Kind:   KindInt,
		Column: t.column(name),
		Ref:    true,
		get:    func(row *T) Value { return intValue(get(row)) },
	})
}

// Ref declares a nullable foreign key field.
func (t *Table[T]) Ref(name string, get func(*T) *int64) *Table[T] {
	return t.add(&Field[T]{
		Path:   name,
		Kind:   KindInt,
		Column: t.column(name),
		Ref:    true,
		get:    func(row *T) Value { return refValue(get(row)) },
	})
}

// Float declares a nullable numeric field.
func (t *Table[T]) Float(name string, get func(*T) *float64) *Table[T] {
	return t.add(&Field[T]{
		Path:   name,
		Kind:   KindFloat,
		Column: t.column(name),
		get:    func(row *T) Value { return floatValue(get(row)) },
	})
}

// String declares a non-null string field.
func (t *Table[T]) String(name string, get func(*T) string) *Table[T] {
	return t.add(&Field[T]{
		Path:   name,
		Kind:   KindString,
		Column: t.column(name),
		get:    func(row *T) Value { return stringValue(get(row)) },
	})
}

// OptString declares a nullable string field.
func (t *Table[T]) OptString(name string, get func(*T) *string) *Table[T] {
	return t.add(&Field[T]{
		Path:   name,
		Kind:   KindString,
		Column: t.column(name),
		get:    func(row *T) Value { return optStringValue(get(row)) },
	})
}

// Time declares a non-null timestamp field.
func (t *Table[T]) Time(name string, get func(*T) time.Time) *Table[T] {
	return t.add(&Field[T]{
		Path:   name,
		Kind:   KindTime,
		Column: t.column(name),
		get:    func(row *T) Value { return timeValue(get(row)) },
	})
}

// Embed exposes every field of child under "name." on parent. get returns the
// related row, or nil when the relation is absent, in which case every
// embedded field reads as null.
func Embed[T, U any](parent *Table[T], name string, get func(*T) *U, child *Table[U]) *Table[T] {
	if _, dup := parent.fields[name]; dup {
		parent.errs = append(parent.errs, fmt.Errorf("%s: relation %q shadows a field", parent.name, name))
		return parent
	}
	parent.relations[name] = struct{}{}
	for rel := range child.relations {
		parent.relations[name+"."+rel] = struct{}{}
	}
	for _, path := range child.order {
		cf := child.fields[path]
		kind := cf.Kind
		parent.add(&Field[T]{
			Path:   name + "." + path,
			Kind:   kind,
			Column: cf.Column,
			Ref:    cf.Ref,
			get: func(row *T) Value {
				related := get(row)
				if related == nil {
					return Value{Kind: kind, Null: true}
				}
				return cf.get(related)
			},
		})
	}
	parent.errs = append(parent.errs, child.errs...)
	return parent
}

// Validate reports declaration errors and checks that every accessor
// produces the kind it was declared with.
func (t *Table[T]) Validate() error {
	errs := append([]error(nil), t.errs...)
	if f, ok := t.fields[t.key]; !ok || f.Kind != KindInt {
		errs = append(errs, fmt.Errorf("%s: key field %q must be an integer field", t.name, t.key))
	}
	var zero T
	for _, path := range t.order {
		f := t.fields[path]
		if got := f.get(&zero).Kind; got != f.Kind {
			errs = append(errs, fmt.Errorf("%s: field %q declared %s but reads %s", t.name, path, f.Kind, got))
		}
	}
	return errors.Join(errs...)
}

// MustValidate panics when the table is inconsistent. Tables are package
// level values, so this runs at startup.
func (t *Table[T]) MustValidate() *Table[T] {
	if err := t.Validate(); err != nil {
		panic(err)
	}
	return t
}

// Resolve maps a dot-separated path to its field.
func (t *Table[T]) Resolve(path string) (*Field[T], error) {
	if f, ok := t.fields[path]; ok {
		return f, nil
	}
	segments := strings.Split(path, ".")
	for i := 1; i < len(segments); i++ {
		prefix := strings.Join(segments[:i], ".")
		if _, ok := t.fields[prefix]; ok {
			return nil, fmt.Errorf("%w: %q on %s", ErrNotTraversable, prefix, t.name)
		}
		if _, ok := t.relations[prefix]; !ok {
			return nil, fmt.Errorf("%w: %q on %s", ErrUnknownField, prefix, t.name)
		}
	}
	if _, ok := t.relations[path]; ok {
		return nil, fmt.Errorf("%w: %q on %s is a relation", ErrUnknownField, path, t.name)
	}
	return nil, fmt.Errorf("%w: %q on %s", ErrUnknownField, path, t.name)
}

func (t *Table[T]) keyField() *Field[T] {
	return t.fields[t.key]
}
