package pubsub

import (
	"errors"
	"slices"
	"strings"
)

var ErrInvalidTopic = errors.New("invalid topic")

// keySep cannot appear in a segment produced by route parameters, so joined
// keys never collide.
const keySep = "\x1f"

// Topic is an immutable, non-empty path of segments.
type Topic struct {
	segments []string
}

// NewTopic builds a topic from its segments.
func NewTopic(segments ...string) (Topic, error) {
	if len(segments) == 0 {
		return Topic{}, errors.Join(ErrInvalidTopic, errors.New("no segments"))
	}
	for _, s := range segments {
		if s == "" || strings.Contains(s, keySep) {
			return Topic{}, errors.Join(ErrInvalidTopic, errors.New("empty or malformed segment"))
		}
	}
	return Topic{segments: slices.Clone(segments)}, nil
}

// MustTopic is NewTopic for constant segments.
func MustTopic(segments ...string) Topic {
	t, err := NewTopic(segments...)
	if err != nil {
		panic(err)
	}
	return t
}

// Segments returns a copy of the topic path.
func (t Topic) Segments() []string {
	return slices.Clone(t.segments)
}

// Len is the number of segments.
func (t Topic) Len() int {
	return len(t.segments)
}

// IsZero reports whether t was never built with NewTopic.
func (t Topic) IsZero() bool {
	return len(t.segments) == 0
}

// Ancestors returns every strict prefix of t, nearest first.
func (t Topic) Ancestors() []Topic {
	if len(t.segments) < 2 {
		return nil
	}
	out := make([]Topic, 0, len(t.segments)-1)
	for n := len(t.segments) - 1; n >= 1; n-- {
		out = append(out, Topic{segments: t.segments[:n:n]})
	}
	return out
}

// HasPrefix reports whether p equals t or is one of its ancestors.
func (t Topic) HasPrefix(p Topic) bool {
	if p.IsZero() || len(p.segments) > len(t.segments) {
		return false
	}
	return slices.Equal(t.segments[:len(p.segments)], p.segments)
}

// Equal compares segment by segment.
func (t Topic) Equal(o Topic) bool {
	return slices.Equal(t.segments, o.segments)
}

func (t Topic) String() string {
	return strings.Join(t.segments, "/")
}

func (t Topic) key() string {
	return strings.Join(t.segments, keySep)
}
