package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTopic(t *testing.T) {
	_, err := NewTopic()
	assert.ErrorIs(t, err, ErrInvalidTopic)

	_, err = NewTopic("printer", "")
	assert.ErrorIs(t, err, ErrInvalidTopic)

	topic, err := NewTopic("printer", "42")
	require.NoError(t, err)
	assert.Equal(t, "printer/42", topic.String())
	assert.Equal(t, 2, topic.Len())
}

func TestTopicIsImmutable(t *testing.T) {
	segments := []string{"printer", "42"}
	topic := MustTopic(segments...)
	segments[1] = "7"
	assert.Equal(t, "printer/42", topic.String())

	out := topic.Segments()
	out[0] = "cost"
	assert.Equal(t, "printer/42", topic.String())
}

func TestTopicAncestors(t *testing.T) {
	topic := MustTopic("a", "b", "c")
	ancestors := topic.Ancestors()
	require.Len(t, ancestors, 2)
	assert.Equal(t, "a/b", ancestors[0].String())
	assert.Equal(t, "a", ancestors[1].String())

	assert.Empty(t, MustTopic("a").Ancestors())

	assert.True(t, topic.HasPrefix(MustTopic("a")))
	assert.True(t, topic.HasPrefix(topic))
	assert.False(t, topic.HasPrefix(MustTopic("b")))
	assert.False(t, MustTopic("a").HasPrefix(topic))
}

func TestNewEvent(t *testing.T) {
	_, err := NewEvent("renamed", "printer", fixedNow, nil)
	assert.Error(t, err)

	_, err = NewEvent(EventAdded, "", fixedNow, nil)
	assert.Error(t, err)

	_, err = NewEvent(EventAdded, "printer", fixedNow, func() {})
	assert.Error(t, err, "unencodable snapshot")
}
