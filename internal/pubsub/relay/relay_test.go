package relay

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spoolman/internal/pubsub"
)

type capture struct {
	topics []pubsub.Topic
	events []pubsub.Event
}

func (c *capture) Publish(topic pubsub.Topic, ev pubsub.Event) int {
	c.topics = append(c.topics, topic)
	c.events = append(c.events, ev)
	return 1
}

func remoteMessage(t *testing.T, origin string, topic []string) string {
	t.Helper()
	ev, err := pubsub.NewEvent(pubsub.EventUpdated, "printer", time.Date(2025, 2, 12, 0, 0, 0, 0, time.UTC), map[string]any{"id": 3})
	require.NoError(t, err)
	body, err := json.Marshal(envelope{Origin: origin, Topic: topic, Event: ev})
	require.NoError(t, err)
	return string(body)
}

func TestHandleRepublishesRemoteEvents(t *testing.T) {
	local := &capture{}
	r := New(nil, local)

	n := r.handle(context.Background(), remoteMessage(t, "other-instance", []string{"printer", "3"}))

	assert.Equal(t, 1, n)
	require.Len(t, local.events, 1)
	assert.Equal(t, "printer/3", local.topics[0].String())
	assert.Equal(t, pubsub.EventUpdated, local.events[0].Type)
	assert.JSONEq(t, `{"id":3}`, string(local.events[0].Payload))
}

func TestHandleSkipsOwnEvents(t *testing.T) {
	local := &capture{}
	r := New(nil, local)

	n := r.handle(context.Background(), remoteMessage(t, r.Origin(), []string{"printer", "3"}))
	assert.Zero(t, n)
	assert.Empty(t, local.events)
}

func TestHandleDiscardsMalformedMessages(t *testing.T) {
	local := &capture{}
	r := New(nil, local)

	assert.Zero(t, r.handle(context.Background(), "not json"))
	assert.Zero(t, r.handle(context.Background(), remoteMessage(t, "other", nil)))
	assert.Empty(t, local.events)
}
