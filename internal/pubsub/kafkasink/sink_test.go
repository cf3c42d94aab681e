package kafkasink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"spoolman/internal/pubsub"
	"spoolman/pkg/platform/circuit"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
	flushed bool
	closed  bool
}

func (p *fakeProducer) Produce(_ context.Context, r *kgo.Record, promise func(*kgo.Record, error)) {
	p.records = append(p.records, r)
	promise(r, p.err)
}

func (p *fakeProducer) Flush(context.Context) error {
	p.flushed = true
	return nil
}

func (p *fakeProducer) Close() { p.closed = true }

func testEvent(t *testing.T) pubsub.Event {
	t.Helper()
	ev, err := pubsub.NewEvent(pubsub.EventAdded, "cost", time.Date(2025, 2, 12, 0, 0, 0, 0, time.UTC), map[string]int{"id": 5})
	require.NoError(t, err)
	return ev
}

func TestSendProducesKeyedRecord(t *testing.T) {
	p := &fakeProducer{}
	s := New(p, "spoolman.changes")

	err := s.Send(context.Background(), pubsub.MustTopic("cost", "5"), testEvent(t))
	require.NoError(t, err)

	require.Len(t, p.records, 1)
	rec := p.records[0]
	assert.Equal(t, "spoolman.changes", rec.Topic)
	assert.Equal(t, "cost/5", string(rec.Key))
	assert.JSONEq(t, `{"type":"added","resource":"cost","date":"2025-02-12T00:00:00Z","payload":{"id":5}}`, string(rec.Value))
	assert.Equal(t, []kgo.RecordHeader{
		{Key: "type", Value: []byte("added")},
		{Key: "resource", Value: []byte("cost")},
	}, rec.Headers)
}

func TestSendStopsWhileCircuitOpen(t *testing.T) {
	p := &fakeProducer{err: errors.New("broker down")}
	s := New(p, "changes", WithBreaker(circuit.New("kafka", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))))
	topic := pubsub.MustTopic("cost", "5")

	require.NoError(t, s.Send(context.Background(), topic, testEvent(t)))
	require.NoError(t, s.Send(context.Background(), topic, testEvent(t)))

	err := s.Send(context.Background(), topic, testEvent(t))
	assert.ErrorIs(t, err, circuit.ErrOpen)
	assert.Len(t, p.records, 2)
}

func TestClose(t *testing.T) {
	p := &fakeProducer{}
	require.NoError(t, New(p, "changes").Close(context.Background()))
	assert.True(t, p.flushed)
	assert.True(t, p.closed)
}
