package tx

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTxNilKeepsContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, WithTx(ctx, nil))
	_, ok := From(ctx)
	assert.False(t, ok)
}

func TestFromReturnsStoredTx(t *testing.T) {
	sqlTx := &sql.Tx{}
	got, ok := From(WithTx(context.Background(), sqlTx))
	require.True(t, ok)
	assert.Same(t, sqlTx, got)
}

func TestLocalSerializesUnitsOfWork(t *testing.T) {
	var l Local
	var inside, maxInside int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.RunInTx(context.Background(), func(context.Context) error {
				mu.Lock()
				inside++
				maxInside = max(maxInside, inside)
				mu.Unlock()

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxInside)
}

func TestLocalPropagatesErrors(t *testing.T) {
	var l Local
	boom := errors.New("boom")
	assert.ErrorIs(t, l.RunInTx(context.Background(), func(context.Context) error { return boom }), boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := l.RunInTx(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
