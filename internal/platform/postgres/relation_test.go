package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type related struct {
	ID         int64     `json:"id"`
	Registered time.Time `json:"registered"`
	Name       *string   `json:"name"`
}

func TestRelationJSON(t *testing.T) {
	assert.Equal(t, "CASE WHEN vendor.id IS NULL THEN NULL ELSE to_jsonb(vendor.*) END", RelationJSON("vendor"))
}

func TestDecodeRelation(t *testing.T) {
	t.Run("null column", func(t *testing.T) {
		v, err := DecodeRelation[related](nil)
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("row", func(t *testing.T) {
		v, err := DecodeRelation[related]([]byte(`{"id": 3, "registered": "2026-01-02T03:04:05+00:00", "name": null}`))
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, int64(3), v.ID)
		assert.Nil(t, v.Name)
		assert.True(t, v.Registered.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := DecodeRelation[related]([]byte(`{`))
		assert.Error(t, err)
	})
}
