package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"spoolman/pkg/platform/sentinel"
)

func TestTranslate(t *testing.T) {
	fk := fmt.Errorf("insert: %w", &pq.Error{Code: "23503", Constraint: "cost_calculation_printer_id_fkey"})
	err := Translate(fk)
	assert.ErrorIs(t, err, sentinel.ErrConflict)
	assert.Contains(t, err.Error(), "cost_calculation_printer_id_fkey")

	unique := &pq.Error{Code: "23505"}
	assert.Same(t, unique, Translate(unique))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, Translate(plain))
	assert.NoError(t, Translate(nil))
}
