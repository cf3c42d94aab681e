package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	base := errors.New("boom")

	t.Run("direct code", func(t *testing.T) {
		err := New(CodeNotFound, "printer not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("nested code is found", func(t *testing.T) {
		inner := New(CodeInvalidQuery, "unknown field")
		outer := Wrap(inner, CodeBadRequest, "find printers")
		assert.True(t, HasCode(outer, CodeBadRequest))
		assert.True(t, HasCode(outer, CodeInvalidQuery))
		assert.Equal(t, CodeBadRequest, CodeOf(outer))
	})

	t.Run("wrap keeps cause", func(t *testing.T) {
		err := Wrap(base, CodeInternal, "save printer")
		assert.ErrorIs(t, err, base)
		assert.Equal(t, "save printer: boom", err.Error())
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(base))
		assert.Nil(t, Wrap(nil, CodeInternal, "noop"))
	})
}
