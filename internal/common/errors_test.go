package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserError(t *testing.T) {
	t.Run("wraps the underlying error", func(t *testing.T) {
		inner := errors.New("disk full")
		err := NewUserError("failed to open storage", inner)
		assert.Equal(t, "failed to open storage: disk full", err.Error())
		assert.ErrorIs(t, err, inner)
	})

	t.Run("message only", func(t *testing.T) {
		err := NewUserError("nothing to do", nil)
		assert.Equal(t, "nothing to do", err.Error())
	})
}
