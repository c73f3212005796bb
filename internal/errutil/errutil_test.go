package errutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAndSetError(t *testing.T) {
	t.Parallel()

	errClose := errors.New("already closed")

	t.Run("sets the error", func(t *testing.T) {
		t.Parallel()

		var err error
		RunAndSetError(func() error { return errClose }, &err, "close response body")
		require.ErrorIs(t, err, errClose)
		assert.Contains(t, err.Error(), "close response body")
	})

	t.Run("keeps the existing error", func(t *testing.T) {
		t.Parallel()

		errOriginal := errors.New("original")
		err := errOriginal
		RunAndSetError(func() error { return errClose }, &err, "close response body")
		assert.Equal(t, errOriginal, err)
	})

	t.Run("noop on success", func(t *testing.T) {
		t.Parallel()

		var err error
		RunAndSetError(func() error { return nil }, &err, "close response body")
		assert.NoError(t, err)
	})
}
