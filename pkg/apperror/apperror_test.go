package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("Title is required"), http.StatusBadRequest},
		{"conflict", Conflict("Email already exists"), http.StatusBadRequest},
		{"not found", NotFound("User with ID x not found"), http.StatusNotFound},
		{"persistence", Persistence("Failed to save", errors.New("disk full")), http.StatusInternalServerError},
		{"busy", Busy("Store is busy"), http.StatusServiceUnavailable},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Status(tc.err))
		})
	}
}

func TestSentinelMatchingThroughWrapping(t *testing.T) {
	err := fmt.Errorf("service: %w", NotFound("Todo with ID 1 not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "Todo with ID 1 not found", MessageOf(err, "fallback"))
	assert.Equal(t, "fallback", MessageOf(errors.New("x"), "fallback"))
}

func TestPersistenceUnwrapsCause(t *testing.T) {
	cause := errors.New("permission denied")
	err := Persistence("Failed to write database", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, "Failed to write database: permission denied", err.Error())
}
