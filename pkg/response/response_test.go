package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jsoncrud/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAlwaysCarriesCount(t *testing.T) {
	rec := httptest.NewRecorder()
	List(rec, 0, []string{})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"count":0,"data":[]}`, rec.Body.String())
}

func TestErrorEnvelopes(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "validation",
			err:    apperror.Validation("Title is required"),
			status: http.StatusBadRequest,
			body:   `{"success":false,"message":"Title is required"}`,
		},
		{
			name:   "not found",
			err:    apperror.NotFound("User with ID u1 not found"),
			status: http.StatusNotFound,
			body:   `{"success":false,"message":"User with ID u1 not found"}`,
		},
		{
			name:   "busy",
			err:    apperror.Busy("Store is busy, try again"),
			status: http.StatusServiceUnavailable,
			body:   `{"success":false,"message":"Store is busy, try again"}`,
		},
		{
			name:   "persistence",
			err:    apperror.Persistence("Error writing to database", errors.New("disk full")),
			status: http.StatusInternalServerError,
			body:   `{"success":false,"message":"Error creating user","error":"Error writing to database: disk full"}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, tc.err, "Error creating user")
			assert.Equal(t, tc.status, rec.Code)
			assert.JSONEq(t, tc.body, rec.Body.String())
		})
	}
}

func TestDecodeToleratesEmptyBody(t *testing.T) {
	var v struct{ Title string }
	req := httptest.NewRequest(http.MethodPost, "/todos/add", strings.NewReader(""))
	require.NoError(t, Decode(req, &v))

	req = httptest.NewRequest(http.MethodPost, "/todos/add", strings.NewReader("{"))
	assert.Error(t, Decode(req, &v))
}
