package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdamBeresnev/op-bracket/internal/apperrors"
	"github.com/AdamBeresnev/op-bracket/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	testCases := []struct {
		name        string
		err         error
		status      int
		code        apperrors.ErrorCode
		wantMessage string
	}{
		{
			name:        "not found",
			err:         apperrors.NotFound("match not found"),
			status:      http.StatusNotFound,
			code:        apperrors.CodeNotFound,
			wantMessage: "match not found",
		},
		{
			name:        "precondition",
			err:         apperrors.FailedPrecondition("tournament already started or finished"),
			status:      http.StatusUnprocessableEntity,
			code:        apperrors.CodeFailedPrecondition,
			wantMessage: "tournament already started or finished",
		},
		{
			name:        "conflict",
			err:         apperrors.Conflict("match was resolved concurrently"),
			status:      http.StatusConflict,
			code:        apperrors.CodeConflict,
			wantMessage: "match was resolved concurrently",
		},
		{
			name:        "plain error hides details",
			err:         errors.New("disk I/O error"),
			status:      http.StatusInternalServerError,
			code:        apperrors.CodeInternal,
			wantMessage: "Internal Server Error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, logger.Nop(), tc.err)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, tc.wantMessage, body.Message)
		})
	}
}

func TestBadRequest(t *testing.T) {
	rec := httptest.NewRecorder()
	BadRequest(rec, logger.Nop(), "Invalid match ID", errors.New("invalid UUID length: 3"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"code":"INVALID_INPUT","message":"Invalid match ID"}`, rec.Body.String())
}
