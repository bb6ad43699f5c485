package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "lockrent/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		retryable  bool
	}{
		{"not held", apperrors.NotHeld("l1"), http.StatusConflict, apperrors.CodeNotHeld, false},
		{"conflict", apperrors.Conflict("retry"), http.StatusConflict, apperrors.CodeConflict, true},
		{"timeout", apperrors.Timeout("slow"), http.StatusGatewayTimeout, apperrors.CodeTimeout, true},
		{"invalid input", apperrors.InvalidInput("bad"), http.StatusBadRequest, apperrors.CodeInvalidInput, false},
		{"plain error hidden", errors.New("db password wrong"), http.StatusInternalServerError, apperrors.CodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NoError(t, WriteError(rec, tt.err))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.retryable, body.Error.Retryable)
			assert.NotContains(t, rec.Body.String(), "password")
		})
	}
}

func TestExtractLimitOffset(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/rentals?limit=20&offset=40", nil)
	limit, offset, err := ExtractLimitOffset(r)
	require.NoError(t, err)
	assert.Equal(t, 20, limit)
	assert.Equal(t, int64(40), offset)

	r = httptest.NewRequest(http.MethodGet, "/api/v1/rentals?limit=abc", nil)
	_, _, err = ExtractLimitOffset(r)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}
