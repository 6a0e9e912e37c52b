package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "visitly/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteError(rec, apperrors.TimeConflict("staff-1")))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperrors.CodeTimeConflict, body.Code)
	assert.Equal(t, "staff-1", body.Details["staff_id"])
	assert.Equal(t, apperrors.ScopeTime, body.Details["scope"])
}

func TestWriteError_HidesInternalCause(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteError(rec, errors.New("connection refused to 10.0.0.3")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
	assert.Contains(t, rec.Body.String(), apperrors.CodeInternal)
}

func TestWriteError_Retryable(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteError(rec, apperrors.Timeout("lock wait expired")))

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Contains(t, rec.Body.String(), `"retryable":true`)
}

func TestExtractLimitOffset(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int64
		wantErr    bool
	}{
		{"defaults", "", 10, 0, false},
		{"explicit", "?limit=20&offset=5", 20, 5, false},
		{"clamped", "?limit=5000&offset=-3", 100, 0, false},
		{"bad limit", "?limit=abc", 0, 0, true},
		{"bad offset", "?offset=x", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/items"+tt.query, nil)
			limit, offset, err := ExtractLimitOffset(r)
			if tt.wantErr {
				assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestExtractTime(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?at=2026-10-20T09:00:00Z", nil)
	at, err := ExtractTime(r, "at")
	require.NoError(t, err)
	assert.Equal(t, 9, at.Hour())

	_, err = ExtractTime(httptest.NewRequest(http.MethodGet, "/x", nil), "at")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	_, err = ExtractTime(httptest.NewRequest(http.MethodGet, "/x?at=tomorrow", nil), "at")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}
