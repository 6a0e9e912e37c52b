package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"visitly/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context, *readpref.ReadPref) error {
	return p.err
}

func get(t *testing.T, db Pinger, path string) (int, HealthResponse) {
	t.Helper()
	router := httprouter.New()
	NewHealthHandler(db, logger.Discard()).RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return w.Code, resp
}

func TestHealth(t *testing.T) {
	code, resp := get(t, stubPinger{err: errors.New("down")}, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp.Status)
}

func TestReady(t *testing.T) {
	code, resp := get(t, stubPinger{}, "/ready")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp.Database)

	code, resp = get(t, stubPinger{err: errors.New("no primary")}, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unavailable", resp.Status)
}
