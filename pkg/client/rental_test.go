package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lockrent/pkg/db/sqldb"
	apperrors "lockrent/pkg/errors"
	"lockrent/pkg/logger"
	"lockrent/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLockID = "3f2b8c4e-1d6a-4f7b-9c1e-5a2d8e7f6b3c"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestRentalClient_EndRental(t *testing.T) {
	secret := bytes.Repeat([]byte{0xAB}, model.SecretSize)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/locks/"+testLockID+"/end-rental", r.URL.Path)
		assert.Equal(t, "u1", r.Header.Get(DefaultUserIDHeader))
		assert.Equal(t, "idem-1", r.Header.Get(IdempotencyHeader))

		writeJSON(w, http.StatusOK, map[string]any{"data": model.EndRentalResult{
			LockID: testLockID,
			Rental: &model.Rental{ID: "r1", LockID: testLockID, Cost: 2, Duration: 90 * time.Minute},
			Secrets: model.Secrets{
				URL:    "https://locks.example.com/l1",
				Secret: secret,
				MAC:    "aa:bb:cc:dd:ee:ff",
			},
		}})
	}))
	defer server.Close()

	result, err := NewRentalClient(server.URL).EndRental(context.Background(), "u1", testLockID, "idem-1")
	require.NoError(t, err)

	assert.Equal(t, testLockID, result.LockID)
	assert.Equal(t, int64(2), result.Rental.Cost)
	assert.Equal(t, 90*time.Minute, result.Rental.Duration)
	assert.Equal(t, secret, result.Secret)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", result.MAC)
}

func TestRentalClient_ErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]any{"error": apperrors.Conflict("retry").Response()})
	}))
	defer server.Close()

	_, err := NewRentalClient(server.URL).EndRental(context.Background(), "u1", testLockID, "")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.HTTPStatus)
	assert.True(t, appErr.Retryable)
}

func TestRentalClient_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewRentalClient(server.URL).GetLockStatus(context.Background(), "u1", testLockID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}

func TestRentalClient_GetLockStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "u1", r.Header.Get("X-Rider"))
		writeJSON(w, http.StatusOK, map[string]any{"data": model.LockStatusResponse{LockID: testLockID, Status: model.LockHeld}})
	}))
	defer server.Close()

	status, err := NewRentalClient(server.URL).WithUserIDHeader("X-Rider").GetLockStatus(context.Background(), "u1", testLockID)
	require.NoError(t, err)
	assert.Equal(t, model.LockHeld, status)
}

func TestRentalClient_ListRentals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/rentals", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "10", r.URL.Query().Get("offset"))
		writeJSON(w, http.StatusOK, map[string]any{
			"data":        []*model.Rental{{ID: "r1"}, {ID: "r2"}},
			"total_count": 12,
			"limit":       5,
			"offset":      10,
		})
	}))
	defer server.Close()

	page, err := NewRentalClient(server.URL).ListRentals(context.Background(), "u1", 5, 10)
	require.NoError(t, err)
	assert.Len(t, page.Rentals, 2)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, int64(10), page.Offset)
}

func TestRentalClient_RetireLock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/locks/"+testLockID+"/retire", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"data": model.RetireLockResponse{LockID: testLockID, Mode: "deferred"}})
	}))
	defer server.Close()

	mode, err := NewRentalClient(server.URL).RetireLock(context.Background(), testLockID)
	require.NoError(t, err)
	assert.Equal(t, "deferred", mode)
}

func TestHttpClient_WaitForHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	require.NoError(t, NewHttpClient(server.URL).WaitForHealthy(context.Background(), time.Second))

	server.Close()
	assert.Error(t, NewHttpClient(server.URL).WaitForHealthy(context.Background(), 600*time.Millisecond))
}

func TestClient_PingWithoutStore(t *testing.T) {
	assert.Error(t, NewClient().Ping(context.Background()))
}

func TestClient_SQLStore(t *testing.T) {
	c := NewClient()
	c.SetSQL(logger.Discard(), sqldb.Config{Dialect: sqldb.DialectSQLite, DSN: ":memory:", MaxOpenConns: 1})
	require.NotNil(t, c.SQL)

	require.NoError(t, c.Ping(context.Background()))
	c.GracefulShutdown(logger.Discard())
	assert.Error(t, c.Ping(context.Background()))
}
