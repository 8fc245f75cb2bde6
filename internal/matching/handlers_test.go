// internal/matching/handlers_test.go

package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authedRequest(method, path string, body []byte, userID int64) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), "userID", userID)
	return req.WithContext(ctx)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestGetNextCandidateHandler(t *testing.T) {
	t.Run("serves a candidate", func(t *testing.T) {
		repo := newFakeRepository()
		repo.viewers[1] = eligibleViewer(1, "male")
		repo.candidates = []*Candidate{{ID: 2, FirstName: strPtr("Anna")}}

		handler := NewHandler(NewService(repo, nil, nil, 24*time.Hour))

		rec := httptest.NewRecorder()
		handler.GetNextCandidate(rec, authedRequest("GET", "/api/v1/matching/next", nil, 1))

		assert.Equal(t, http.StatusOK, rec.Code)
		envelope := decodeEnvelope(t, rec)
		data, ok := envelope["data"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(2), data["id"])
	})

	t.Run("empty pool is not an error", func(t *testing.T) {
		repo := newFakeRepository()
		repo.viewers[1] = eligibleViewer(1, "male")

		handler := NewHandler(NewService(repo, nil, nil, 24*time.Hour))

		rec := httptest.NewRecorder()
		handler.GetNextCandidate(rec, authedRequest("GET", "/api/v1/matching/next", nil, 1))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("ineligible viewer gets 403", func(t *testing.T) {
		repo := newFakeRepository()
		repo.viewers[1] = &Viewer{ID: 1, Verified: false}

		handler := NewHandler(NewService(repo, nil, nil, 24*time.Hour))

		rec := httptest.NewRecorder()
		handler.GetNextCandidate(rec, authedRequest("GET", "/api/v1/matching/next", nil, 1))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing user context gets 401", func(t *testing.T) {
		handler := NewHandler(NewService(newFakeRepository(), nil, nil, 24*time.Hour))

		rec := httptest.NewRecorder()
		handler.GetNextCandidate(rec, httptest.NewRequest("GET", "/api/v1/matching/next", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestPostReactionHandler(t *testing.T) {
	t.Run("mutual like reports a match", func(t *testing.T) {
		repo := newFakeRepository()
		notifier := &fakeNotifier{}
		svc := NewService(repo, notifier, nil, 24*time.Hour)
		require.NoError(t, svc.RecordReaction(context.Background(), 2, 1, true))

		handler := NewHandler(svc)

		body, _ := json.Marshal(map[string]interface{}{
			"target_user_id": 2,
			"is_like":        true,
		})
		rec := httptest.NewRecorder()
		handler.PostReaction(rec, authedRequest("POST", "/api/v1/matching/reactions", body, 1))

		require.Equal(t, http.StatusOK, rec.Code)
		envelope := decodeEnvelope(t, rec)
		data, ok := envelope["data"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, true, data["matched"])
	})

	t.Run("missing is_like is rejected", func(t *testing.T) {
		handler := NewHandler(NewService(newFakeRepository(), nil, nil, 24*time.Hour))

		body := []byte(`{"target_user_id": 2}`)
		rec := httptest.NewRecorder()
		handler.PostReaction(rec, authedRequest("POST", "/api/v1/matching/reactions", body, 1))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("self reaction is rejected", func(t *testing.T) {
		handler := NewHandler(NewService(newFakeRepository(), nil, nil, 24*time.Hour))

		body := []byte(`{"target_user_id": 1, "is_like": true}`)
		rec := httptest.NewRecorder()
		handler.PostReaction(rec, authedRequest("POST", "/api/v1/matching/reactions", body, 1))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
