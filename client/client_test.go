package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"movesight/internal/errors"
	"movesight/internal/moved"
	"movesight/internal/session"
	"movesight/shared/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	var gotDiff types.DiffRequest
	var gotDetect types.DetectRequest

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/detect/diff", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotDiff))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(session.Session{ID: "s-1", Source: gotDiff.Source})
	})
	mux.HandleFunc("POST /api/detect", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotDetect))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(session.Session{ID: "s-2", Result: moved.Result{Skipped: true}})
	})
	mux.HandleFunc("GET /api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		errors.WriteJSON(w, errors.NotFound("session not found: "+r.PathValue("id")))
	})
	mux.HandleFunc("GET /api/sessions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]types.SessionSummary{{ID: "s-1"}})
	})
	mux.HandleFunc("DELETE /api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "teapot", http.StatusTeapot)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	t.Run("DetectDiff", func(t *testing.T) {
		s, err := c.DetectDiff(ctx, []byte("--- a/x\n"), "pr-3", nil)
		require.NoError(t, err)
		assert.Equal(t, "s-1", s.ID)
		assert.Equal(t, "pr-3", gotDiff.Source)
		assert.Nil(t, gotDiff.MinLinesCount)
	})

	t.Run("Detect", func(t *testing.T) {
		knob := -1
		s, err := c.Detect(ctx, []moved.Record{{File: "a", LineNumber: 1, Text: "x"}}, nil, &knob)
		require.NoError(t, err)
		assert.True(t, s.Result.Skipped)
		require.NotNil(t, gotDetect.MinLinesCount)
		assert.Equal(t, -1, *gotDetect.MinLinesCount)
		assert.Len(t, gotDetect.Removed, 1)
	})

	t.Run("GetSession not found", func(t *testing.T) {
		_, err := c.GetSession(ctx, "missing")
		require.Error(t, err)
		var e *errors.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, errors.ErrorTypeNotFound, e.Type)
		assert.Equal(t, http.StatusNotFound, e.Code)
	})

	t.Run("ListSessions", func(t *testing.T) {
		list, err := c.ListSessions(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("DeleteSession", func(t *testing.T) {
		assert.NoError(t, c.DeleteSession(ctx, "s-1"))
	})

	t.Run("non JSON error", func(t *testing.T) {
		c := New(srv.URL + "/elsewhere")
		_, err := c.ListSessions(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "418")
	})
}
