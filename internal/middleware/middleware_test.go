package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"movesight/internal/logging"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestID(t *testing.T) {
	existing := uuid.New().String()

	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{name: "no header", incoming: ""},
		{name: "valid header", incoming: existing, wantSame: true},
		{name: "garbage header", incoming: "<script>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = logging.RequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
			_, err := uuid.Parse(seen)
			assert.NoError(t, err)
			if tt.wantSame {
				assert.Equal(t, tt.incoming, seen)
			} else {
				assert.NotEqual(t, tt.incoming, seen)
			}
		})
	}
}

func TestChain_LoggerAndRecover(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := &logging.Logger{Logger: zap.New(core)}

	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	h := Chain(panicky, Recover(logger), Logger(logger), RequestID)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/detect", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"INTERNAL"`)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "panic recovered", entries[0].Message)
	assert.Equal(t, "request failed", entries[1].Message)
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.Equal(t, int64(http.StatusInternalServerError), entries[1].ContextMap()["status"])
	assert.NotEmpty(t, entries[1].ContextMap()["request_id"])
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantMsg   string
		wantLevel zapcore.Level
	}{
		{name: "ok", status: http.StatusOK, wantMsg: "request completed", wantLevel: zap.InfoLevel},
		{name: "not found", status: http.StatusNotFound, wantMsg: "request rejected", wantLevel: zap.WarnLevel},
		{name: "too large", status: http.StatusRequestEntityTooLarge, wantMsg: "request rejected", wantLevel: zap.WarnLevel},
		{name: "unavailable", status: http.StatusServiceUnavailable, wantMsg: "request failed", wantLevel: zap.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			logger := &logging.Logger{Logger: zap.New(core)}

			h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte("hello"))
			}), Logger(logger), RequestID)

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/sessions", nil))

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantMsg, entries[0].Message)
			assert.Equal(t, tt.wantLevel, entries[0].Level)
			assert.Equal(t, int64(5), entries[0].ContextMap()["bytes"])
			assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
		})
	}
}
