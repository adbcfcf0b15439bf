package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantType ErrorType
	}{
		{name: "not found", err: NotFound("session not found"), wantCode: http.StatusNotFound, wantType: ErrorTypeNotFound},
		{name: "wrapped validation", err: fmt.Errorf("decoding: %w", ValidationError("bad diff", nil)), wantCode: http.StatusBadRequest, wantType: ErrorTypeValidation},
		{name: "too large", err: TooLarge("too many lines", map[string]int{"max_lines": 10}), wantCode: http.StatusRequestEntityTooLarge, wantType: ErrorTypeTooLarge},
		{name: "plain error", err: fmt.Errorf("disk on fire"), wantCode: http.StatusInternalServerError, wantType: ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteJSON(w, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body Error
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.wantType, body.Type)
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}
