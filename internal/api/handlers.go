// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"movesight/internal/errors"
	"movesight/internal/session"
	"movesight/internal/validation"
	"movesight/shared/types"
)

// Sessions is the part of session.Service the handlers use.
type Sessions interface {
	Detect(ctx context.Context, req session.Request) (*session.Session, error)
	Get(id string) (*session.Session, error)
	List() ([]*session.Session, error)
	Diff(id string) ([]byte, error)
	Close(ctx context.Context, id string) error
}

type SessionHandler struct {
	sessions Sessions
	// Bodies above this many bytes are rejected before decoding.
	maxBody int64
}

func NewSessionHandler(sessions Sessions, maxBody int64) *SessionHandler {
	return &SessionHandler{sessions: sessions, maxBody: maxBody}
}

// Register mounts the handlers on mux.
func (h *SessionHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/detect", h.Detect)
	mux.HandleFunc("POST /api/detect/diff", h.DetectDiff)
	mux.HandleFunc("GET /api/sessions", h.List)
	mux.HandleFunc("GET /api/sessions/{id}", h.Get)
	mux.HandleFunc("GET /api/sessions/{id}/diff", h.Diff)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.Delete)
}

func (h *SessionHandler) Detect(w http.ResponseWriter, r *http.Request) {
	h.limit(w, r)
	req, err := validation.DecodeDetectRequest(r)
	if err != nil {
		errors.WriteJSON(w, err)
		return
	}

	sess, err := h.sessions.Detect(r.Context(), session.Request{
		Removed:       req.Removed,
		Added:         req.Added,
		MinLinesCount: req.MinLinesCount,
	})
	if err != nil {
		errors.WriteJSON(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sess)
}

func (h *SessionHandler) DetectDiff(w http.ResponseWriter, r *http.Request) {
	h.limit(w, r)
	req, err := validation.DecodeDiffRequest(r)
	if err != nil {
		errors.WriteJSON(w, err)
		return
	}

	sess, err := h.sessions.Detect(r.Context(), session.Request{
		Source:        req.Source,
		Diff:          []byte(req.Diff),
		MinLinesCount: req.MinLinesCount,
	})
	if err != nil {
		errors.WriteJSON(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sess)
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		errors.WriteJSON(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.List()
	if err != nil {
		errors.WriteJSON(w, err)
		return
	}

	summaries := make([]types.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, types.SessionSummary{
			ID:            s.ID,
			CreatedAt:     s.CreatedAt,
			Source:        s.Source,
			Files:         s.Files,
			LineCount:     s.LineCount,
			MinLinesCount: s.MinLinesCount,
			BlockCount:    len(s.Result.Blocks),
			Skipped:       s.Result.Skipped,
		})
	}

	writeJSON(w, http.StatusOK, summaries)
}

func (h *SessionHandler) Diff(w http.ResponseWriter, r *http.Request) {
	raw, err := h.sessions.Diff(r.PathValue("id"))
	if err != nil {
		errors.WriteJSON(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/x-diff; charset=utf-8")
	w.Write(raw)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(r.Context(), r.PathValue("id")); err != nil {
		errors.WriteJSON(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) limit(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.Health{Status: "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
