package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/pravnik0/pravnik/internal/rag"
	"github.com/pravnik0/pravnik/internal/session"
)

// maxChatBodySize bounds the chat request body.
const maxChatBodySize = 1 << 20 // 1 MiB

// chatHandler serves the chat and session endpoints.
type chatHandler struct {
	pipeline *rag.Pipeline
	logger   *slog.Logger
}

// chatRequest is the POST /api/v1/chat body.
type chatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// historyResponse is the GET /api/v1/sessions/{id}/history body.
type historyResponse struct {
	SessionID string            `json:"session_id"`
	Messages  []session.Message `json:"messages"`
}

// send runs one chat turn. The only client error is an empty query; all
// backend degradation is absorbed by the pipeline.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodySize)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large",
				"request body exceeds "+strconv.FormatInt(maxErr.Limit, 10)+" bytes")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	resp, err := h.pipeline.GenerateResponse(r.Context(), req.SessionID, req.Query)
	if err != nil {
		if errors.Is(err, rag.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, "invalid_request", "query must not be empty")
			return
		}
		h.logger.Error("chat turn failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// history returns the recent messages of a session, oldest first. The
// limit query parameter bounds the window; absent or zero means all.
func (h *chatHandler) history(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.PathValue("id"))
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "session id is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	msgs, err := h.pipeline.GetHistory(r.Context(), sessionID, limit)
	if err != nil {
		h.logger.Error("reading history failed", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, historyResponse{SessionID: sessionID, Messages: msgs})
}

// clear deletes a session and its messages. Unknown sessions get 404.
func (h *chatHandler) clear(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.PathValue("id"))
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "session id is required")
		return
	}

	existed, err := h.pipeline.ClearHistory(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("clearing session failed", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	if !existed {
		writeError(w, http.StatusNotFound, "session_not_found", "no such session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
