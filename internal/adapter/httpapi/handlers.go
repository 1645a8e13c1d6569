// Package httpapi exposes the progress operations over a small JSON API.
// Identity comes from the X-User-ID header (a UUID issued by the auth
// provider); requests without it run in guest mode against the local
// cache only.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/woorden/internal/entity"
	"github.com/eslsoft/woorden/internal/usecase"
)

const userHeader = "X-User-ID"

// Sync status values reported back to the UI's transient indicator.
const (
	syncOK       = "ok"
	syncDegraded = "degraded"
)

// Handler carries the usecases behind the HTTP surface.
type Handler struct {
	sync     usecase.SyncUsecase
	progress usecase.ProgressUsecase
	logger   logrus.FieldLogger
}

// NewHandler wires the API handlers.
func NewHandler(sync usecase.SyncUsecase, progress usecase.ProgressUsecase, logger logrus.FieldLogger) *Handler {
	return &Handler{sync: sync, progress: progress, logger: logger}
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type wordsResponse struct {
	Words []entity.DisplayWord `json:"words"`
	Sync  string               `json:"sync"`
}

func (h *Handler) words(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	words, err := h.sync.Words(r.Context(), userID)
	status := syncOK
	if err != nil {
		if !errors.Is(err, entity.ErrStoreUnavailable) {
			h.serverError(w, err)
			return
		}
		// Remote outage: serve the cached list and flag the degraded sync.
		status = syncDegraded
	}
	writeJSON(w, http.StatusOK, wordsResponse{Words: words, Sync: status})
}

type recordRequest struct {
	WordID      int64  `json:"wordId"`
	Familiarity string `json:"familiarity,omitempty"`
	Correct     *bool  `json:"correct,omitempty"`
}

type recordResponse struct {
	WordID      int64                   `json:"wordId"`
	Familiarity entity.FamiliarityLevel `json:"familiarity"`
	Stats       *entity.LearningStats   `json:"stats,omitempty"`
}

func (h *Handler) recordView(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}
	record, err := h.progress.RecordView(r.Context(), userID, req.WordID)
	h.writeRecord(w, record, err)
}

func (h *Handler) recordMastery(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}
	if !entity.ValidFamiliarity(req.Familiarity) {
		h.badRequest(w, "familiarity must be one of new, learning, familiar, mastered")
		return
	}
	record, err := h.progress.RecordMasteryToggle(r.Context(), userID, req.WordID, entity.ParseFamiliarity(req.Familiarity))
	h.writeRecord(w, record, err)
}

func (h *Handler) recordTest(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}
	if req.Correct == nil {
		h.badRequest(w, "correct is required")
		return
	}
	record, err := h.progress.RecordTestResult(r.Context(), userID, req.WordID, *req.Correct)
	h.writeRecord(w, record, err)
}

type syncRequest struct {
	Words []entity.DisplayWord `json:"words"`
}

// syncNow pushes the client's full word list (or, absent a body list, the
// current merged list) to both stores in one pass.
func (h *Handler) syncNow(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(w, "invalid JSON body")
		return
	}
	words := req.Words
	if len(words) == 0 {
		var err error
		if words, err = h.sync.Words(r.Context(), userID); err != nil && !errors.Is(err, entity.ErrStoreUnavailable) {
			h.serverError(w, err)
			return
		}
	}
	if err := h.progress.SaveAll(r.Context(), userID, words); err != nil {
		if errors.Is(err, entity.ErrStoreUnavailable) {
			writeJSON(w, http.StatusOK, map[string]string{"sync": syncDegraded})
			return
		}
		h.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"sync": syncOK})
}

// reset irreversibly clears the user's progress; the confirm flag stands
// in for the UI's confirmation prompt.
func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("confirm") != "true" {
		h.badRequest(w, "reset requires confirm=true")
		return
	}
	words, err := h.progress.Reset(r.Context(), userID)
	if err != nil {
		if errors.Is(err, entity.ErrStoreUnavailable) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "remote store unavailable, progress not reset"})
			return
		}
		h.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wordsResponse{Words: words, Sync: syncOK})
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := r.Header.Get(userHeader)
	if raw == "" {
		return "", true // guest
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.badRequest(w, "X-User-ID must be a UUID")
		return "", false
	}
	return id.String(), true
}

func (h *Handler) decodeRecord(w http.ResponseWriter, r *http.Request) (recordRequest, bool) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body")
		return req, false
	}
	if req.WordID <= 0 {
		h.badRequest(w, "wordId must be positive")
		return req, false
	}
	return req, true
}

func (h *Handler) writeRecord(w http.ResponseWriter, record *entity.ProgressRecord, err error) {
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrInvalidFamiliarity), errors.Is(err, entity.ErrInvalidWordID):
			h.badRequest(w, err.Error())
		case errors.Is(err, entity.ErrWordNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			h.serverError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, recordResponse{
		WordID:      record.WordID,
		Familiarity: record.Familiarity,
		Stats:       record.Stats,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func (h *Handler) serverError(w http.ResponseWriter, err error) {
	h.logger.WithError(err).Error("request failed")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
