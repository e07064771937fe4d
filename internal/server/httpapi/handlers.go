package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/georemind/georemind/internal/common"
	"github.com/georemind/georemind/internal/logging"
	"github.com/georemind/georemind/internal/server/models"
)

type handlers struct {
	users     UserAPI
	reminders ReminderAPI
	log       logging.Logger
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changeBatchRequest struct {
	Reminders []models.ReminderChange `json:"reminders"`
	LastSync  *string                 `json:"lastSync"`
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "username taken")
		case errors.Is(err, common.ErrUnauthorized):
			writeError(w, http.StatusBadRequest, "username and password are required")
		default:
			h.serverError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user": map[string]any{"id": strconv.FormatInt(user.ID, 10), "username": user.Username},
	})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	token, user, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  map[string]any{"id": strconv.FormatInt(user.ID, 10), "username": user.Username},
	})
}

func (h *handlers) listReminders(w http.ResponseWriter, r *http.Request) {
	rs, err := h.reminders.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": toJSON(rs)})
}

func (h *handlers) createReminders(w http.ResponseWriter, r *http.Request) {
	var req changeBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	rs, err := h.reminders.CreateBatch(r.Context(), userIDFrom(r.Context()), req.Reminders)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": toJSON(rs)})
}

func (h *handlers) syncReminders(w http.ResponseWriter, r *http.Request) {
	var req changeBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	lastSync := ""
	if req.LastSync != nil {
		lastSync = *req.LastSync
	}

	outcome, err := h.reminders.Sync(r.Context(), userIDFrom(r.Context()), req.Reminders, lastSync)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":       toJSON(outcome.Reminders),
		"serverTime": outcome.ServerTime.Format(time.RFC3339),
	})
}

func (h *handlers) deleteReminder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.reminders.Delete(r.Context(), userIDFrom(r.Context()), id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, "reminder not found")
			return
		}
		h.serverError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func toJSON(rs []models.Reminder) []models.ReminderJSON {
	out := make([]models.ReminderJSON, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.JSON())
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
