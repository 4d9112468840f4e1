package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"creapp/db"

	"github.com/rs/zerolog"
)

// Handler оборачивает Storage для доступа к данным
type Handler struct {
	Store StorageInterface
	Log   zerolog.Logger
	// Now используется для меток времени решений
	Now func() time.Time
}

// NewHandler создает новый Handler
func NewHandler(store StorageInterface, log zerolog.Logger) *Handler {
	return &Handler{Store: store, Log: log, Now: time.Now}
}

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type PaginationParams struct {
	Limit  int
	Offset int
}

// parsePaginationParams парсит limit и offset из query, с дефолтами и ограничениями
func parsePaginationParams(r *http.Request) PaginationParams {
	params := PaginationParams{Limit: 20, Offset: 0}

	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
		params.Limit = l
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		params.Offset = o
	}
	return params
}

// paginate вырезает страницу из уже вычисленного списка
func paginate[T any](items []T, p PaginationParams) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}

// parseUserID читает userId из query; отсутствие или мусор означает "нет сессии"
func parseUserID(r *http.Request) *int {
	raw := strings.TrimSpace(r.URL.Query().Get("userId"))
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

func parseIDParam(raw string) (int, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// storageError пишет 404 для ErrNotFound, 409 для ErrConflict и 500 для остального
func (h *Handler) storageError(w http.ResponseWriter, err error, entity string, id int) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		http.Error(w, entity+" not found", http.StatusNotFound)
		return
	case errors.Is(err, db.ErrConflict):
		h.Log.Warn().Str("entity", entity).Int("id", id).Msg("concurrent update lost")
		http.Error(w, entity+" was modified concurrently", http.StatusConflict)
		return
	}
	h.Log.Error().Err(err).Str("entity", entity).Int("id", id).Msg("storage failure")
	http.Error(w, "Internal storage error", http.StatusInternalServerError)
}
