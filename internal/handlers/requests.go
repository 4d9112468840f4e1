package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"creapp/internal/approval"
	"creapp/models"

	"github.com/go-chi/chi/v5"
)

// CreateRequestHandler обрабатывает POST /api/requests/new
func (h *Handler) CreateRequestHandler(w http.ResponseWriter, r *http.Request) {
	// Ограничение размера тела, чтобы избежать DoS
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var request models.Request
	if err := json.Unmarshal(body, &request); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if err := validateRequest(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Новая заявка всегда pending, решений ещё нет
	request.State = models.RequestPending
	for i := range request.Validators {
		request.Validators[i].Validated = false
		request.Validators[i].DecidedAt = nil
	}

	if err := h.Store.CreateRequest(r.Context(), &request); err != nil {
		h.Log.Error().Err(err).Int("user_id", request.UserID).Msg("create request failed")
		http.Error(w, "Failed to create request", http.StatusInternalServerError)
		return
	}

	h.Log.Info().Int("request_id", request.ID).Int("validators", len(request.Validators)).Msg("request created")
	writeJSON(w, http.StatusOK, request)
}

// validateRequest проверяет поля заявки и цепочку валидаторов
func validateRequest(req *models.Request) error {
	if req.Title == "" || len(req.Title) > 150 {
		return errors.New("title is required and max length 150")
	}
	if len(req.Description) > 1000 {
		return errors.New("description max length 1000")
	}
	if req.UserID <= 0 {
		return errors.New("userId must be positive")
	}
	if req.State != "" && req.State != models.RequestPending {
		return errors.New("state must be 'pending' on creation")
	}

	if len(req.Validators) == 0 {
		return errors.New("at least one validator is required")
	}

	// уникальные ранги в пределах 1..N дают ровно 1..N без пропусков
	ranks := map[int]bool{}
	users := map[int]bool{}
	for _, v := range req.Validators {
		if v.UserID <= 0 {
			return errors.New("validator userId must be positive")
		}
		if v.Rank <= 0 || v.Rank > len(req.Validators) {
			return errors.New("validator ranks must run from 1 to the number of validators")
		}
		if ranks[v.Rank] {
			return errors.New("validator ranks must be unique")
		}
		if users[v.UserID] {
			return errors.New("validator users must be unique")
		}
		ranks[v.Rank] = true
		users[v.UserID] = true
	}
	return nil
}

// GetRequestsHandler возвращает все заявки
func (h *Handler) GetRequestsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	requests, err := h.Store.GetRequests(r.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("get requests failed")
		http.Error(w, "Failed to get requests", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, paginate(requests, params))
}

// chainView отдаёт представление цепочки согласования для пользователя из query
func (h *Handler) chainView(view func([]models.Request, *int) []models.Request) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := parsePaginationParams(r)

		userID := parseUserID(r)
		if userID == nil {
			writeJSON(w, http.StatusOK, []models.Request{})
			return
		}

		requests, err := h.Store.GetRequests(r.Context())
		if err != nil {
			h.Log.Error().Err(err).Int("user_id", *userID).Msg("get requests failed")
			http.Error(w, "Failed to get requests", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, paginate(view(requests, userID), params))
	}
}

// GetApprobatorRequestsHandler: заявки, видимые пользователю как согласующему
func (h *Handler) GetApprobatorRequestsHandler(w http.ResponseWriter, r *http.Request) {
	h.chainView(approval.ApprobatorRequests)(w, r)
}

// GetPendingRequestsHandler: заявки, ожидающие решения пользователя
func (h *Handler) GetPendingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	h.chainView(approval.PendingForUser)(w, r)
}

// GetDecidedRequestsHandler: заявки, уже одобренные пользователем
func (h *Handler) GetDecidedRequestsHandler(w http.ResponseWriter, r *http.Request) {
	h.chainView(approval.DecidedByUser)(w, r)
}

// CancelRequestHandler: отменить заявку может только автор, и только пока она pending
func (h *Handler) CancelRequestHandler(w http.ResponseWriter, r *http.Request) {
	requestID, ok := parseIDParam(chi.URLParam(r, "requestId"))
	if !ok {
		http.Error(w, "Invalid requestId", http.StatusBadRequest)
		return
	}

	userID := parseUserID(r)
	if userID == nil {
		http.Error(w, "Missing userId", http.StatusUnauthorized)
		return
	}

	request, err := h.Store.GetRequest(r.Context(), requestID)
	if err != nil {
		h.storageError(w, err, "request", requestID)
		return
	}

	if request.UserID != *userID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if request.State != models.RequestPending {
		http.Error(w, "Request is not pending", http.StatusConflict)
		return
	}

	if err := h.Store.UpdateRequestState(r.Context(), requestID, request.State, models.RequestCancel); err != nil {
		h.storageError(w, err, "request", requestID)
		return
	}
	request.State = models.RequestCancel

	h.Log.Info().Int("request_id", requestID).Int("user_id", *userID).Msg("request cancelled")
	writeJSON(w, http.StatusOK, request)
}

// SubmitDecisionHandler записывает решение валидатора по заявке
func (h *Handler) SubmitDecisionHandler(w http.ResponseWriter, r *http.Request) {
	requestID, ok := parseIDParam(chi.URLParam(r, "requestId"))
	if !ok {
		http.Error(w, "Invalid requestId", http.StatusBadRequest)
		return
	}

	userID := parseUserID(r)
	if userID == nil {
		http.Error(w, "Missing userId", http.StatusUnauthorized)
		return
	}

	decision := r.URL.Query().Get("decision")
	if decision != models.RequestValidated && decision != models.RequestRejected {
		http.Error(w, "Invalid decision", http.StatusBadRequest)
		return
	}

	request, err := h.Store.GetRequest(r.Context(), requestID)
	if err != nil {
		h.storageError(w, err, "request", requestID)
		return
	}

	updated, err := approval.Decide(*request, *userID, decision == models.RequestValidated, h.Now())
	switch {
	case errors.Is(err, approval.ErrNotValidator):
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	own, _ := approval.FindValidator(updated, *userID)
	own.RequestID = requestID
	if err := h.Store.RecordDecision(r.Context(), &own, updated.State); err != nil {
		h.storageError(w, err, "validator", requestID)
		return
	}

	h.Log.Info().
		Int("request_id", requestID).
		Int("user_id", *userID).
		Int("rank", own.Rank).
		Str("decision", decision).
		Str("state", updated.State).
		Msg("decision recorded")

	writeJSON(w, http.StatusOK, updated)
}
