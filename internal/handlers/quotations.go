package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"creapp/internal/quotation"
	"creapp/models"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreateProviderHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var provider models.Provider
	if err := json.Unmarshal(body, &provider); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if provider.Name == "" || len(provider.Name) > 100 {
		http.Error(w, "name is required and max length 100", http.StatusBadRequest)
		return
	}

	if err := h.Store.CreateProvider(r.Context(), &provider); err != nil {
		h.Log.Error().Err(err).Str("name", provider.Name).Msg("create provider failed")
		http.Error(w, "Failed to create provider", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, provider)
}

func (h *Handler) GetProvidersHandler(w http.ResponseWriter, r *http.Request) {
	providers, err := h.Store.GetProviders(r.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("get providers failed")
		http.Error(w, "Failed to get providers", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, providers)
}

func (h *Handler) CreateQuotationHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var q models.Quotation
	if err := json.Unmarshal(body, &q); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if err := validateQuotation(&q); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Котировка должна ссылаться на существующую заявку
	if _, err := h.Store.GetRequest(r.Context(), q.CommandRequestID); err != nil {
		h.storageError(w, err, "commandRequest", q.CommandRequestID)
		return
	}

	q.Status = models.QuotationPending

	if err := h.Store.CreateQuotation(r.Context(), &q); err != nil {
		h.Log.Error().Err(err).Int("command_request_id", q.CommandRequestID).Msg("create quotation failed")
		http.Error(w, "Failed to create quotation", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, q)
}

func validateQuotation(q *models.Quotation) error {
	if q.CommandRequestID <= 0 {
		return errors.New("commandRequestId must be positive")
	}
	if q.ProviderID <= 0 {
		return errors.New("providerId must be positive")
	}
	if q.Amount < 0 {
		return errors.New("amount must not be negative")
	}
	if q.Status != "" && q.Status != models.QuotationPending {
		return errors.New("status must be 'PENDING' on creation")
	}
	return nil
}

func (h *Handler) GetQuotationsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	quotations, err := h.Store.GetQuotations(r.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("get quotations failed")
		http.Error(w, "Failed to get quotations", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, paginate(quotations, params))
}

func (h *Handler) UpdateQuotationStatusHandler(w http.ResponseWriter, r *http.Request) {
	quotationID, ok := parseIDParam(chi.URLParam(r, "quotationId"))
	if !ok {
		http.Error(w, "Invalid quotationId", http.StatusBadRequest)
		return
	}

	status := r.URL.Query().Get("status")
	if !quotation.ValidStatus(status) {
		http.Error(w, "Invalid status value", http.StatusBadRequest)
		return
	}

	q, err := h.Store.GetQuotation(r.Context(), quotationID)
	if err != nil {
		h.storageError(w, err, "quotation", quotationID)
		return
	}

	if !quotation.CanTransition(q.Status, status) {
		http.Error(w, "Invalid status transition", http.StatusConflict)
		return
	}

	if err := h.Store.UpdateQuotationStatus(r.Context(), quotationID, q.Status, status); err != nil {
		h.storageError(w, err, "quotation", quotationID)
		return
	}
	q.Status = status

	writeJSON(w, http.StatusOK, q)
}

// GetQuotationGroupsHandler группирует котировки по заявкам со сводным статусом
func (h *Handler) GetQuotationGroupsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)
	ctx := r.Context()

	requests, err := h.Store.GetRequests(ctx)
	if err != nil {
		h.Log.Error().Err(err).Msg("get requests failed")
		http.Error(w, "Failed to get requests", http.StatusInternalServerError)
		return
	}
	quotations, err := h.Store.GetQuotations(ctx)
	if err != nil {
		h.Log.Error().Err(err).Msg("get quotations failed")
		http.Error(w, "Failed to get quotations", http.StatusInternalServerError)
		return
	}
	providers, err := h.Store.GetProviders(ctx)
	if err != nil {
		h.Log.Error().Err(err).Msg("get providers failed")
		http.Error(w, "Failed to get providers", http.StatusInternalServerError)
		return
	}

	groups := quotation.GroupByCommandRequest(requests, quotations, providers)
	writeJSON(w, http.StatusOK, paginate(groups, params))
}
