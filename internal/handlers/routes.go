package handlers

import "github.com/go-chi/chi/v5"

// Mount регистрирует маршруты API на роутере
func (h *Handler) Mount(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)
		// заявки и цепочка согласования
		r.Get("/requests", h.GetRequestsHandler)
		r.Post("/requests/new", h.CreateRequestHandler)
		r.Get("/requests/approbator", h.GetApprobatorRequestsHandler)
		r.Get("/requests/pending", h.GetPendingRequestsHandler)
		r.Get("/requests/decided", h.GetDecidedRequestsHandler)
		r.Put("/requests/{requestId}/cancel", h.CancelRequestHandler)
		r.Put("/requests/{requestId}/decision", h.SubmitDecisionHandler)
		// поставщики
		r.Get("/providers", h.GetProvidersHandler)
		r.Post("/providers/new", h.CreateProviderHandler)
		// котировки
		r.Get("/quotations", h.GetQuotationsHandler)
		r.Post("/quotations/new", h.CreateQuotationHandler)
		r.Get("/quotations/groups", h.GetQuotationGroupsHandler)
		r.Put("/quotations/{quotationId}/status", h.UpdateQuotationStatusHandler)
	})
}
