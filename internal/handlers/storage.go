package handlers

import (
	"context"

	"creapp/models"
)

type StorageInterface interface {
	CreateRequest(ctx context.Context, request *models.Request) error
	GetRequest(ctx context.Context, requestID int) (*models.Request, error)
	GetRequests(ctx context.Context) ([]models.Request, error)
	UpdateRequestState(ctx context.Context, requestID int, from, to string) error
	RecordDecision(ctx context.Context, validator *models.Validator, state string) error

	CreateProvider(ctx context.Context, provider *models.Provider) error
	GetProviders(ctx context.Context) ([]models.Provider, error)

	CreateQuotation(ctx context.Context, quotation *models.Quotation) error
	GetQuotation(ctx context.Context, quotationID int) (*models.Quotation, error)
	GetQuotations(ctx context.Context) ([]models.Quotation, error)
	UpdateQuotationStatus(ctx context.Context, quotationID int, from, to string) error
}
