package models

import "time"

// Состояния заявки
const (
	RequestPending   = "pending"
	RequestValidated = "validated"
	RequestRejected  = "rejected"
	RequestCancel    = "cancel"
)

// Статусы котировки
const (
	QuotationPending   = "PENDING"
	QuotationSubmitted = "SUBMITTED"
	QuotationApproved  = "APPROVED"
	QuotationRejected  = "REJECTED"
)

// Сводные статусы группы котировок
const (
	GroupNotProcessed = "NOT_PROCESSED"
	GroupInProgress   = "IN_PROGRESS"
	GroupProcessed    = "PROCESSED"
)

// Сущность Валидатора (одна подпись в цепочке согласования)
type Validator struct {
	ID        int        `db:"id" json:"id"`
	RequestID int        `db:"request_id" json:"requestId"`
	UserID    int        `db:"user_id" json:"userId" validate:"required"`
	Rank      int        `db:"rank" json:"rank" validate:"required,min=1"`
	Validated bool       `db:"validated" json:"validated"`
	DecidedAt *time.Time `db:"decided_at" json:"decidedAt,omitempty"`
}

// Сущность Заявки (command request)
type Request struct {
	ID          int         `db:"id" json:"id"`
	Title       string      `db:"title" json:"title" validate:"required,max=150"`
	Description string      `db:"description" json:"description" validate:"max=1000"`
	UserID      int         `db:"user_id" json:"userId" validate:"required"`
	State       string      `db:"state" json:"state" validate:"oneof=pending validated rejected cancel"`
	Validators  []Validator `db:"-" json:"validators"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time   `db:"updated_at" json:"-"`
}

// Сущность Поставщика
type Provider struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name" validate:"required,max=100"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Address   string    `db:"address" json:"address"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Сущность Котировки
type Quotation struct {
	ID               int       `db:"id" json:"id"`
	CommandRequestID int       `db:"command_request_id" json:"commandRequestId" validate:"required"`
	ProviderID       int       `db:"provider_id" json:"providerId" validate:"required"`
	Amount           float64   `db:"amount" json:"amount"`
	Status           string    `db:"status" json:"status" validate:"oneof=PENDING SUBMITTED APPROVED REJECTED"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"-"`
}

// Группа котировок по заявке (производная, не хранится)
type QuotationGroup struct {
	CommandRequest Request     `json:"commandRequest"`
	Quotations     []Quotation `json:"quotations"`
	Providers      []Provider  `json:"providers"`
	Status         string      `json:"status"`
	CreatedAt      time.Time   `json:"createdAt"`
}
