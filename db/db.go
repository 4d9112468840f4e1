package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"creapp/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict: запись изменилась между чтением и условным обновлением
	ErrConflict = errors.New("conflicting update")
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Request (Заявка)

func (s *Storage) CreateRequest(ctx context.Context, r *models.Request) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO command_request (title, description, user_id, state)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`
	err = tx.QueryRowContext(ctx, query, r.Title, r.Description, r.UserID, r.State).
		Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}

	validatorQuery := `
        INSERT INTO validator (request_id, user_id, rank, validated)
        VALUES ($1, $2, $3, $4)
        RETURNING id`
	for i := range r.Validators {
		v := &r.Validators[i]
		v.RequestID = r.ID
		err = tx.QueryRowContext(ctx, validatorQuery, v.RequestID, v.UserID, v.Rank, v.Validated).Scan(&v.ID)
		if err != nil {
			return fmt.Errorf("insert validator: %w", err)
		}
	}

	return tx.Commit()
}

func (s *Storage) GetRequest(ctx context.Context, id int) (*models.Request, error) {
	r := &models.Request{}
	query := `
        SELECT id, title, description, user_id, state, created_at, updated_at
        FROM command_request WHERE id=$1`
	if err := s.db.GetContext(ctx, r, query, id); err != nil {
		return nil, notFound(err)
	}

	r.Validators = []models.Validator{}
	validatorQuery := `
        SELECT id, request_id, user_id, rank, validated, decided_at
        FROM validator WHERE request_id=$1
        ORDER BY rank ASC, id ASC`
	if err := s.db.SelectContext(ctx, &r.Validators, validatorQuery, id); err != nil {
		return nil, err
	}
	return r, nil
}

// GetRequests возвращает все заявки (новые первыми) вместе с валидаторами
func (s *Storage) GetRequests(ctx context.Context) ([]models.Request, error) {
	query := `
        SELECT id, title, description, user_id, state, created_at, updated_at
        FROM command_request
        ORDER BY created_at DESC, id DESC`
	requests := []models.Request{}
	if err := s.db.SelectContext(ctx, &requests, query); err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return requests, nil
	}

	ids := make([]int64, len(requests))
	for i, r := range requests {
		ids[i] = int64(r.ID)
	}

	validatorQuery := `
        SELECT id, request_id, user_id, rank, validated, decided_at
        FROM validator
        WHERE request_id = ANY($1)
        ORDER BY request_id ASC, rank ASC, id ASC`
	validators := []models.Validator{}
	if err := s.db.SelectContext(ctx, &validators, validatorQuery, pq.Array(ids)); err != nil {
		return nil, err
	}

	byRequest := make(map[int][]models.Validator, len(requests))
	for _, v := range validators {
		byRequest[v.RequestID] = append(byRequest[v.RequestID], v)
	}
	for i := range requests {
		requests[i].Validators = byRequest[requests[i].ID]
		if requests[i].Validators == nil {
			requests[i].Validators = []models.Validator{}
		}
	}
	return requests, nil
}

// UpdateRequestState меняет состояние, только если оно всё ещё равно from
func (s *Storage) UpdateRequestState(ctx context.Context, id int, from, to string) error {
	query := `
        UPDATE command_request
        SET state=$1, updated_at=NOW()
        WHERE id=$2 AND state=$3`
	res, err := s.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return err
	}
	return guardAffected(ctx, s.db, res, requestExistsQuery, id)
}

// RecordDecision сохраняет решение валидатора и новое состояние заявки в одной транзакции.
// Обе записи условные: заявка должна быть pending, а валидатор ещё не решал.
func (s *Storage) RecordDecision(ctx context.Context, v *models.Validator, state string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// строка заявки блокируется первой, конкурирующие решения ждут коммита
	stateQuery := `
        UPDATE command_request
        SET state=$1, updated_at=NOW()
        WHERE id=$2 AND state='pending'`
	res, err := tx.ExecContext(ctx, stateQuery, state, v.RequestID)
	if err != nil {
		return fmt.Errorf("update request state: %w", err)
	}
	if err := guardAffected(ctx, tx, res, requestExistsQuery, v.RequestID); err != nil {
		return err
	}

	query := `
        UPDATE validator
        SET validated=$1, decided_at=$2
        WHERE request_id=$3 AND user_id=$4 AND decided_at IS NULL`
	res, err = tx.ExecContext(ctx, query, v.Validated, v.DecidedAt, v.RequestID, v.UserID)
	if err != nil {
		return fmt.Errorf("update validator: %w", err)
	}
	if err := guardAffected(ctx, tx, res, validatorExistsQuery, v.RequestID, v.UserID); err != nil {
		return err
	}

	return tx.Commit()
}

const (
	requestExistsQuery   = `SELECT EXISTS(SELECT 1 FROM command_request WHERE id=$1)`
	validatorExistsQuery = `SELECT EXISTS(SELECT 1 FROM validator WHERE request_id=$1 AND user_id=$2)`
	quotationExistsQuery = `SELECT EXISTS(SELECT 1 FROM quotation WHERE id=$1)`
)

// guardAffected различает отсутствующую строку и проигранное условное обновление
func guardAffected(ctx context.Context, q sqlx.QueryerContext, res sql.Result, existsQuery string, args ...any) error {
	err := requireAffected(res)
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	var exists bool
	if err := sqlx.GetContext(ctx, q, &exists, existsQuery, args...); err != nil {
		return err
	}
	if exists {
		return ErrConflict
	}
	return ErrNotFound
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Provider (Поставщик)

func (s *Storage) CreateProvider(ctx context.Context, p *models.Provider) error {
	query := `
        INSERT INTO provider (name, email, phone, address)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	return s.db.QueryRowContext(ctx, query, p.Name, p.Email, p.Phone, p.Address).
		Scan(&p.ID, &p.CreatedAt)
}

func (s *Storage) GetProviders(ctx context.Context) ([]models.Provider, error) {
	query := `SELECT id, name, email, phone, address, created_at FROM provider ORDER BY name ASC, id ASC`
	providers := []models.Provider{}
	if err := s.db.SelectContext(ctx, &providers, query); err != nil {
		return nil, err
	}
	return providers, nil
}

// Quotation (Котировка)

func (s *Storage) CreateQuotation(ctx context.Context, q *models.Quotation) error {
	query := `
        INSERT INTO quotation (command_request_id, provider_id, amount, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`
	return s.db.QueryRowContext(ctx, query, q.CommandRequestID, q.ProviderID, q.Amount, q.Status).
		Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

func (s *Storage) GetQuotation(ctx context.Context, id int) (*models.Quotation, error) {
	q := &models.Quotation{}
	query := `
        SELECT id, command_request_id, provider_id, amount, status, created_at, updated_at
        FROM quotation WHERE id=$1`
	if err := s.db.GetContext(ctx, q, query, id); err != nil {
		return nil, notFound(err)
	}
	return q, nil
}

func (s *Storage) GetQuotations(ctx context.Context) ([]models.Quotation, error) {
	query := `
        SELECT id, command_request_id, provider_id, amount, status, created_at, updated_at
        FROM quotation
        ORDER BY id ASC`
	quotations := []models.Quotation{}
	if err := s.db.SelectContext(ctx, &quotations, query); err != nil {
		return nil, err
	}
	return quotations, nil
}

// UpdateQuotationStatus меняет статус, только если он всё ещё равен from
func (s *Storage) UpdateQuotationStatus(ctx context.Context, id int, from, to string) error {
	query := `
        UPDATE quotation
        SET status=$1, updated_at=NOW()
        WHERE id=$2 AND status=$3`
	res, err := s.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return err
	}
	return guardAffected(ctx, s.db, res, quotationExistsQuery, id)
}
