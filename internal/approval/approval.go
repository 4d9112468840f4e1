// Package approval классифицирует заявки относительно пользователя
// в многоранговой цепочке согласования.
package approval

import (
	"errors"
	"time"

	"creapp/models"
)

var (
	// ErrRequestClosed: заявка уже не pending.
	ErrRequestClosed = errors.New("request is not pending")
	// ErrNotValidator: пользователя нет в цепочке заявки.
	ErrNotValidator = errors.New("user is not a validator of this request")
	// ErrAlreadyDecided: пользователь уже одобрил заявку.
	ErrAlreadyDecided = errors.New("user has already validated this request")
	// ErrNotYourTurn: валидатор ранга rank-1 ещё не одобрил.
	ErrNotYourTurn = errors.New("previous rank has not validated yet")
)

// FindValidator возвращает первую запись валидатора пользователя.
func FindValidator(r models.Request, userID int) (models.Validator, bool) {
	for _, v := range r.Validators {
		if v.UserID == userID {
			return v, true
		}
	}
	return models.Validator{}, false
}

// validatorAtRank: при дублях ранга побеждает первое совпадение
func validatorAtRank(r models.Request, rank int) (models.Validator, bool) {
	for _, v := range r.Validators {
		if v.Rank == rank {
			return v, true
		}
	}
	return models.Validator{}, false
}

// predecessorValidated сообщает, одобрил ли заявку валидатор с рангом rank-1.
func predecessorValidated(r models.Request, rank int) bool {
	prev, ok := validatorAtRank(r, rank-1)
	return ok && prev.Validated
}

// ApprobatorRequests возвращает заявки, которые пользователь должен видеть
// как согласующий: свои текущие, а также завершённые в его истории.
// Первый ранг видит заявку в любом состоянии, кроме cancel.
func ApprobatorRequests(requests []models.Request, userID *int) []models.Request {
	result := []models.Request{}
	if userID == nil {
		return result
	}
	for _, r := range requests {
		if isApprobatorRequest(r, *userID) {
			result = append(result, r)
		}
	}
	return result
}

func isApprobatorRequest(r models.Request, userID int) bool {
	own, ok := FindValidator(r, userID)
	if !ok {
		return false
	}
	if r.State == models.RequestCancel {
		return false
	}
	if own.Rank == 1 {
		return true
	}
	if r.State == models.RequestValidated || r.State == models.RequestRejected {
		return true
	}
	// Отказ предшественника здесь не отличается от "ещё не решил"
	return predecessorValidated(r, own.Rank)
}

// PendingForUser возвращает заявки в состоянии pending, которые пользователь
// ещё не одобрил.
func PendingForUser(requests []models.Request, userID *int) []models.Request {
	result := []models.Request{}
	if userID == nil {
		return result
	}
	for _, r := range requests {
		if r.State != models.RequestPending {
			continue
		}
		if own, ok := FindValidator(r, *userID); ok && !own.Validated {
			result = append(result, r)
		}
	}
	return result
}

// DecidedByUser возвращает заявки, которые пользователь уже одобрил.
func DecidedByUser(requests []models.Request, userID *int) []models.Request {
	result := []models.Request{}
	if userID == nil {
		return result
	}
	for _, r := range requests {
		if own, ok := FindValidator(r, *userID); ok && own.Validated {
			result = append(result, r)
		}
	}
	return result
}

// CanAct сообщает, может ли пользователь принять решение по заявке прямо сейчас.
func CanAct(r models.Request, userID int) bool {
	return checkTurn(r, userID) == nil
}

func checkTurn(r models.Request, userID int) error {
	if r.State != models.RequestPending {
		return ErrRequestClosed
	}
	own, ok := FindValidator(r, userID)
	if !ok {
		return ErrNotValidator
	}
	if own.Validated {
		return ErrAlreadyDecided
	}
	if own.Rank != 1 && !predecessorValidated(r, own.Rank) {
		return ErrNotYourTurn
	}
	return nil
}

// Decide применяет решение пользователя и возвращает обновлённую копию заявки.
// Отказ любого ранга переводит заявку в rejected; одобрение последнего ранга
// (или всех валидаторов) переводит её в validated.
func Decide(r models.Request, userID int, approve bool, now time.Time) (models.Request, error) {
	if err := checkTurn(r, userID); err != nil {
		return r, err
	}

	out := r
	out.Validators = make([]models.Validator, len(r.Validators))
	copy(out.Validators, r.Validators)

	var ownRank int
	for i := range out.Validators {
		if out.Validators[i].UserID == userID {
			out.Validators[i].Validated = approve
			out.Validators[i].DecidedAt = &now
			ownRank = out.Validators[i].Rank
			break
		}
	}

	if !approve {
		out.State = models.RequestRejected
		return out, nil
	}

	maxRank := 0
	for _, v := range out.Validators {
		if v.Rank > maxRank {
			maxRank = v.Rank
		}
	}

	if ownRank == maxRank || allValidated(out.Validators) {
		out.State = models.RequestValidated
	}
	return out, nil
}

func allValidated(validators []models.Validator) bool {
	for _, v := range validators {
		if !v.Validated {
			return false
		}
	}
	return true
}
