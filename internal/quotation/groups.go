// Package quotation группирует котировки поставщиков по заявкам
// и выводит сводный статус группы.
package quotation

import "creapp/models"

var transitions = map[string][]string{
	models.QuotationPending:   {models.QuotationSubmitted, models.QuotationApproved, models.QuotationRejected},
	models.QuotationSubmitted: {models.QuotationApproved, models.QuotationRejected},
}

// ValidStatus проверяет, что статус котировки известен.
func ValidStatus(status string) bool {
	switch status {
	case models.QuotationPending, models.QuotationSubmitted, models.QuotationApproved, models.QuotationRejected:
		return true
	}
	return false
}

// CanTransition сообщает, допустим ли переход статуса котировки.
// APPROVED и REJECTED конечны.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func undecided(status string) bool {
	return status == models.QuotationPending || status == models.QuotationSubmitted
}

func decided(status string) bool {
	return status == models.QuotationApproved || status == models.QuotationRejected
}

// ComputeGroupStatus выводит статус группы из статусов котировок.
// Порядок и количество котировок на результат не влияют.
func ComputeGroupStatus(quotations []models.Quotation) string {
	if len(quotations) == 0 {
		return models.GroupNotProcessed
	}

	allUndecided, allDecided := true, true
	for _, q := range quotations {
		if !undecided(q.Status) {
			allUndecided = false
		}
		if !decided(q.Status) {
			allDecided = false
		}
	}

	switch {
	case allUndecided:
		return models.GroupNotProcessed
	case allDecided:
		return models.GroupProcessed
	default:
		return models.GroupInProgress
	}
}

// GroupByCommandRequest собирает по одной группе на каждую заявку, у которой
// есть хотя бы одна котировка. Порядок групп совпадает с порядком requests.
// Поставщики, которых нет в providers, молча пропускаются.
func GroupByCommandRequest(requests []models.Request, quotations []models.Quotation, providers []models.Provider) []models.QuotationGroup {
	byID := make(map[int]models.Provider, len(providers))
	for _, p := range providers {
		byID[p.ID] = p
	}

	byRequest := make(map[int][]models.Quotation)
	for _, q := range quotations {
		byRequest[q.CommandRequestID] = append(byRequest[q.CommandRequestID], q)
	}

	groups := []models.QuotationGroup{}
	for _, r := range requests {
		matched := byRequest[r.ID]
		if len(matched) == 0 {
			continue
		}

		groups = append(groups, models.QuotationGroup{
			CommandRequest: r,
			Quotations:     matched,
			Providers:      resolveProviders(matched, byID),
			Status:         ComputeGroupStatus(matched),
			CreatedAt:      r.CreatedAt,
		})
	}
	return groups
}

func resolveProviders(quotations []models.Quotation, byID map[int]models.Provider) []models.Provider {
	seen := make(map[int]bool, len(quotations))
	providers := []models.Provider{}
	for _, q := range quotations {
		if seen[q.ProviderID] {
			continue
		}
		seen[q.ProviderID] = true
		if p, ok := byID[q.ProviderID]; ok {
			providers = append(providers, p)
		}
	}
	return providers
}
