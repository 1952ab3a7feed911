package reports

import (
	"context"
	"strings"

	"coinfolio-backend/internal/application/valuation"
	"coinfolio-backend/internal/domain"
	"coinfolio-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Approve sets the report APPROVED and moves every matching holding to the
// proposed amount. Approving an approved report applies the same absolute
// amounts again.
func (s *Service) Approve(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, "approve", func(r *domain.Report) (map[string]decimal.Decimal, error) {
		amounts := make(map[string]decimal.Decimal, len(r.Changes))
		for _, c := range r.Changes {
			amounts[c.Coin] = c.ProposedAmount
		}
		r.Status = domain.StatusApproved
		return amounts, nil
	})
}

// Undo returns an APPROVED report to PENDING and restores every matching
// holding to the amount recorded when the report was ingested.
func (s *Service) Undo(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, "undo", func(r *domain.Report) (map[string]decimal.Decimal, error) {
		if r.Status != domain.StatusApproved {
			return nil, apperrors.InvalidState("only approved reports can be undone, report %s is %s", r.ID, r.Status.Lower())
		}
		amounts := make(map[string]decimal.Decimal, len(r.Changes))
		for _, c := range r.Changes {
			amounts[c.Coin] = c.CurrentAmount
		}
		r.Status = domain.StatusPending
		return amounts, nil
	})
}

// Reject sets the report REJECTED with reason as the review remark. Holdings
// are not touched.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperrors.Validation("rejection reason is required")
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := loadReport(tx, id)
		if err != nil {
			return err
		}
		return tx.Model(&domain.Report{}).Where("id = ?", r.ID).Updates(map[string]interface{}{
			"status":        domain.StatusRejected,
			"review_remark": reason,
			"updated_at":    s.now(),
		}).Error
	})
	if err != nil {
		return apperrors.Storage("reject report", err)
	}
	log.Info().Str("report_id", id.String()).Str("reason", reason).Msg("report rejected")
	return nil
}

// transition runs one approve or undo inside the holdings transaction so the
// report row and every holding it touches commit together.
func (s *Service) transition(ctx context.Context, id uuid.UUID, action string, plan func(r *domain.Report) (map[string]decimal.Decimal, error)) error {
	var touched []string
	err := s.Holdings.Mutate(ctx, func(tx *gorm.DB, held []domain.Holding) ([]domain.Holding, error) {
		r, err := loadReport(tx, id)
		if err != nil {
			return nil, err
		}
		amounts, err := plan(r)
		if err != nil {
			return nil, err
		}
		if err := tx.Model(&domain.Report{}).Where("id = ?", r.ID).Updates(map[string]interface{}{
			"status":     r.Status,
			"updated_at": s.now(),
		}).Error; err != nil {
			return nil, err
		}
		if len(amounts) == 0 {
			return nil, nil
		}
		var out []domain.Holding
		out, touched = valuation.ApplyAmounts(held, amounts, s.ReferencePrices, s.now())
		return out, nil
	})
	if err != nil {
		return err
	}
	log.Info().
		Str("report_id", id.String()).
		Str("action", action).
		Strs("coins", touched).
		Msg("report transition applied")
	return nil
}
