// Package reports owns the rebalancing report aggregate: ingestion, the
// PENDING/APPROVED/REJECTED review workflow and the read side.
package reports

import (
	"context"
	"errors"
	"time"

	"coinfolio-backend/internal/application/holdings"
	"coinfolio-backend/internal/domain"
	"coinfolio-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NewsChecker is the read-only view of the news store ingestion validates against.
type NewsChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

type Service struct {
	DB       *gorm.DB
	Holdings *holdings.Store
	News     NewsChecker
	// ReferencePrices values holdings on approve and undo.
	ReferencePrices map[string]decimal.Decimal
	Location        *time.Location
	Now             func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) loc() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.Local
}

// loadReport reads a report with its changes in ingestion order.
func loadReport(tx *gorm.DB, id uuid.UUID) (*domain.Report, error) {
	var r domain.Report
	err := tx.Preload("Changes", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("id = ?", id).First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("report", id)
		}
		return nil, err
	}
	return &r, nil
}

// ParseID parses a report id from a path parameter.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid report id: %q", s)
	}
	return id, nil
}
