package metrics

import (
	"context"

	"coinfolio-backend/internal/domain"
	"coinfolio-backend/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Dashboard is the header counters of the review UI.
type Dashboard struct {
	UnreadNews      int64           `json:"unread_news"`
	PendingReports  int64           `json:"pending_reports"`
	TotalAssetValue decimal.Decimal `json:"total_asset_value"`
}

type Service struct {
	DB *gorm.DB
}

func (s *Service) Load(ctx context.Context) (*Dashboard, error) {
	db := s.DB.WithContext(ctx)
	var d Dashboard
	if err := db.Model(&domain.News{}).Where("is_read = ?", false).Count(&d.UnreadNews).Error; err != nil {
		return nil, apperrors.Storage("count unread news", err)
	}
	if err := db.Model(&domain.Report{}).Where("status = ?", domain.StatusPending).Count(&d.PendingReports).Error; err != nil {
		return nil, apperrors.Storage("count pending reports", err)
	}
	var hs []domain.Holding
	if err := db.Select("value_usd").Find(&hs).Error; err != nil {
		return nil, apperrors.Storage("sum holdings", err)
	}
	d.TotalAssetValue = domain.TotalValue(hs)
	return &d, nil
}
