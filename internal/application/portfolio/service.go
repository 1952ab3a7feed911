package portfolio

import (
	"context"

	"coinfolio-backend/internal/application/holdings"
	"coinfolio-backend/internal/domain"
	"coinfolio-backend/internal/pkg/apperrors"
	"coinfolio-backend/internal/pkg/constants"

	"gorm.io/gorm"
)

// HistoryPoint is one day of weights: {"date": "05-01", "BTC": 66.67, ...}.
type HistoryPoint map[string]interface{}

type View struct {
	Holdings []holdings.View `json:"holdings"`
	History  []HistoryPoint  `json:"history"`
}

type Service struct {
	DB       *gorm.DB
	Holdings *holdings.Store
}

// GetPortfolio returns holdings by coin and the snapshot history oldest first.
func (s *Service) GetPortfolio(ctx context.Context) (*View, error) {
	hs, err := s.Holdings.List(ctx)
	if err != nil {
		return nil, err
	}
	var snaps []domain.HistorySnapshot
	if err := s.DB.WithContext(ctx).Order("snap_date ASC, coin ASC").Find(&snaps).Error; err != nil {
		return nil, apperrors.Storage("load history", err)
	}

	v := &View{Holdings: make([]holdings.View, 0, len(hs)), History: make([]HistoryPoint, 0)}
	for _, h := range hs {
		v.Holdings = append(v.Holdings, holdings.NewView(h))
	}
	byDay := make(map[domain.Day]HistoryPoint)
	for _, snap := range snaps {
		point, ok := byDay[snap.SnapDate]
		if !ok {
			point = HistoryPoint{"date": historyLabel(snap.SnapDate)}
			byDay[snap.SnapDate] = point
			v.History = append(v.History, point)
		}
		point[snap.Coin] = snap.Percentage
	}
	return v, nil
}

func historyLabel(d domain.Day) string {
	t, err := d.Time()
	if err != nil {
		return string(d)
	}
	return t.Format(constants.HistoryLabelLayout)
}
