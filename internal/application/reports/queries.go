package reports

import (
	"context"
	"errors"

	"coinfolio-backend/internal/application/holdings"
	"coinfolio-backend/internal/domain"
	"coinfolio-backend/internal/pkg/apperrors"
	"coinfolio-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Summary struct {
	ID          string  `json:"id"`
	ExternalRef *string `json:"external_ref,omitempty"`
	Date        string  `json:"date"`
	Status      string  `json:"status"`
	RiskLevel   string  `json:"risk_level"`
}

type NewsView struct {
	ID        uint   `json:"id"`
	Coin      string `json:"coin"`
	Sentiment string `json:"sentiment"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Source    string `json:"source"`
	Time      string `json:"time"`
}

type ChangeView struct {
	Coin           string          `json:"coin"`
	CurrentAmount  decimal.Decimal `json:"current_amount"`
	ProposedAmount decimal.Decimal `json:"proposed_amount"`
	Change         decimal.Decimal `json:"change"`
	Reason         string          `json:"reason"`
}

type Detail struct {
	Summary
	AIJudgment      string          `json:"ai_judgment"`
	ReviewRemark    *string         `json:"review_remark"`
	RelatedNews     []NewsView      `json:"related_news"`
	ProposedChanges []ChangeView    `json:"proposed_changes"`
	CurrentHoldings []holdings.View `json:"current_holdings"`
}

func (s *Service) summary(r *domain.Report) Summary {
	return Summary{
		ID:          r.ID.String(),
		ExternalRef: r.ExternalRef,
		Date:        r.GeneratedAt.In(s.loc()).Format(constants.DateTimeLayout),
		Status:      r.Status.Lower(),
		RiskLevel:   r.RiskLevel.Lower(),
	}
}

// List returns report summaries, newest first.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	var rs []domain.Report
	if err := s.DB.WithContext(ctx).Order("generated_at DESC").Find(&rs).Error; err != nil {
		return nil, apperrors.Storage("list reports", err)
	}
	out := make([]Summary, 0, len(rs))
	for i := range rs {
		out = append(out, s.summary(&rs[i]))
	}
	return out, nil
}

// Detail returns the report with its cited news, proposed changes and the
// current holdings they would act on.
func (s *Service) Detail(ctx context.Context, id uuid.UUID) (*Detail, error) {
	db := s.DB.WithContext(ctx)
	r, err := loadReport(db.Preload("NewsLinks.News"), id)
	if err != nil {
		return nil, apperrors.Storage("load report", err)
	}

	d := &Detail{
		Summary:         s.summary(r),
		AIJudgment:      r.AIJudgment,
		ReviewRemark:    r.ReviewRemark,
		RelatedNews:     make([]NewsView, 0, len(r.NewsLinks)),
		ProposedChanges: make([]ChangeView, 0, len(r.Changes)),
	}
	for _, l := range r.NewsLinks {
		if l.News == nil {
			continue
		}
		n := l.News
		d.RelatedNews = append(d.RelatedNews, NewsView{
			ID:        n.ID,
			Coin:      n.Coin,
			Sentiment: n.Sentiment.Lower(),
			Title:     n.Title,
			Summary:   n.Summary,
			Source:    n.SourceURL,
			Time:      n.PublishedAt.In(s.loc()).Format(constants.DateTimeLayout),
		})
	}
	for _, c := range r.Changes {
		d.ProposedChanges = append(d.ProposedChanges, ChangeView{
			Coin:           c.Coin,
			CurrentAmount:  c.CurrentAmount,
			ProposedAmount: c.ProposedAmount,
			Change:         c.ChangePct,
			Reason:         c.Reason,
		})
	}

	hs, err := s.Holdings.List(ctx)
	if err != nil {
		return nil, err
	}
	d.CurrentHoldings = make([]holdings.View, 0, len(hs))
	for _, h := range hs {
		d.CurrentHoldings = append(d.CurrentHoldings, holdings.NewView(h))
	}
	return d, nil
}

// Delete removes the report together with its changes and news links.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r domain.Report
		if err := tx.Select("id").Where("id = ?", id).First(&r).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("report", id)
			}
			return err
		}
		if err := tx.Where("report_id = ?", id).Delete(&domain.ReportChange{}).Error; err != nil {
			return err
		}
		if err := tx.Where("report_id = ?", id).Delete(&domain.ReportNewsLink{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Report{}).Error
	})
	if err != nil {
		return apperrors.Storage("delete report", err)
	}
	log.Info().Str("report_id", id.String()).Msg("report deleted")
	return nil
}
