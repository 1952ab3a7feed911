package reports

import (
	"context"
	"encoding/json"
	"strings"

	"coinfolio-backend/internal/application/valuation"
	"coinfolio-backend/internal/domain"
	"coinfolio-backend/internal/pkg/apperrors"
	"coinfolio-backend/internal/pkg/constants"
	"coinfolio-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Header is the report part of an ingestion request.
type Header struct {
	ExternalRef string `json:"id"`
	GeneratedAt string `json:"generated_at"`
	Status      string `json:"status"`
	AIJudgment  string `json:"ai_judgment"`
	RiskLevel   string `json:"risk_level"`
}

type ChangeInput struct {
	Coin           string          `json:"coin"`
	CurrentAmount  decimal.Decimal `json:"current_amount"`
	ProposedAmount decimal.Decimal `json:"proposed_amount"`
	Reason         string          `json:"reason"`
}

type IngestRequest struct {
	Report  Header        `json:"report"`
	Changes []ChangeInput `json:"report_changes"`
	NewsIDs []uint        `json:"report_news"`
}

// BatchItem is the outcome of one request in a batch. ReportID is nil on failure.
type BatchItem struct {
	ReportID *uuid.UUID `json:"report_id"`
	Error    string     `json:"error,omitempty"`
}

type BatchResult struct {
	Count   int         `json:"count"`
	Results []BatchItem `json:"results"`
}

// Ingest validates req and then writes the report, its changes and its news
// links in one transaction. Nothing is written when validation fails.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (uuid.UUID, error) {
	report, changes, err := s.validate(ctx, req)
	if err != nil {
		return uuid.Nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if report.ExternalRef != nil {
			var n int64
			if err := tx.Model(&domain.Report{}).Where("external_ref = ?", *report.ExternalRef).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return apperrors.Validation("report %s already exists", *report.ExternalRef)
			}
		}
		if err := tx.Create(report).Error; err != nil {
			return err
		}
		for i := range changes {
			changes[i].ReportID = report.ID
		}
		if len(changes) > 0 {
			if err := tx.Create(&changes).Error; err != nil {
				return err
			}
		}
		if len(req.NewsIDs) > 0 {
			links := make([]domain.ReportNewsLink, 0, len(req.NewsIDs))
			seen := make(map[uint]bool, len(req.NewsIDs))
			for _, id := range req.NewsIDs {
				if seen[id] {
					continue
				}
				seen[id] = true
				links = append(links, domain.ReportNewsLink{ReportID: report.ID, NewsID: id})
			}
			if err := tx.Create(&links).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, apperrors.Storage("save report", err)
	}

	log.Info().
		Str("report_id", report.ID.String()).
		Int("changes", len(changes)).
		Int("news", len(req.NewsIDs)).
		Str("status", string(report.Status)).
		Msg("report ingested")
	return report.ID, nil
}

// IngestBatch ingests every request on its own. A failed request does not
// affect the others.
func (s *Service) IngestBatch(ctx context.Context, reqs []IngestRequest) BatchResult {
	out := BatchResult{Count: len(reqs), Results: make([]BatchItem, len(reqs))}
	for i, req := range reqs {
		id, err := s.Ingest(ctx, req)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("batch report rejected")
			out.Results[i] = BatchItem{Error: apperrors.PublicMessage(err)}
			continue
		}
		out.Results[i] = BatchItem{ReportID: &id}
	}
	return out
}

func (s *Service) validate(ctx context.Context, req IngestRequest) (*domain.Report, []domain.ReportChange, error) {
	for _, id := range req.NewsIDs {
		ok, err := s.News.Exists(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, apperrors.Validation("news id not found: %d", id)
		}
	}

	for _, c := range req.Changes {
		if c.CurrentAmount.IsZero() {
			return nil, nil, apperrors.Validation("current amount must not be zero for coin %s", c.Coin)
		}
	}

	changes := make([]domain.ReportChange, 0, len(req.Changes))
	for i, c := range req.Changes {
		coin := constants.NormalizeCoin(c.Coin)
		if coin == "" {
			return nil, nil, apperrors.Validation("coin is required for change %d", i+1)
		}
		if !c.CurrentAmount.IsPositive() {
			return nil, nil, apperrors.Validation("current amount must be positive for coin %s", coin)
		}
		if !c.ProposedAmount.IsPositive() {
			return nil, nil, apperrors.Validation("proposed amount must be positive for coin %s", coin)
		}
		changes = append(changes, domain.ReportChange{
			Position:       i,
			Coin:           coin,
			CurrentAmount:  c.CurrentAmount,
			ProposedAmount: c.ProposedAmount,
			ChangePct:      valuation.ChangePct(c.CurrentAmount, c.ProposedAmount),
			Reason:         c.Reason,
		})
	}

	h := req.Report
	generatedAt, err := validation.ParseDateTime("generated_at", h.GeneratedAt, s.loc())
	if err != nil {
		return nil, nil, err
	}
	status, err := domain.ParseReportStatus(h.Status)
	if err != nil {
		return nil, nil, err
	}
	risk, err := domain.ParseRiskLevel(h.RiskLevel)
	if err != nil {
		return nil, nil, err
	}

	report := &domain.Report{
		GeneratedAt: generatedAt,
		Status:      status,
		AIJudgment:  h.AIJudgment,
		RiskLevel:   risk,
	}
	if ref := strings.TrimSpace(h.ExternalRef); ref != "" {
		if !validation.IsValidExternalRef(ref) {
			return nil, nil, apperrors.Validation("invalid report id %q, expected R followed by digits", ref)
		}
		report.ExternalRef = &ref
	}
	if raw, err := json.Marshal(h); err == nil {
		report.Payload = datatypes.JSON(raw)
	}
	return report, changes, nil
}
