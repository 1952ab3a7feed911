package news

import (
	"context"
	"errors"
	"strings"
	"time"

	"coinfolio-backend/internal/domain"
	"coinfolio-backend/internal/pkg/apperrors"
	"coinfolio-backend/internal/pkg/constants"
	"coinfolio-backend/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Input is an analysed article pushed by the news pipeline.
type Input struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Coin        string `json:"coin"`
	Sentiment   string `json:"sentiment"`
	SourceURL   string `json:"sourceUrl"`
	PublishedAt string `json:"publishedAt"`
}

// Service encapsulates news operations the report core depends on.
type Service struct {
	DB       *gorm.DB
	Location *time.Location
	Now      func() time.Time
}

func (s *Service) loc() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.Local
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Exists reports whether a news row with id is stored.
func (s *Service) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.News{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, apperrors.Storage("check news", err)
	}
	return count > 0, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*domain.News, error) {
	var n domain.News
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("news", id)
		}
		return nil, apperrors.Storage("load news", err)
	}
	return &n, nil
}

// Ingest upserts an article keyed by (title, publishedAt) and returns its id.
// The read flag of an existing row is kept.
func (s *Service) Ingest(ctx context.Context, in Input) (uint, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return 0, apperrors.Validation("title is required")
	}
	if strings.TrimSpace(in.Coin) == "" {
		return 0, apperrors.Validation("coin is required")
	}
	coin := constants.NormalizeCoin(in.Coin)
	if !constants.IsSupportedCoin(coin) {
		return 0, apperrors.Validation("unsupported coin: %s", in.Coin)
	}
	if strings.TrimSpace(in.Sentiment) == "" {
		return 0, apperrors.Validation("sentiment is required")
	}
	sentiment, err := domain.ParseSentiment(in.Sentiment)
	if err != nil {
		return 0, err
	}
	publishedAt := s.now().Truncate(time.Second)
	if strings.TrimSpace(in.PublishedAt) != "" {
		if publishedAt, err = validation.ParseDateTime("publishedAt", in.PublishedAt, s.loc()); err != nil {
			return 0, err
		}
	}

	var n domain.News
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("title = ? AND published_at = ?", title, publishedAt).First(&n).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			n = domain.News{Title: title, PublishedAt: publishedAt}
		}
		n.Summary = in.Summary
		n.Coin = coin
		n.Sentiment = sentiment
		n.SourceURL = in.SourceURL
		return tx.Save(&n).Error
	})
	if err != nil {
		return 0, apperrors.Storage("save news", err)
	}
	log.Info().Uint("news_id", n.ID).Str("coin", coin).Str("sentiment", sentiment.Lower()).Msg("news ingested")
	return n.ID, nil
}

func (s *Service) MarkRead(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Model(&domain.News{}).Where("id = ?", id).Update("is_read", true)
	if res.Error != nil {
		return apperrors.Storage("mark news read", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("news", id)
	}
	return nil
}

func (s *Service) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.News{}).Where("is_read = ?", false).Count(&count).Error; err != nil {
		return 0, apperrors.Storage("count unread news", err)
	}
	return count, nil
}
