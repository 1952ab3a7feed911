package domain

import (
	"strings"
	"time"

	"coinfolio-backend/internal/pkg/apperrors"
)

// Sentiment is stored upper-case and rendered lower-case.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
)

// ParseSentiment accepts any case. Unknown values are a validation error.
func ParseSentiment(s string) (Sentiment, error) {
	switch v := Sentiment(strings.ToUpper(strings.TrimSpace(s))); v {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return v, nil
	}
	return "", apperrors.Validation("invalid sentiment: %q", s)
}

func (s Sentiment) Lower() string {
	return strings.ToLower(string(s))
}

// News is an analysed article a report can cite.
type News struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"column:title;type:varchar(512);not null;index:idx_news_title_published" json:"title"`
	Summary     string    `gorm:"column:summary;type:text" json:"summary"`
	Coin        string    `gorm:"column:coin;type:varchar(16);index" json:"coin"`
	Sentiment   Sentiment `gorm:"column:sentiment;type:varchar(16)" json:"sentiment"`
	SourceURL   string    `gorm:"column:source_url" json:"source_url"`
	PublishedAt time.Time `gorm:"column:published_at;index:idx_news_title_published" json:"published_at"`
	Read        bool      `gorm:"column:is_read;not null;default:false" json:"read"`
}

func (News) TableName() string {
	return "news"
}
