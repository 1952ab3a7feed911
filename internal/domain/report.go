package domain

import (
	"strings"
	"time"

	"coinfolio-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ReportStatus string

const (
	StatusPending  ReportStatus = "PENDING"
	StatusApproved ReportStatus = "APPROVED"
	StatusRejected ReportStatus = "REJECTED"
)

// ParseReportStatus accepts any case. Unknown values are a validation error.
func ParseReportStatus(s string) (ReportStatus, error) {
	switch v := ReportStatus(strings.ToUpper(strings.TrimSpace(s))); v {
	case StatusPending, StatusApproved, StatusRejected:
		return v, nil
	}
	return "", apperrors.Validation("invalid status: %q", s)
}

func (s ReportStatus) Lower() string {
	return strings.ToLower(string(s))
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

func ParseRiskLevel(s string) (RiskLevel, error) {
	switch v := RiskLevel(strings.ToUpper(strings.TrimSpace(s))); v {
	case RiskLow, RiskMedium, RiskHigh:
		return v, nil
	}
	return "", apperrors.Validation("invalid risk level: %q", s)
}

func (r RiskLevel) Lower() string {
	return strings.ToLower(string(r))
}

// Report is the aggregate root. Changes and NewsLinks live and die with it.
type Report struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ExternalRef  *string        `gorm:"column:external_ref;type:varchar(32);uniqueIndex" json:"external_ref"`
	GeneratedAt  time.Time      `gorm:"column:generated_at;not null;index" json:"generated_at"`
	Status       ReportStatus   `gorm:"column:status;type:varchar(16);not null;index" json:"status"`
	AIJudgment   string         `gorm:"column:ai_judgment;type:text" json:"ai_judgment"`
	RiskLevel    RiskLevel      `gorm:"column:risk_level;type:varchar(16);not null" json:"risk_level"`
	ReviewRemark *string        `gorm:"column:review_remark;type:text" json:"review_remark"`
	Payload      datatypes.JSON `gorm:"column:payload" json:"-"`
	CreatedAt    time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at" json:"updated_at"`

	Changes   []ReportChange   `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"changes,omitempty"`
	NewsLinks []ReportNewsLink `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Report) TableName() string {
	return "report"
}

// BeforeCreate sets id if not already set (DBs without default uuid).
func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ReportChange is one proposed per-coin amount change. Position keeps ingestion order.
type ReportChange struct {
	ID             uint            `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	ReportID       uuid.UUID       `gorm:"column:report_id;type:uuid;not null;index" json:"-"`
	Position       int             `gorm:"column:position;not null" json:"-"`
	Coin           string          `gorm:"column:coin;type:varchar(16);not null" json:"coin"`
	CurrentAmount  decimal.Decimal `gorm:"column:current_amount;type:numeric(30,10);not null" json:"current_amount"`
	ProposedAmount decimal.Decimal `gorm:"column:proposed_amount;type:numeric(30,10);not null" json:"proposed_amount"`
	ChangePct      decimal.Decimal `gorm:"column:change_pct;type:numeric(10,1);not null" json:"change_pct"`
	Reason         string          `gorm:"column:reason;type:text" json:"reason"`
}

func (ReportChange) TableName() string {
	return "report_change"
}

// ReportNewsLink joins a report to a news item it cites.
type ReportNewsLink struct {
	ID       uint      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	ReportID uuid.UUID `gorm:"column:report_id;type:uuid;not null;uniqueIndex:idx_report_news" json:"-"`
	NewsID   uint      `gorm:"column:news_id;not null;uniqueIndex:idx_report_news" json:"news_id"`
	News     *News     `gorm:"foreignKey:NewsID;constraint:OnDelete:CASCADE" json:"news,omitempty"`
}

func (ReportNewsLink) TableName() string {
	return "report_news"
}
