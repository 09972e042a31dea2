package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CalendarEntry struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Period      string     `gorm:"size:64;not null;index" json:"period"`
	ReportType  ReportType `gorm:"size:16;not null" json:"reportType"`
	DueDate     time.Time  `gorm:"not null;index" json:"dueDate"`
	Description string     `gorm:"type:text" json:"description"`
	IsActive    bool       `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (CalendarEntry) TableName() string {
	return "reporting_calendar"
}

type DeadlineState string

const (
	DeadlineUpcoming DeadlineState = "UPCOMING"
	DeadlineUrgent   DeadlineState = "URGENT"
	DeadlineOverdue  DeadlineState = "OVERDUE"
)

const urgentWindow = 30 * 24 * time.Hour

// DeadlineStateAt classifies the entry relative to now; the state is derived
// on read, never stored.
func (e CalendarEntry) DeadlineStateAt(now time.Time) DeadlineState {
	until := e.DueDate.Sub(now)
	switch {
	case until < 0:
		return DeadlineOverdue
	case until <= urgentWindow:
		return DeadlineUrgent
	}
	return DeadlineUpcoming
}

// CompletionRate is submitted/eligible as a percentage with two decimal
// places. Zero eligible entities yields "0.00" rather than a division error.
func CompletionRate(nonDraftCount, activeEntityCount int64) string {
	if activeEntityCount <= 0 {
		return "0.00"
	}
	rate := decimal.NewFromInt(nonDraftCount).
		Div(decimal.NewFromInt(activeEntityCount)).
		Mul(decimal.NewFromInt(100))
	return rate.Round(2).StringFixed(2)
}

// NonDraftReportCount is the completion-rate numerator: every submission for
// the period and type that has left DRAFT, corrections included.
func NonDraftReportCount(db *gorm.DB, period string, reportType ReportType) (int64, error) {
	var count int64
	err := db.Model(&Report{}).
		Where("period = ? AND report_type = ? AND status <> ?", period, reportType, StatusDraft).
		Count(&count).Error
	return count, err
}
