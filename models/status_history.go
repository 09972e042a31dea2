package models

import "time"

// StatusHistoryEntry is the append-only audit trail of a report. Rows are
// created alongside the status change they record and never updated or
// deleted; ordering by CreatedAt reconstructs the full transition path.
// ChangedByName is a point-in-time snapshot so the trail does not rewrite
// itself when a user is renamed.
type StatusHistoryEntry struct {
	ID            uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	ReportID      string       `gorm:"type:uuid;not null;index" json:"reportId"`
	Status        ReportStatus `gorm:"size:24;not null" json:"status"`
	Note          *string      `gorm:"type:text" json:"note"`
	ChangedByID   *uint        `gorm:"index" json:"changedById"`
	ChangedByName *string      `gorm:"size:120" json:"changedByName"`
	CreatedAt     time.Time    `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (StatusHistoryEntry) TableName() string {
	return "report_status_history"
}
