package models

import "time"

// Comment is an append-only discussion entry on a report. UserName and
// UserRole are denormalized at write time: the audit record keeps showing who
// the author was when they wrote it, even after renames or promotions.
type Comment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ReportID  string    `gorm:"type:uuid;not null;index" json:"reportId"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	UserName  string    `gorm:"size:120;not null" json:"userName"`
	UserRole  Role      `gorm:"size:32;not null" json:"userRole"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (Comment) TableName() string {
	return "report_comments"
}
