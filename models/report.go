package models

import (
	"time"

	"gorm.io/gorm"
)

type ReportStatus string

const (
	StatusDraft      ReportStatus = "DRAFT"
	StatusSubmitted  ReportStatus = "SUBMITTED"
	StatusInProgress ReportStatus = "IN_PROGRESS"
	StatusSuccess    ReportStatus = "SUCCESS"
	StatusRuleError  ReportStatus = "RULE_ERROR"
	StatusSystemErr  ReportStatus = "SYSTEM_ERROR"
	StatusTimeout    ReportStatus = "TIMEOUT_ERROR"
	StatusRejected   ReportStatus = "REJECTED_BY_UKNF"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusInProgress,
		StatusSuccess, StatusRuleError, StatusSystemErr, StatusTimeout, StatusRejected:
		return true
	}
	return false
}

// Terminal statuses end the validation workflow for a record. The record itself
// stays readable and may still be corrected or archived.
func (s ReportStatus) Terminal() bool {
	switch s {
	case StatusSuccess, StatusRuleError, StatusSystemErr, StatusTimeout, StatusRejected:
		return true
	}
	return false
}

type ReportType string

const (
	TypeQuarterly ReportType = "QUARTERLY"
	TypeAnnual    ReportType = "ANNUAL"
	TypeAdHoc     ReportType = "AD_HOC"
)

func (t ReportType) Valid() bool {
	switch t {
	case TypeQuarterly, TypeAnnual, TypeAdHoc:
		return true
	}
	return false
}

type Role string

const (
	RoleUKNFAdmin    Role = "UKNF_ADMIN"
	RoleUKNFEmployee Role = "UKNF_EMPLOYEE"
	RoleUKNFSystem   Role = "UKNF_SYSTEM"
	RoleEntityAdmin  Role = "ENTITY_ADMIN"
	RoleEntityUser   Role = "ENTITY_USER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUKNFAdmin, RoleUKNFEmployee, RoleUKNFSystem, RoleEntityAdmin, RoleEntityUser:
		return true
	}
	return false
}

// Authority reports whether the role belongs to the supervisory side and is
// therefore unrestricted by entity membership.
func (r Role) Authority() bool {
	return r == RoleUKNFAdmin || r == RoleUKNFEmployee || r == RoleUKNFSystem
}

// AuthorityStaff excludes the system account: staff may force validation
// outcomes and delete drafts, the system account only reports validator results.
func (r Role) AuthorityStaff() bool {
	return r == RoleUKNFAdmin || r == RoleUKNFEmployee
}

// FileRef points at the stored report artifact. The engine never opens it.
type FileRef struct {
	Key      string `gorm:"size:255" json:"key"`
	Name     string `gorm:"size:255" json:"name"`
	Size     int64  `json:"size"`
	MimeType string `gorm:"size:128" json:"mimeType"`
	URL      string `gorm:"size:512" json:"url"`
}

type Report struct {
	ID                  string       `gorm:"primaryKey;type:uuid" json:"id"`
	EntityID            uint         `gorm:"not null;index" json:"entityId"`
	SubmittedByID       uint         `gorm:"not null;index" json:"submittedById"`
	SubmittedByName     string       `gorm:"size:120" json:"submittedByName"`
	ReportType          ReportType   `gorm:"size:16;not null" json:"reportType"`
	Period              string       `gorm:"size:64;not null" json:"period"`
	File                FileRef      `gorm:"embedded;embeddedPrefix:file_" json:"file"`
	Status              ReportStatus `gorm:"size:24;not null;default:'DRAFT';index" json:"status"`
	IsCorrection        bool         `gorm:"not null;default:false" json:"isCorrection"`
	CorrectedReportID   *string      `gorm:"type:uuid;index" json:"correctedReportId"`
	IsArchived          bool         `gorm:"not null;default:false" json:"isArchived"`
	SubmittedAt         time.Time    `gorm:"index" json:"submittedAt"`
	ValidatedAt         *time.Time   `json:"validatedAt"`
	ValidationNotes     *string      `gorm:"type:text" json:"validationNotes"`
	ValidationReportRef *string      `gorm:"size:512" json:"validationReportRef"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}

// CanTransition is the edge set of the lifecycle graph. Terminal statuses have
// no outgoing edges: corrections are new records, never re-validations.
func CanTransition(from, to ReportStatus) bool {
	switch from {
	case StatusDraft:
		return to == StatusSubmitted
	case StatusSubmitted:
		return to == StatusInProgress
	case StatusInProgress:
		return to.Terminal()
	}
	return false
}

// TransitionActor carries what the permission rules need to know about the
// caller relative to one report. Computed by the caller so the rules stay free
// of storage concerns.
type TransitionActor struct {
	Role            Role
	IsSubmitter     bool
	HasEntityAccess bool
}

// ActorMayTransition enforces who may trigger which edge: submitting is for the
// submitter or their entity admin, picking a submission up is for the validator
// account only, and validation outcomes come from the validator or authority
// staff.
func ActorMayTransition(from, to ReportStatus, a TransitionActor) bool {
	if !CanTransition(from, to) {
		return false
	}
	switch {
	case from == StatusDraft && to == StatusSubmitted:
		if a.IsSubmitter && a.HasEntityAccess {
			return true
		}
		return a.Role == RoleEntityAdmin && a.HasEntityAccess
	case from == StatusSubmitted && to == StatusInProgress:
		return a.Role == RoleUKNFSystem
	default:
		return a.Role == RoleUKNFSystem || a.Role.AuthorityStaff()
	}
}

// TransitionInput is one status change plus the audit fields recorded with it.
// A nil ChangedByID marks an automated actor.
type TransitionInput struct {
	To                  ReportStatus
	Note                *string
	ValidationNotes     *string
	ValidationReportRef *string
	ChangedByID         *uint
	ChangedByName       *string
}

// TransitionReport applies one lifecycle edge as a single transaction: the
// status update and the history append commit together or not at all. The
// UPDATE is predicated on the status the caller loaded, so a concurrent
// transition that won the race surfaces as Conflict instead of being
// overwritten.
func TransitionReport(db *gorm.DB, r *Report, in TransitionInput) error {
	if !in.To.Valid() {
		return ErrValidation("unknown status " + string(in.To))
	}
	if !CanTransition(r.Status, in.To) {
		return ErrInvalidTransition(r.Status, in.To)
	}

	expected := r.Status
	now := time.Now().UTC()

	updates := map[string]interface{}{
		"status":     in.To,
		"updated_at": now,
	}
	if in.To.Terminal() {
		updates["validated_at"] = now
		if in.ValidationNotes != nil {
			updates["validation_notes"] = *in.ValidationNotes
		}
		if in.ValidationReportRef != nil {
			updates["validation_report_ref"] = *in.ValidationReportRef
		}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Report{}).
			Where("id = ? AND status = ?", r.ID, expected).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict(r.ID)
		}
		entry := StatusHistoryEntry{
			ReportID:      r.ID,
			Status:        in.To,
			Note:          in.Note,
			ChangedByID:   in.ChangedByID,
			ChangedByName: in.ChangedByName,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return err
	}

	r.Status = in.To
	r.UpdatedAt = now
	if in.To.Terminal() {
		r.ValidatedAt = &now
		if in.ValidationNotes != nil {
			r.ValidationNotes = in.ValidationNotes
		}
		if in.ValidationReportRef != nil {
			r.ValidationReportRef = in.ValidationReportRef
		}
	}
	return nil
}
