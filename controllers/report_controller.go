package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/regport/api-go/models"
	"github.com/regport/api-go/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ReportController struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewReportController(db *gorm.DB, logger *logrus.Logger) *ReportController {
	return &ReportController{DB: db, Logger: logger}
}

type FileRefRequest struct {
	Key      string `json:"key" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Size     int64  `json:"size" binding:"required"`
	MimeType string `json:"mimeType" binding:"required"`
	URL      string `json:"url"`
}

func (f FileRefRequest) toModel() models.FileRef {
	return models.FileRef{
		Key:      f.Key,
		Name:     f.Name,
		Size:     f.Size,
		MimeType: f.MimeType,
		URL:      f.URL,
	}
}

type CreateReportRequest struct {
	EntityID   uint           `json:"entityId" binding:"required"`
	ReportType string         `json:"reportType" binding:"required,oneof=QUARTERLY ANNUAL AD_HOC"`
	Period     string         `json:"period" binding:"required"`
	File       FileRefRequest `json:"file" binding:"required"`
}

type UpdateStatusRequest struct {
	Status              string  `json:"status" binding:"required"`
	Note                *string `json:"note"`
	ValidationNotes     *string `json:"validationNotes"`
	ValidationReportRef *string `json:"validationReportRef"`
}

type ReportDetailResponse struct {
	models.Report
	History         []models.StatusHistoryEntry `json:"history"`
	Corrections     []models.Report             `json:"corrections"`
	CorrectedReport *models.Report              `json:"correctedReport,omitempty"`
}

// CreateReport registers a new filing in DRAFT. Only entity-side members of
// the owning entity may file for it; the initial DRAFT history entry is
// written in the same transaction as the row.
func (rc *ReportController) CreateReport(c *gin.Context) {
	caller := utils.GetCaller(c)
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if caller.Role.Authority() || !caller.MemberOf(req.EntityID) {
		utils.RespondError(c, models.ErrForbidden())
		return
	}

	now := time.Now().UTC()
	report := models.Report{
		ID:              uuid.New().String(),
		EntityID:        req.EntityID,
		SubmittedByID:   caller.UserID,
		SubmittedByName: caller.Name,
		ReportType:      models.ReportType(req.ReportType),
		Period:          req.Period,
		File:            req.File.toModel(),
		Status:          models.StatusDraft,
		SubmittedAt:     now,
	}

	err := rc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&report).Error; err != nil {
			return err
		}
		entry := models.StatusHistoryEntry{
			ReportID:      report.ID,
			Status:        models.StatusDraft,
			ChangedByID:   &caller.UserID,
			ChangedByName: &caller.Name,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		rc.Logger.WithError(err).WithField("entityId", req.EntityID).Error("create report failed")
		utils.RespondError(c, err)
		return
	}

	rc.Logger.WithFields(logrus.Fields{
		"reportId": report.ID,
		"entityId": report.EntityID,
		"period":   report.Period,
	}).Info("report created")

	c.JSON(http.StatusCreated, report)
}

// loadVisibleReport fetches a report, 404 when the row does not exist at all
// and 403 when it exists but the caller may not see it. The order matters: a
// 403 on a random id would confirm the record exists.
func loadVisibleReport(db *gorm.DB, c *gin.Context, id string) (*models.Report, bool) {
	var report models.Report
	if err := db.First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, models.ErrNotFound("report"))
		} else {
			utils.RespondError(c, err)
		}
		return nil, false
	}
	if !utils.VisibleToCaller(utils.GetCaller(c), &report) {
		utils.RespondError(c, models.ErrForbidden())
		return nil, false
	}
	return &report, true
}

// SubmitReport moves a draft to SUBMITTED on behalf of the submitter or their
// entity admin.
func (rc *ReportController) SubmitReport(c *gin.Context) {
	caller := utils.GetCaller(c)
	report, ok := loadVisibleReport(rc.DB, c, c.Param("id"))
	if !ok {
		return
	}

	actor := models.TransitionActor{
		Role:            caller.Role,
		IsSubmitter:     report.SubmittedByID == caller.UserID,
		HasEntityAccess: caller.MemberOf(report.EntityID),
	}
	if !models.ActorMayTransition(report.Status, models.StatusSubmitted, actor) {
		utils.RespondError(c, models.ErrInvalidTransition(report.Status, models.StatusSubmitted))
		return
	}

	in := models.TransitionInput{
		To:            models.StatusSubmitted,
		ChangedByID:   &caller.UserID,
		ChangedByName: &caller.Name,
	}
	if err := models.TransitionReport(rc.DB, report, in); err != nil {
		utils.RespondError(c, err)
		return
	}

	rc.Logger.WithFields(logrus.Fields{
		"reportId": report.ID,
		"status":   report.Status,
	}).Info("report submitted")

	c.JSON(http.StatusOK, report)
}

// UpdateStatus is the validator/staff entry point for moving a report through
// the machine: SUBMITTED->IN_PROGRESS by the validator account, and
// IN_PROGRESS to a terminal outcome by the validator or authority staff.
func (rc *ReportController) UpdateStatus(c *gin.Context) {
	caller := utils.GetCaller(c)
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newStatus := models.ReportStatus(req.Status)
	if !newStatus.Valid() {
		utils.RespondError(c, models.ErrValidation("unknown status "+req.Status))
		return
	}

	report, ok := loadVisibleReport(rc.DB, c, c.Param("id"))
	if !ok {
		return
	}

	actor := models.TransitionActor{
		Role:            caller.Role,
		IsSubmitter:     report.SubmittedByID == caller.UserID,
		HasEntityAccess: caller.MemberOf(report.EntityID),
	}
	if !models.ActorMayTransition(report.Status, newStatus, actor) {
		utils.RespondError(c, models.ErrInvalidTransition(report.Status, newStatus))
		return
	}

	in := models.TransitionInput{
		To:                  newStatus,
		Note:                req.Note,
		ValidationNotes:     req.ValidationNotes,
		ValidationReportRef: req.ValidationReportRef,
	}
	if caller.Role != models.RoleUKNFSystem {
		in.ChangedByID = &caller.UserID
		in.ChangedByName = &caller.Name
	}

	if err := models.TransitionReport(rc.DB, report, in); err != nil {
		utils.RespondError(c, err)
		return
	}

	rc.Logger.WithFields(logrus.Fields{
		"reportId": report.ID,
		"status":   report.Status,
		"actor":    caller.Role,
	}).Info("report status updated")

	c.JSON(http.StatusOK, report)
}

// DeleteReport removes a draft before it enters validation. Anything past
// DRAFT is immutable history and can only be archived.
func (rc *ReportController) DeleteReport(c *gin.Context) {
	caller := utils.GetCaller(c)
	report, ok := loadVisibleReport(rc.DB, c, c.Param("id"))
	if !ok {
		return
	}

	if report.Status != models.StatusDraft {
		utils.RespondError(c, models.ErrPreconditionFailed("only draft reports can be deleted"))
		return
	}

	isSubmitter := report.SubmittedByID == caller.UserID && caller.MemberOf(report.EntityID)
	if !isSubmitter && !caller.Role.AuthorityStaff() {
		utils.RespondError(c, models.ErrForbidden())
		return
	}

	err := rc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("report_id = ?", report.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("report_id = ?", report.ID).Delete(&models.StatusHistoryEntry{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND status = ?", report.ID, models.StatusDraft).Delete(&models.Report{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrConflict(report.ID)
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	rc.Logger.WithField("reportId", report.ID).Info("draft report deleted")

	c.JSON(http.StatusOK, gin.H{"message": "report deleted"})
}

// ArchiveReport flips the archive flag on a non-draft report. Authority staff
// only; the record itself is never removed.
func (rc *ReportController) ArchiveReport(c *gin.Context) {
	caller := utils.GetCaller(c)
	report, ok := loadVisibleReport(rc.DB, c, c.Param("id"))
	if !ok {
		return
	}

	if !caller.Role.AuthorityStaff() {
		utils.RespondError(c, models.ErrForbidden())
		return
	}
	if report.Status == models.StatusDraft {
		utils.RespondError(c, models.ErrPreconditionFailed("draft reports are deleted, not archived"))
		return
	}

	if err := rc.DB.Model(report).Update("is_archived", true).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	report.IsArchived = true

	c.JSON(http.StatusOK, report)
}

// GetReport returns the report with its full audit trail and correction
// links: direct corrections newest first, plus the report it corrects. Linked
// records pass through the visibility predicate like any direct read, so an
// entity user never receives a colleague's sibling submission here.
func (rc *ReportController) GetReport(c *gin.Context) {
	caller := utils.GetCaller(c)
	report, ok := loadVisibleReport(rc.DB, c, c.Param("id"))
	if !ok {
		return
	}

	detail := ReportDetailResponse{Report: *report}

	if err := rc.DB.
		Where("report_id = ?", report.ID).
		Order("created_at ASC, id ASC").
		Find(&detail.History).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	var corrections []models.Report
	if err := rc.DB.
		Where("corrected_report_id = ?", report.ID).
		Order("submitted_at DESC").
		Find(&corrections).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	detail.Corrections = utils.FilterVisibleReports(caller, corrections)

	if report.CorrectedReportID != nil {
		var original models.Report
		if err := rc.DB.First(&original, "id = ?", *report.CorrectedReportID).Error; err == nil &&
			utils.VisibleToCaller(caller, &original) {
			detail.CorrectedReport = &original
		}
	}

	c.JSON(http.StatusOK, detail)
}
