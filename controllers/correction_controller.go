package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/regport/api-go/models"
	"github.com/regport/api-go/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Correction chains are a forest of singly linked lists: each correction
// points at exactly one earlier report for the same entity, type and period,
// and the original is never mutated. Depth is unbounded, so traversals bound
// their hop count.
const maxChainHops = 50

type SubmitCorrectionRequest struct {
	File FileRefRequest `json:"file" binding:"required"`
}

// SubmitCorrection files a new DRAFT report superseding the original. The
// original keeps its validated status untouched; the link is recorded on the
// new row and in its opening history entry.
func (rc *ReportController) SubmitCorrection(c *gin.Context) {
	caller := utils.GetCaller(c)
	var req SubmitCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	original, ok := loadVisibleReport(rc.DB, c, c.Param("id"))
	if !ok {
		return
	}

	if caller.Role.Authority() || !caller.MemberOf(original.EntityID) {
		utils.RespondError(c, models.ErrForbidden())
		return
	}
	if original.Status == models.StatusDraft {
		utils.RespondError(c, models.ErrPreconditionFailed("a draft report cannot be corrected, edit and submit it instead"))
		return
	}
	if original.IsArchived {
		utils.RespondError(c, models.ErrPreconditionFailed("an archived report cannot be corrected"))
		return
	}

	now := time.Now().UTC()
	correction := models.Report{
		ID:                uuid.New().String(),
		EntityID:          original.EntityID,
		SubmittedByID:     caller.UserID,
		SubmittedByName:   caller.Name,
		ReportType:        original.ReportType,
		Period:            original.Period,
		File:              req.File.toModel(),
		Status:            models.StatusDraft,
		IsCorrection:      true,
		CorrectedReportID: &original.ID,
		SubmittedAt:       now,
	}

	note := fmt.Sprintf("correction of report %s", original.ID)
	err := rc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&correction).Error; err != nil {
			return err
		}
		entry := models.StatusHistoryEntry{
			ReportID:      correction.ID,
			Status:        models.StatusDraft,
			Note:          &note,
			ChangedByID:   &caller.UserID,
			ChangedByName: &caller.Name,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		rc.Logger.WithError(err).WithField("originalId", original.ID).Error("submit correction failed")
		utils.RespondError(c, err)
		return
	}

	rc.Logger.WithFields(logrus.Fields{
		"reportId":   correction.ID,
		"originalId": original.ID,
		"period":     correction.Period,
	}).Info("correction filed")

	c.JSON(http.StatusCreated, correction)
}

// ChainNode carries the full metadata only when the caller may see that
// report; links to reports outside the caller's visibility stay bare ids.
type ChainNode struct {
	ID          string              `json:"id"`
	Status      models.ReportStatus `json:"status,omitempty"`
	IsArchived  *bool               `json:"isArchived,omitempty"`
	SubmittedAt *time.Time          `json:"submittedAt,omitempty"`
}

type CorrectionChainResponse struct {
	ReportID  string      `json:"reportId"`
	Ancestors []ChainNode `json:"ancestors"`
	Truncated bool        `json:"truncated"`
}

// NewChainNode reduces a chain ancestor to what the caller is entitled to see.
func NewChainNode(caller *utils.Caller, r *models.Report) ChainNode {
	if !utils.VisibleToCaller(caller, r) {
		return ChainNode{ID: r.ID}
	}
	return ChainNode{
		ID:          r.ID,
		Status:      r.Status,
		IsArchived:  &r.IsArchived,
		SubmittedAt: &r.SubmittedAt,
	}
}

// GetCorrectionChain walks the chain of corrected reports upward from the
// given one, at most maxChainHops deep.
func (rc *ReportController) GetCorrectionChain(c *gin.Context) {
	caller := utils.GetCaller(c)
	report, ok := loadVisibleReport(rc.DB, c, c.Param("id"))
	if !ok {
		return
	}

	resp := CorrectionChainResponse{ReportID: report.ID, Ancestors: []ChainNode{}}
	current := report
	for hops := 0; current.CorrectedReportID != nil; hops++ {
		if hops >= maxChainHops {
			resp.Truncated = true
			break
		}
		var parent models.Report
		if err := rc.DB.First(&parent, "id = ?", *current.CorrectedReportID).Error; err != nil {
			utils.RespondError(c, err)
			return
		}
		resp.Ancestors = append(resp.Ancestors, NewChainNode(caller, &parent))
		current = &parent
	}

	c.JSON(http.StatusOK, resp)
}
