package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/regport/api-go/models"
	"github.com/regport/api-go/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CalendarController struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewCalendarController(db *gorm.DB, logger *logrus.Logger) *CalendarController {
	return &CalendarController{DB: db, Logger: logger}
}

type CalendarEntryResponse struct {
	models.CalendarEntry
	CompletionRate string               `json:"completionRate"`
	DeadlineState  models.DeadlineState `json:"deadlineState"`
}

// GetCalendar lists reporting deadlines with live completion rates. The
// denominator is the number of currently active entities, so the same query
// can answer differently on different days even for a past period.
func (cc *CalendarController) GetCalendar(c *gin.Context) {
	q := cc.DB.Model(&models.CalendarEntry{})

	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondError(c, models.ErrValidation("year must be an integer"))
			return
		}
		from := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		q = q.Where("due_date >= ? AND due_date < ?", from, from.AddDate(1, 0, 0))
	}
	if raw := c.Query("isActive"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondError(c, models.ErrValidation("isActive must be a boolean"))
			return
		}
		q = q.Where("is_active = ?", active)
	}

	var entries []models.CalendarEntry
	if err := q.Order("due_date ASC").Find(&entries).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	activeEntities, err := models.ActiveEntityCount(cc.DB)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	now := time.Now().UTC()
	resp := make([]CalendarEntryResponse, 0, len(entries))
	for _, entry := range entries {
		submitted, err := models.NonDraftReportCount(cc.DB, entry.Period, entry.ReportType)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		resp = append(resp, CalendarEntryResponse{
			CalendarEntry:  entry,
			CompletionRate: models.CompletionRate(submitted, activeEntities),
			DeadlineState:  entry.DeadlineStateAt(now),
		})
	}

	c.JSON(http.StatusOK, resp)
}

type CreateCalendarEntryRequest struct {
	Period      string    `json:"period" binding:"required"`
	ReportType  string    `json:"reportType" binding:"required,oneof=QUARTERLY ANNUAL AD_HOC"`
	DueDate     time.Time `json:"dueDate" binding:"required"`
	Description string    `json:"description"`
}

// CreateCalendarEntry registers a reporting deadline. Authority admins only.
func (cc *CalendarController) CreateCalendarEntry(c *gin.Context) {
	caller := utils.GetCaller(c)
	if caller.Role != models.RoleUKNFAdmin {
		utils.RespondError(c, models.ErrForbidden())
		return
	}

	var req CreateCalendarEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry := models.CalendarEntry{
		Period:      req.Period,
		ReportType:  models.ReportType(req.ReportType),
		DueDate:     req.DueDate,
		Description: req.Description,
		IsActive:    true,
	}
	if err := cc.DB.Create(&entry).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	cc.Logger.WithFields(logrus.Fields{
		"period":     entry.Period,
		"reportType": entry.ReportType,
		"dueDate":    entry.DueDate,
	}).Info("calendar entry created")

	c.JSON(http.StatusCreated, entry)
}

// DeactivateCalendarEntry retires a deadline without deleting it.
func (cc *CalendarController) DeactivateCalendarEntry(c *gin.Context) {
	caller := utils.GetCaller(c)
	if caller.Role != models.RoleUKNFAdmin {
		utils.RespondError(c, models.ErrForbidden())
		return
	}

	var entry models.CalendarEntry
	if err := cc.DB.First(&entry, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.RespondError(c, models.ErrNotFound("calendar entry"))
			return
		}
		utils.RespondError(c, err)
		return
	}

	if err := cc.DB.Model(&entry).Update("is_active", false).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	entry.IsActive = false

	c.JSON(http.StatusOK, entry)
}
