package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/regport/api-go/models"
	"github.com/regport/api-go/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CommentController struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewCommentController(db *gorm.DB, logger *logrus.Logger) *CommentController {
	return &CommentController{DB: db, Logger: logger}
}

type AddCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

// AddComment appends to the report's discussion log. Comments are independent
// of status transitions and never conflict with them; author name and role
// are frozen at write time.
func (cc *CommentController) AddComment(c *gin.Context) {
	caller := utils.GetCaller(c)
	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, ok := loadVisibleReport(cc.DB, c, c.Param("id"))
	if !ok {
		return
	}

	comment := models.Comment{
		ReportID: report.ID,
		UserID:   caller.UserID,
		UserName: caller.Name,
		UserRole: caller.Role,
		Body:     req.Body,
	}
	if err := cc.DB.Create(&comment).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	cc.Logger.WithFields(logrus.Fields{
		"reportId":  report.ID,
		"commentId": comment.ID,
	}).Info("comment added")

	c.JSON(http.StatusCreated, comment)
}

// ListComments returns the discussion log oldest first.
func (cc *CommentController) ListComments(c *gin.Context) {
	report, ok := loadVisibleReport(cc.DB, c, c.Param("id"))
	if !ok {
		return
	}

	comments := []models.Comment{}
	if err := cc.DB.
		Where("report_id = ?", report.ID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}
