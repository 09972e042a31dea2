package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/regport/api-go/controllers"
	"github.com/regport/api-go/middleware"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, logger *logrus.Logger, limiter *middleware.RateLimiter) {
	// Initialize controllers
	reportController := controllers.NewReportController(db, logger)
	commentController := controllers.NewCommentController(db, logger)
	calendarController := controllers.NewCalendarController(db, logger)
	uploadController := controllers.NewUploadController()

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	protected.Use(limiter.Middleware())
	{
		SetupReportRoutes(protected, reportController, commentController)
		SetupCalendarRoutes(protected, calendarController)

		uploads := protected.Group("/uploads")
		{
			uploads.POST("/presign", uploadController.PresignUpload)
			uploads.GET("/confirm", uploadController.ConfirmUpload)
		}
	}
}
