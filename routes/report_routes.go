package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/regport/api-go/controllers"
)

func SetupReportRoutes(protected *gin.RouterGroup, reportController *controllers.ReportController, commentController *controllers.CommentController) {
	reports := protected.Group("/reports")
	{
		reports.POST("", reportController.CreateReport)
		reports.GET("", reportController.ListReports)
		reports.GET("/stats", reportController.GetStats)
		reports.GET("/export", reportController.ExportReports)
		reports.GET("/:id", reportController.GetReport)
		reports.DELETE("/:id", reportController.DeleteReport)
		reports.POST("/:id/submit", reportController.SubmitReport)
		reports.PATCH("/:id/status", reportController.UpdateStatus)
		reports.POST("/:id/archive", reportController.ArchiveReport)
		reports.POST("/:id/corrections", reportController.SubmitCorrection)
		reports.GET("/:id/chain", reportController.GetCorrectionChain)
		reports.POST("/:id/comments", commentController.AddComment)
		reports.GET("/:id/comments", commentController.ListComments)
	}
}
