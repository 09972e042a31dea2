package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/regport/api-go/controllers"
)

func SetupCalendarRoutes(protected *gin.RouterGroup, calendarController *controllers.CalendarController) {
	calendar := protected.Group("/calendar")
	{
		calendar.GET("", calendarController.GetCalendar)
		calendar.POST("", calendarController.CreateCalendarEntry)
		calendar.POST("/:id/deactivate", calendarController.DeactivateCalendarEntry)
	}
}
