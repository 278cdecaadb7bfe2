package routes

import (
	"github.com/gin-gonic/gin"

	"daily_report/internal/controllers"
	"daily_report/internal/middleware"
)

func DriverRoutes(r *gin.Engine, ctl *controllers.Controller, auth *middleware.JWT) {
	driver := r.Group("/drivers")
	driver.Use(auth.RequireAuth())
	{
		driver.GET("", ctl.ListDrivers)
		driver.POST("", ctl.CreateDriver)
		driver.PATCH("/:id", ctl.UpdateDriver)
		driver.DELETE("/:id", ctl.DeleteDriver)
	}
}
