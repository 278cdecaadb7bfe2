package routes

import (
	"github.com/gin-gonic/gin"

	"daily_report/internal/controllers"
	"daily_report/internal/middleware"
)

func VehicleRoutes(r *gin.Engine, ctl *controllers.Controller, auth *middleware.JWT) {
	vehicle := r.Group("/vehicles")
	vehicle.Use(auth.RequireAuth())
	{
		vehicle.GET("", ctl.ListVehicles)
		vehicle.POST("", ctl.CreateVehicle)
		vehicle.PATCH("/:id", ctl.UpdateVehicle)
		vehicle.DELETE("/:id", ctl.DeleteVehicle)
	}
}
