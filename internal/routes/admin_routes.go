package routes

import (
	"github.com/gin-gonic/gin"

	"daily_report/internal/controllers"
	"daily_report/internal/middleware"
)

// AdminRoutes mounts user and role management plus sample-data setup. The
// services enforce the admin check so setup can bootstrap the first admin.
func AdminRoutes(r *gin.Engine, ctl *controllers.Controller, auth *middleware.JWT) {
	users := r.Group("/users")
	users.Use(auth.RequireAuth())
	{
		users.GET("", ctl.ListUsers)
		users.POST("/roles", ctl.CreateUserRole)
		users.PUT("/:id/role", ctl.UpdateUserRole)
	}

	setup := r.Group("/setup")
	setup.Use(auth.RequireAuth())
	{
		setup.POST("/sample-data", ctl.SetupSampleData)
	}
}
