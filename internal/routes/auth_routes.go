package routes

import (
	"github.com/gin-gonic/gin"

	"daily_report/internal/controllers"
	"daily_report/internal/middleware"
)

func AuthRoutes(r *gin.Engine, ctl *controllers.Controller, auth *middleware.JWT) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", ctl.Signup)
		authGroup.POST("/login", ctl.Login)
	}

	me := r.Group("/me")
	me.Use(auth.OptionalAuth())
	{
		me.GET("/role", ctl.CurrentRole)
		me.GET("/driver", ctl.CurrentDriver)
	}
}
