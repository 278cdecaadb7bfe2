package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"daily_report/internal/controllers"
	"daily_report/internal/logger"
	"daily_report/internal/metrics"
	"daily_report/internal/middleware"
	"daily_report/internal/services"
)

// SetupRouter builds the engine with every route group mounted.
func SetupRouter(svc *services.Services, auth *middleware.JWT, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlog.SetLogger(
		ginlog.WithWriter(logger.Writer()),
		ginlog.WithUTC(true),
		ginlog.WithSkipPath([]string{"/healthz", "/metrics"}),
	))
	r.Use(middleware.CORS(corsOrigins))

	r.GET("/healthz", controllers.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	ctl := controllers.New(svc)
	AuthRoutes(r, ctl, auth)
	DriverRoutes(r, ctl, auth)
	VehicleRoutes(r, ctl, auth)
	ReportRoutes(r, ctl, auth)
	AdminRoutes(r, ctl, auth)

	return r
}
