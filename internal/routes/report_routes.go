package routes

import (
	"github.com/gin-gonic/gin"

	"daily_report/internal/controllers"
	"daily_report/internal/middleware"
)

func ReportRoutes(r *gin.Engine, ctl *controllers.Controller, auth *middleware.JWT) {
	report := r.Group("/reports")
	report.Use(auth.RequireAuth())
	{
		report.GET("", ctl.ListReports)
		report.POST("", ctl.CreateReport)
		report.GET("/stats", ctl.ReportStats)
		report.GET("/:id", ctl.GetReport)
		report.PATCH("/:id", ctl.UpdateReport)
		report.POST("/:id/approval", ctl.ApproveReport)
		report.POST("/:id/entries", ctl.AddTripEntry)
		report.POST("/:id/attachments", ctl.AddAttachment)
	}

	entry := r.Group("/entries")
	entry.Use(auth.RequireAuth())
	{
		entry.PATCH("/:id", ctl.UpdateTripEntry)
		entry.DELETE("/:id", ctl.DeleteTripEntry)
	}

	attachment := r.Group("/attachments")
	attachment.Use(auth.RequireAuth())
	{
		attachment.DELETE("/:id", ctl.DeleteAttachment)
	}
}
