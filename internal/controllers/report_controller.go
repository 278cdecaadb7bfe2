package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"daily_report/internal/middleware"
	"daily_report/internal/models"
	"daily_report/internal/services"
)

func (ctl *Controller) ListReports(c *gin.Context) {
	f := services.ReportFilter{
		DateFrom:  c.Query("dateFrom"),
		DateTo:    c.Query("dateTo"),
		DriverID:  c.Query("driverId"),
		VehicleID: c.Query("vehicleId"),
		Status:    c.Query("status"),
		Keyword:   c.Query("keyword"),
		Cursor:    c.Query("cursor"),
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		f.Limit = n
	}
	list, err := ctl.svc.Reports.List(c.Request.Context(), middleware.PrincipalFrom(c), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (ctl *Controller) ReportStats(c *gin.Context) {
	stats, err := ctl.svc.Reports.Stats(c.Request.Context(), middleware.PrincipalFrom(c), c.Query("dateFrom"), c.Query("dateTo"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (ctl *Controller) GetReport(c *gin.Context) {
	detail, err := ctl.svc.Reports.Get(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (ctl *Controller) CreateReport(c *gin.Context) {
	var input services.NewReport
	if !bindJSON(c, &input) {
		return
	}
	report, err := ctl.svc.Reports.Create(c.Request.Context(), middleware.PrincipalFrom(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (ctl *Controller) UpdateReport(c *gin.Context) {
	var patch models.ReportPatch
	if !bindJSON(c, &patch) {
		return
	}
	report, err := ctl.svc.Reports.Update(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (ctl *Controller) ApproveReport(c *gin.Context) {
	var body struct {
		Approved *bool `json:"approved" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}
	report, err := ctl.svc.Reports.Approve(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), *body.Approved)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
