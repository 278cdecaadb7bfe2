package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"daily_report/internal/middleware"
	"daily_report/internal/models"
	"daily_report/internal/services"
)

func (ctl *Controller) AddTripEntry(c *gin.Context) {
	var input services.NewTripEntry
	if !bindJSON(c, &input) {
		return
	}
	entry, err := ctl.svc.Trips.Add(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (ctl *Controller) UpdateTripEntry(c *gin.Context) {
	var patch models.TripEntryPatch
	if !bindJSON(c, &patch) {
		return
	}
	entry, err := ctl.svc.Trips.Update(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (ctl *Controller) DeleteTripEntry(c *gin.Context) {
	if err := ctl.svc.Trips.Delete(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
