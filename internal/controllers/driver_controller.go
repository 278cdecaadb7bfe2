package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"daily_report/internal/middleware"
	"daily_report/internal/models"
	"daily_report/internal/services"
)

func (ctl *Controller) ListDrivers(c *gin.Context) {
	drivers, err := ctl.svc.Drivers.List(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": drivers})
}

func (ctl *Controller) CreateDriver(c *gin.Context) {
	var input services.NewDriver
	if !bindJSON(c, &input) {
		return
	}
	driver, err := ctl.svc.Drivers.Create(c.Request.Context(), middleware.PrincipalFrom(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, driver)
}

func (ctl *Controller) UpdateDriver(c *gin.Context) {
	var patch models.DriverPatch
	if !bindJSON(c, &patch) {
		return
	}
	driver, err := ctl.svc.Drivers.Update(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, driver)
}

func (ctl *Controller) DeleteDriver(c *gin.Context) {
	if err := ctl.svc.Drivers.Delete(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
