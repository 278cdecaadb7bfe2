package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"daily_report/internal/middleware"
	"daily_report/internal/models"
	"daily_report/internal/services"
)

func (ctl *Controller) ListVehicles(c *gin.Context) {
	vehicles, err := ctl.svc.Vehicles.List(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicles})
}

func (ctl *Controller) CreateVehicle(c *gin.Context) {
	var input services.NewVehicle
	if !bindJSON(c, &input) {
		return
	}
	vehicle, err := ctl.svc.Vehicles.Create(c.Request.Context(), middleware.PrincipalFrom(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, vehicle)
}

func (ctl *Controller) UpdateVehicle(c *gin.Context) {
	var patch models.VehiclePatch
	if !bindJSON(c, &patch) {
		return
	}
	vehicle, err := ctl.svc.Vehicles.Update(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

func (ctl *Controller) DeleteVehicle(c *gin.Context) {
	if err := ctl.svc.Vehicles.Delete(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
