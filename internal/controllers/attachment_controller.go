package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"daily_report/internal/middleware"
	"daily_report/internal/services"
)

func (ctl *Controller) AddAttachment(c *gin.Context) {
	var input services.NewAttachment
	if !bindJSON(c, &input) {
		return
	}
	a, err := ctl.svc.Attachments.Add(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (ctl *Controller) DeleteAttachment(c *gin.Context) {
	if err := ctl.svc.Attachments.Delete(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
