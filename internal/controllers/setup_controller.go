package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"daily_report/internal/middleware"
)

func (ctl *Controller) SetupSampleData(c *gin.Context) {
	res, err := ctl.svc.Setup.SampleData(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
