package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"daily_report/internal/middleware"
	"daily_report/internal/services"
)

func (ctl *Controller) Signup(c *gin.Context) {
	var input services.SignupInput
	if !bindJSON(c, &input) {
		return
	}
	res, err := ctl.svc.Users.Signup(c.Request.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (ctl *Controller) Login(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}
	res, err := ctl.svc.Users.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CurrentRole answers {"role": null} for anonymous callers.
func (ctl *Controller) CurrentRole(c *gin.Context) {
	role, err := ctl.svc.Identity.CurrentRole(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": role})
}

func (ctl *Controller) CurrentDriver(c *gin.Context) {
	driver, err := ctl.svc.Identity.CurrentDriver(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver": driver})
}
