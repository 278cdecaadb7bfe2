package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"daily_report/internal/middleware"
	"daily_report/internal/models"
)

func (ctl *Controller) ListUsers(c *gin.Context) {
	users, err := ctl.svc.Users.ListUsers(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

func (ctl *Controller) CreateUserRole(c *gin.Context) {
	var body struct {
		UserID string      `json:"user_id" binding:"required"`
		Role   models.Role `json:"role" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}
	if err := ctl.svc.Users.CreateUserRole(c.Request.Context(), middleware.PrincipalFrom(c), body.UserID, body.Role); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user_id": body.UserID, "role": body.Role})
}

func (ctl *Controller) UpdateUserRole(c *gin.Context) {
	var body struct {
		Role models.Role `json:"role" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}
	userID := c.Param("id")
	if err := ctl.svc.Users.UpdateUserRole(c.Request.Context(), middleware.PrincipalFrom(c), userID, body.Role); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": body.Role})
}
