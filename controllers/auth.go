package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Controller) Login(c *gin.Context) {
	var request struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bind(c, &request) {
		return
	}
	sess, err := h.svc.Auth.Login(c.Request.Context(), request.Username, request.Password)
	h.respond(c, http.StatusOK, sess, err)
}

// DelegateLogin exchanges the token printed on a country's QR code.
func (h *Controller) DelegateLogin(c *gin.Context) {
	var request struct {
		Token string `json:"token" binding:"required"`
	}
	if !bind(c, &request) {
		return
	}
	sess, err := h.svc.Auth.DelegateLogin(c.Request.Context(), request.Token, c.ClientIP())
	h.respond(c, http.StatusOK, sess, err)
}

func (h *Controller) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": caller(c)})
}
