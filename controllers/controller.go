// Package controllers binds HTTP requests to the committee services.
package controllers

import (
	"errors"
	"net/http"

	"munhub/internal/apperr"
	"munhub/middlewares"
	"munhub/models"
	"munhub/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Controller holds the handlers for every REST operation.
type Controller struct {
	svc    *services.Services
	logger *zap.Logger
}

func New(svc *services.Services, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{svc: svc, logger: logger}
}

var statusByKind = map[apperr.Kind]int{
	apperr.KindNotFound:     http.StatusNotFound,
	apperr.KindForbidden:    http.StatusForbidden,
	apperr.KindValidation:   http.StatusBadRequest,
	apperr.KindInvalidState: http.StatusBadRequest,
	apperr.KindConflict:     http.StatusConflict,
}

// fail writes err using the application taxonomy. Unknown errors are logged
// and reported as a generic 500.
func (h *Controller) fail(c *gin.Context, err error) {
	var ae *apperr.Error
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, services.ErrTooManyAttempts):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many login attempts, please try again later"})
	case errors.As(err, &ae):
		body := gin.H{"error": ae.Error()}
		for k, v := range ae.Details {
			body[k] = v
		}
		status, ok := statusByKind[ae.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		c.JSON(status, body)
	default:
		_ = c.Error(err)
		h.logger.Error("unhandled error",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// bind decodes the JSON body into dst, answering 400 on failure.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "Invalid request payload")
		return false
	}
	return true
}

// idParam parses the named path parameter as an ObjectID.
func idParam(c *gin.Context, name, entity string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid "+entity+" ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

// caller returns the authenticated principal. Routes behind the auth
// middleware always have one.
func caller(c *gin.Context) models.Principal {
	p, _ := middlewares.Principal(c)
	return p
}

// respond writes v with status, or the error when err is set.
func (h *Controller) respond(c *gin.Context, status int, v any, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(status, v)
}
