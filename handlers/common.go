// Package handlers adapts HTTP requests to the service layer.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"photoshare/apperr"
	"photoshare/logger"
	"photoshare/metrics"
	"photoshare/middleware"
	"photoshare/service"
)

const requestTimeout = 10 * time.Second

type Options struct {
	// SessionTTL sets the cookie lifetime; it should match the session store.
	SessionTTL time.Duration
	// SecureCookie marks the session cookie Secure (release mode).
	SecureCookie   bool
	MaxUploadBytes int64
}

type Handler struct {
	svc  *service.Services
	opts Options
}

func New(svc *service.Services, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Handler{svc: svc, opts: opts}
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// respondError renders err as {"code","error"}. Causes of 5xx responses are
// logged and never sent to the client.
func respondError(c *gin.Context, err error) {
	ae := apperr.From(err)
	metrics.Get().ErrorsTotal.WithLabelValues(ae.Code).Inc()
	if ae.HTTPStatus >= http.StatusInternalServerError {
		logger.Log.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(ae.Cause),
		)
	}
	c.JSON(ae.HTTPStatus, ae)
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.opts.SessionTTL.Seconds()), "/", "", h.opts.SecureCookie, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.opts.SecureCookie, true)
}

// Health reports liveness; it does not touch the database.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
