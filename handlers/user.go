package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"photoshare/middleware"
)

func (h *Handler) ListUsers(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.svc.Accounts.ListUsers(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) CurrentUser(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.svc.Accounts.CurrentUser(ctx, middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) GetUser(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.svc.Accounts.GetUser(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// DeleteUser removes the caller's own account and ends the session.
func (h *Handler) DeleteUser(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Accounts.DeleteAccount(ctx, middleware.ActorFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}
