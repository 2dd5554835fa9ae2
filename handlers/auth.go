package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"photoshare/apperr"
	"photoshare/middleware"
	"photoshare/service"
)

type LoginRequest struct {
	LoginName string `json:"login_name"`
	Password  string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.InvalidInput("Invalid request body"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.svc.Accounts.Login(ctx, req.LoginName, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, res.Token)
	c.JSON(http.StatusOK, gin.H{
		"_id":        res.User.ID,
		"first_name": res.User.FirstName,
		"last_name":  res.User.LastName,
		"token":      res.Token,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Accounts.Logout(ctx, middleware.ActorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *Handler) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.InvalidInput("Invalid request body"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.svc.Accounts.Register(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"_id":        u.ID,
		"login_name": u.LoginName,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
	})
}
