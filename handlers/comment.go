package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"photoshare/apperr"
	"photoshare/middleware"
)

// CommentRequest carries mentions already resolved to user ids by the
// client; the text itself is stored as written.
type CommentRequest struct {
	Comment  string   `json:"comment"`
	Mentions []string `json:"mentions"`
}

func (h *Handler) AddComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.InvalidInput("Invalid request body"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	view, err := h.svc.Comments.Add(ctx, middleware.ActorFrom(c), c.Param("photo_id"), req.Comment, req.Mentions)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": view})
}

func (h *Handler) DeleteComment(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	err := h.svc.Comments.Delete(ctx, middleware.ActorFrom(c), c.Param("photo_id"), c.Param("comment_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

func (h *Handler) MentionsOfUser(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	photos, err := h.svc.Comments.MentionsOfUser(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, photos)
}
