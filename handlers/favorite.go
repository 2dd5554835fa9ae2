package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"photoshare/middleware"
)

func (h *Handler) AddFavorite(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	fav, err := h.svc.Favorites.Add(ctx, middleware.ActorFrom(c), c.Param("photo_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fav)
}

// RemoveFavorite answers 200 whether or not the favorite existed.
func (h *Handler) RemoveFavorite(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Favorites.Remove(ctx, middleware.ActorFrom(c), c.Param("photo_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Favorite removed"})
}

func (h *Handler) ListFavorites(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	favs, err := h.svc.Favorites.List(ctx, middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, favs)
}
