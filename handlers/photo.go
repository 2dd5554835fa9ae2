package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"photoshare/apperr"
	"photoshare/middleware"
)

const uploadField = "uploadedphoto"

func (h *Handler) PhotosOfUser(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	photos, err := h.svc.Photos.ListOfUser(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, photos)
}

func (h *Handler) DeletePhotosOfUser(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	n, err := h.svc.Photos.DeleteAllOfUser(ctx, middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// UploadPhoto buffers the multipart file in memory, bounded by
// MaxUploadBytes, before handing it to storage.
func (h *Handler) UploadPhoto(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)

	file, header, err := c.Request.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, apperr.InvalidInput("Photo exceeds the upload size limit"))
			return
		}
		respondError(c, apperr.InvalidInput("No photo file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, apperr.InvalidInput("Could not read uploaded photo"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	photo, err := h.svc.Photos.Upload(ctx, middleware.ActorFrom(c), header.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, photo)
}

func (h *Handler) DeletePhoto(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Photos.Delete(ctx, middleware.ActorFrom(c), c.Param("photo_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Photo deleted"})
}
