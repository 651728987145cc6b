package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"blog-api/helper"
	"blog-api/models"
	"blog-api/services"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	uploader services.ImageUploader
	Helper   *helper.HTTPHelper
}

func NewUploadHandler(uploader services.ImageUploader, h *helper.HTTPHelper) *UploadHandler {
	return &UploadHandler{uploader: uploader, Helper: h}
}

// formImage reads the "file" part. A request without one is reported the same
// way as an empty part; any other parse failure is returned as is.
func formImage(c *gin.Context) (multipart.File, error) {
	header, err := c.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		return nil, models.NewBadRequest("Invalid multipart form: %s", err.Error())
	}
	return services.OpenImage(header)
}

func (h *UploadHandler) UploadImage(c *gin.Context) {
	file, err := formImage(c)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	defer file.Close()

	result, err := h.uploader.UploadImage(c.Request.Context(), file, "images")
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendCreated(c, "Image uploaded successfully", result)
}
