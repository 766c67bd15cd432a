// internal/handlers/upload.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/zuzi-store/internal/auth"
	"github.com/javajoker/zuzi-store/internal/i18n"
	"github.com/javajoker/zuzi-store/internal/services"
	"github.com/javajoker/zuzi-store/internal/utils"
)

type UploadHandler struct {
	storageService *services.StorageService
}

type DeleteImageRequest struct {
	Key string `json:"key" validate:"required"`
}

func NewUploadHandler(storageService *services.StorageService) *UploadHandler {
	return &UploadHandler{
		storageService: storageService,
	}
}

// POST /upload-image
func (h *UploadHandler) UploadImage(c *gin.Context) {
	if _, ok := authorize(c, auth.CapManageCatalog); !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, utils.T(c, i18n.KeyValidationRequired, "file"), nil)
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadProductImage(c.Request.Context(), file, header)
	if err != nil {
		if errors.Is(err, services.ErrFileTooLarge) ||
			errors.Is(err, services.ErrFileTypeDenied) ||
			errors.Is(err, services.ErrInvalidImage) {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		logrus.WithError(err).Error("Image upload failed")
		utils.InternalErrorResponse(c, utils.T(c, i18n.KeyUploadFailed))
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": utils.T(c, i18n.KeyUploadSuccess),
		"file":    result,
	})
}

// POST /delete-image
func (h *UploadHandler) DeleteImage(c *gin.Context) {
	if _, ok := authorize(c, auth.CapManageCatalog); !ok {
		return
	}

	var req DeleteImageRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.storageService.DeleteFile(c.Request.Context(), req.Key); err != nil {
		if errors.Is(err, services.ErrInvalidFileKey) {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"key": req.Key,
	})
}
