// internal/handlers/revert.go
package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/zuzi-store/internal/auth"
	"github.com/javajoker/zuzi-store/internal/i18n"
	"github.com/javajoker/zuzi-store/internal/services"
	"github.com/javajoker/zuzi-store/internal/utils"
)

type RevertHandler struct {
	revertService *services.RevertService
}

func NewRevertHandler(revertService *services.RevertService) *RevertHandler {
	return &RevertHandler{
		revertService: revertService,
	}
}

// POST /revert-sale/:id
func (h *RevertHandler) RevertSale(c *gin.Context) {
	identity, ok := authorize(c, auth.CapRevertSales)
	if !ok {
		return
	}

	saleID, ok := parseIDParam(c, "id", "sale id")
	if !ok {
		return
	}

	// The reason is optional, so an empty body is accepted.
	var req services.RevertRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequestResponse(c, utils.T(c, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	revert, err := h.revertService.RevertSale(c.Request.Context(), identity, saleID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": utils.T(c, i18n.KeySaleReverted, revert.Quantity, revert.Size),
		"revert":  revert,
	})
}

// GET /revert-history
func (h *RevertHandler) RevertHistory(c *gin.Context) {
	if _, ok := authorize(c, auth.CapRevertSales); !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	entries, total, stats, err := h.revertService.RevertHistory(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(entries, total, params)
	utils.PaginatedResponseWithExtra(c, result, gin.H{
		"stats": stats,
	})
}

// GET /sale-details/:id
func (h *RevertHandler) SaleDetails(c *gin.Context) {
	if _, ok := authorize(c, auth.CapRevertSales); !ok {
		return
	}

	saleID, ok := parseIDParam(c, "id", "sale id")
	if !ok {
		return
	}

	details, err := h.revertService.SaleDetails(c.Request.Context(), saleID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, details)
}
