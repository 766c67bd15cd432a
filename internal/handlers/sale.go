// internal/handlers/sale.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/zuzi-store/internal/auth"
	"github.com/javajoker/zuzi-store/internal/i18n"
	"github.com/javajoker/zuzi-store/internal/services"
	"github.com/javajoker/zuzi-store/internal/utils"
)

type SaleHandler struct {
	salesService *services.SalesService
}

func NewSaleHandler(salesService *services.SalesService) *SaleHandler {
	return &SaleHandler{
		salesService: salesService,
	}
}

// GET /sell
func (h *SaleHandler) SellOptions(c *gin.Context) {
	if _, ok := authorize(c, auth.CapSell); !ok {
		return
	}

	options, err := h.salesService.ListSaleOptions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"products": options,
	})
}

// POST /sell
func (h *SaleHandler) Sell(c *gin.Context) {
	identity, ok := authorize(c, auth.CapSell)
	if !ok {
		return
	}

	var req services.SellRequest
	if !bindJSON(c, &req) {
		return
	}

	sale, err := h.salesService.Sell(c.Request.Context(), identity, &req)
	if err != nil {
		if errors.Is(err, services.ErrInsufficientStock) {
			utils.ConflictResponse(c, utils.T(c, i18n.KeySaleInsufficientStock, req.Size))
			return
		}
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": utils.T(c, i18n.KeySaleRecorded),
		"sale":    sale,
	})
}

// GET /recent-sales
func (h *SaleHandler) RecentSales(c *gin.Context) {
	if _, ok := authorize(c, auth.CapBrowse); !ok {
		return
	}

	sales, err := h.salesService.RecentSales(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"sales": sales,
	})
}

// GET /export
func (h *SaleHandler) ExportSales(c *gin.Context) {
	if _, ok := authorize(c, auth.CapExport); !ok {
		return
	}

	body, err := h.salesService.ExportSalesCSV(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CSVAttachment(c, "sales_report.csv", body)
}
