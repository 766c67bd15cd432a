// internal/handlers/product.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/zuzi-store/internal/auth"
	"github.com/javajoker/zuzi-store/internal/i18n"
	"github.com/javajoker/zuzi-store/internal/models"
	"github.com/javajoker/zuzi-store/internal/services"
	"github.com/javajoker/zuzi-store/internal/utils"
)

type ProductHandler struct {
	catalogService *services.CatalogService
}

type SearchRequest struct {
	SearchQuery string `json:"search_query" form:"search_query"`
	SearchType  string `json:"search_type" form:"search_type"`
}

func NewProductHandler(catalogService *services.CatalogService) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
	}
}

// GET /
func (h *ProductHandler) Index(c *gin.Context) {
	if _, ok := authorize(c, auth.CapBrowse); !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	listing, err := h.catalogService.ListProducts(c.Request.Context(), services.ProductFilter{
		PaginationParams: params,
		Season:           c.DefaultQuery("season", "All"),
		Gender:           c.DefaultQuery("gender", "All"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(listing.Products, listing.Total, params)
	utils.PaginatedResponseWithExtra(c, result, gin.H{
		"low_stock": listing.LowStock,
		"filters": gin.H{
			"season": c.DefaultQuery("season", "All"),
			"gender": c.DefaultQuery("gender", "All"),
		},
	})
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	if _, ok := authorize(c, auth.CapBrowse); !ok {
		return
	}

	id, ok := parseIDParam(c, "id", "product id")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product":     product,
		"total_units": product.TotalUnits(),
	})
}

// POST /add
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	if _, ok := authorize(c, auth.CapManageCatalog); !ok {
		return
	}

	var req services.ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": utils.T(c, i18n.KeyProductCreated),
		"product": product,
	})
}

// GET /edit/:id
func (h *ProductHandler) EditForm(c *gin.Context) {
	if _, ok := authorize(c, auth.CapManageCatalog); !ok {
		return
	}

	id, ok := parseIDParam(c, "id", "product id")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product":     product,
		"cost_inputs": h.catalogService.CostInputs(product),
	})
}

// POST /edit/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	if _, ok := authorize(c, auth.CapManageCatalog); !ok {
		return
	}

	id, ok := parseIDParam(c, "id", "product id")
	if !ok {
		return
	}

	var req services.ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": utils.T(c, i18n.KeyProductUpdated),
		"product": product,
	})
}

// POST /delete/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if _, ok := authorize(c, auth.CapManageCatalog); !ok {
		return
	}

	id, ok := parseIDParam(c, "id", "product id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": utils.T(c, i18n.KeyProductDeleted),
	})
}

// GET /search and POST /search
func (h *ProductHandler) Search(c *gin.Context) {
	if _, ok := authorize(c, auth.CapBrowse); !ok {
		return
	}

	var req SearchRequest
	if c.Request.Method == "POST" {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, utils.T(c, i18n.KeyValidationInvalid, "input"), err.Error())
			return
		}
	} else if err := c.ShouldBindQuery(&req); err != nil {
		utils.BadRequestResponse(c, utils.T(c, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	mode := models.SearchMode(req.SearchType)
	if !mode.Valid() {
		mode = models.SearchAll
	}

	results, err := h.catalogService.Search(c.Request.Context(), mode, req.SearchQuery)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"results":      results,
		"search_query": req.SearchQuery,
		"search_type":  mode,
	})
}
