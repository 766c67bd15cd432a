// internal/services/catalog_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/zuzi-store/internal/config"
	"github.com/javajoker/zuzi-store/internal/database"
	"github.com/javajoker/zuzi-store/internal/models"
	"github.com/javajoker/zuzi-store/internal/utils"
)

const filterAll = "All"

type CatalogService struct {
	db                *gorm.DB
	pricing           Pricing
	lowStockThreshold int
	priceWindow       decimal.Decimal
}

type ProductRequest struct {
	ImageURL     string          `json:"image_url" validate:"omitempty,max=500"`
	StyleURL     string          `json:"style_url" validate:"omitempty,max=500"`
	Season       string          `json:"season" validate:"required,not_blank,max=50"`
	Gender       string          `json:"gender" validate:"required,not_blank,max=50"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Sizes        []SizeQuantity  `json:"sizes" validate:"required,min=1,dive"`
}

type ProductFilter struct {
	utils.PaginationParams
	Season string
	Gender string
}

type LowStockItem struct {
	ProductID uint   `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
	Season    string `json:"season"`
	Gender    string `json:"gender"`
	ImageURL  string `json:"image_url"`
}

type ProductListing struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	LowStock []LowStockItem   `json:"low_stock"`
}

// CostInputs are the purchase-currency figures shown on the edit form.
type CostInputs struct {
	TotalCost    decimal.Decimal `json:"total_cost"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
}

type SearchResult struct {
	ProductID    uint            `json:"product_id"`
	Size         string          `json:"size"`
	Quantity     int             `json:"quantity"`
	Season       string          `json:"season"`
	Gender       string          `json:"gender"`
	ImageURL     string          `json:"image_url"`
	StyleURL     string          `json:"style_url"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

func NewCatalogService(db *gorm.DB, pricing Pricing, cfg config.InventoryConfig) *CatalogService {
	return &CatalogService{
		db:                db,
		pricing:           pricing,
		lowStockThreshold: cfg.LowStockThreshold,
		priceWindow:       decimal.NewFromFloat(cfg.PriceSearchWindow),
	}
}

func applyProductFilter(q *gorm.DB, filter ProductFilter) *gorm.DB {
	if filter.Season != "" && filter.Season != filterAll {
		q = q.Where("products.season = ?", filter.Season)
	}
	if filter.Gender != "" && filter.Gender != filterAll {
		q = q.Where("products.gender = ?", filter.Gender)
	}
	return q
}

func (s *CatalogService) ListProducts(ctx context.Context, filter ProductFilter) (*ProductListing, error) {
	db := s.db.WithContext(ctx)
	listing := &ProductListing{}

	if err := applyProductFilter(db.Model(&models.Product{}), filter).Count(&listing.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	query := applyProductFilter(db.Model(&models.Product{}), filter).
		Preload("Sizes", func(tx *gorm.DB) *gorm.DB { return tx.Order("size_stocks.id ASC") }).
		Order("products.id DESC")
	if err := utils.ApplyPagination(query, filter.PaginationParams).Find(&listing.Products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	lowStock := applyProductFilter(
		db.Table("size_stocks").
			Select("size_stocks.product_id, size_stocks.size, size_stocks.quantity, products.season, products.gender, products.image_url").
			Joins("JOIN products ON products.id = size_stocks.product_id"),
		filter,
	).Where("size_stocks.quantity <= ?", s.lowStockThreshold).
		Order("size_stocks.quantity ASC, size_stocks.product_id ASC")
	if err := lowStock.Scan(&listing.LowStock).Error; err != nil {
		return nil, fmt.Errorf("failed to load low stock: %w", err)
	}

	return listing, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Preload("Sizes", func(tx *gorm.DB) *gorm.DB { return tx.Order("size_stocks.id ASC") }).
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

// CostInputs converts stored local-currency costs back to purchase currency.
func (s *CatalogService) CostInputs(product *models.Product) CostInputs {
	return CostInputs{
		TotalCost:    s.pricing.ToPurchaseCurrency(product.TotalCost),
		ShippingCost: s.pricing.ToPurchaseCurrency(product.ShippingCost),
	}
}

func (s *CatalogService) quote(req *ProductRequest) ([]SizeQuantity, *PriceQuote, error) {
	sizes, err := NormalizeSizes(req.Sizes)
	if err != nil {
		return nil, nil, err
	}
	quote, err := s.pricing.Quote(req.TotalCost, req.ShippingCost, sizes)
	if err != nil {
		return nil, nil, err
	}
	return sizes, quote, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req *ProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	sizes, quote, err := s.quote(req)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		ImageURL:     strings.TrimSpace(req.ImageURL),
		StyleURL:     strings.TrimSpace(req.StyleURL),
		Season:       strings.TrimSpace(req.Season),
		Gender:       strings.TrimSpace(req.Gender),
		TotalCost:    quote.TotalCost,
		ShippingCost: quote.ShippingCost,
		UnitCost:     quote.UnitCost,
		SellingPrice: quote.SellingPrice,
	}

	err = database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Omit("Sizes").Create(product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		stocks, err := insertSizes(tx, product.ID, sizes)
		if err != nil {
			return err
		}
		product.Sizes = stocks
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"product_id":    product.ID,
		"total_units":   quote.TotalUnits,
		"unit_cost":     quote.UnitCost.String(),
		"selling_price": quote.SellingPrice.String(),
	}).Info("Product created")

	return product, nil
}

// UpdateProduct replaces the product attributes and its whole size set.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, req *ProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	sizes, quote, err := s.quote(req)
	if err != nil {
		return nil, err
	}

	var product models.Product
	err = database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		product.ImageURL = strings.TrimSpace(req.ImageURL)
		product.StyleURL = strings.TrimSpace(req.StyleURL)
		product.Season = strings.TrimSpace(req.Season)
		product.Gender = strings.TrimSpace(req.Gender)
		product.TotalCost = quote.TotalCost
		product.ShippingCost = quote.ShippingCost
		product.UnitCost = quote.UnitCost
		product.SellingPrice = quote.SellingPrice

		if err := tx.Omit("Sizes").Save(&product).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		if err := tx.Where("product_id = ?", product.ID).Delete(&models.SizeStock{}).Error; err != nil {
			return fmt.Errorf("failed to clear sizes: %w", err)
		}
		stocks, err := insertSizes(tx, product.ID, sizes)
		if err != nil {
			return err
		}
		product.Sizes = stocks
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"product_id":    product.ID,
		"total_units":   quote.TotalUnits,
		"selling_price": quote.SellingPrice.String(),
	}).Info("Product updated")

	return &product, nil
}

func insertSizes(tx *gorm.DB, productID uint, sizes []SizeQuantity) ([]models.SizeStock, error) {
	stocks := make([]models.SizeStock, 0, len(sizes))
	for _, sq := range sizes {
		stocks = append(stocks, models.SizeStock{
			ProductID: productID,
			Size:      sq.Size,
			Quantity:  sq.Quantity,
		})
	}
	if len(stocks) == 0 {
		return stocks, nil
	}
	if err := tx.Create(&stocks).Error; err != nil {
		return nil, fmt.Errorf("failed to create sizes: %w", err)
	}
	return stocks, nil
}

// DeleteProduct removes the size rows and then the product. Sales keep their
// product id for reporting.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Where("product_id = ?", id).Delete(&models.SizeStock{}).Error; err != nil {
			return fmt.Errorf("failed to delete sizes: %w", err)
		}
		if err := tx.Delete(&product).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logrus.WithField("product_id", id).Info("Product deleted")
	return nil
}

// Search returns in-stock (product, size) pairs matching query in the given mode.
// Unknown modes behave like SearchAll.
func (s *CatalogService) Search(ctx context.Context, mode models.SearchMode, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	results := []SearchResult{}
	if query == "" {
		return results, nil
	}

	q := s.db.WithContext(ctx).Table("size_stocks").
		Select("size_stocks.product_id, size_stocks.size, size_stocks.quantity, " +
			"products.season, products.gender, products.image_url, products.style_url, products.selling_price").
		Joins("JOIN products ON products.id = size_stocks.product_id").
		Where("size_stocks.quantity > 0")

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	switch mode {
	case models.SearchSize:
		q = q.Where(`LOWER(size_stocks.size) LIKE ? ESCAPE '\'`, pattern)
	case models.SearchSeason:
		q = q.Where(`LOWER(products.season) LIKE ? ESCAPE '\'`, pattern)
	case models.SearchGender:
		q = q.Where(`LOWER(products.gender) LIKE ? ESCAPE '\'`, pattern)
	case models.SearchPrice:
		price, err := decimal.NewFromString(query)
		if err != nil {
			return results, nil
		}
		q = q.Where("products.selling_price BETWEEN ? AND ?",
			price.Sub(s.priceWindow).InexactFloat64(), price.Add(s.priceWindow).InexactFloat64())
	case models.SearchProductID:
		id, err := strconv.ParseUint(query, 10, 64)
		if err != nil {
			return results, nil
		}
		q = q.Where("products.id = ?", id)
	default:
		cond := s.db.Where(`LOWER(size_stocks.size) LIKE ? ESCAPE '\'`, pattern).
			Or(`LOWER(products.season) LIKE ? ESCAPE '\'`, pattern).
			Or(`LOWER(products.gender) LIKE ? ESCAPE '\'`, pattern)
		if id, err := strconv.ParseUint(query, 10, 64); err == nil && isDigits(query) {
			cond = cond.Or("products.id = ?", id)
		}
		q = q.Where(cond)
	}

	var rows []SearchResult
	if err := q.Order("size_stocks.product_id ASC, size_stocks.id ASC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		key := strconv.FormatUint(uint64(row.ProductID), 10) + "\x00" + row.Size
		if seen[key] {
			continue
		}
		seen[key] = true
		results = append(results, row)
	}
	return results, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
