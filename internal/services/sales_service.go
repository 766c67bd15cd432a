// internal/services/sales_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/zuzi-store/internal/auth"
	"github.com/javajoker/zuzi-store/internal/database"
	"github.com/javajoker/zuzi-store/internal/models"
	"github.com/javajoker/zuzi-store/internal/utils"
)

const recentSalesDays = 7

var salesCSVHeader = []string{"Date", "Product ID", "Size", "Quantity", "Selling Price", "Unit Cost", "Profit"}

type SalesService struct {
	db       *gorm.DB
	clock    Clock
	location *time.Location
}

type SellRequest struct {
	ProductID uint   `json:"product_id" validate:"required"`
	Size      string `json:"size" validate:"required,not_blank"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type SaleOption struct {
	ProductID    uint               `json:"product_id"`
	Season       string             `json:"season"`
	Gender       string             `json:"gender"`
	ImageURL     string             `json:"image_url"`
	SellingPrice decimal.Decimal    `json:"selling_price"`
	Sizes        []models.SizeStock `json:"sizes"`
}

type RecentSale struct {
	models.Sale
	ProductImage string `json:"product_image"`
	Season       string `json:"season"`
	Gender       string `json:"gender"`
	IsReverted   bool   `json:"is_reverted"`
}

func NewSalesService(db *gorm.DB, clock Clock, location *time.Location) *SalesService {
	if clock == nil {
		clock = SystemClock{}
	}
	if location == nil {
		location = time.Local
	}
	return &SalesService{db: db, clock: clock, location: location}
}

// Sell decrements stock and appends a ledger entry in one transaction. The
// decrement is conditional on available stock so concurrent sells of the same
// size cannot drive the counter below zero.
func (s *SalesService) Sell(ctx context.Context, actor *auth.Identity, req *SellRequest) (*models.Sale, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	size := strings.TrimSpace(req.Size)

	var sale *models.Sale
	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		result := tx.Model(&models.SizeStock{}).
			Where("product_id = ? AND size = ? AND quantity >= ?", product.ID, size, req.Quantity).
			Update("quantity", gorm.Expr("quantity - ?", req.Quantity))
		if result.Error != nil {
			return fmt.Errorf("failed to update stock: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w %s", ErrInsufficientStock, size)
		}

		sale = &models.Sale{
			ProductID:    product.ID,
			Size:         size,
			Quantity:     req.Quantity,
			SellingPrice: product.SellingPrice,
			UnitCost:     product.UnitCost,
			SoldAt:       s.clock.Now().UTC(),
		}
		if actor != nil {
			sale.SoldBy = actor.UserID
		}
		if err := tx.Create(sale).Error; err != nil {
			return fmt.Errorf("failed to record sale: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"sale_id":    sale.ID,
		"product_id": sale.ProductID,
		"size":       sale.Size,
		"quantity":   sale.Quantity,
		"sold_by":    sale.SoldBy,
	}).Info("Sale recorded")

	return sale, nil
}

// ListSaleOptions returns every product with its sizes for the sell form.
func (s *SalesService) ListSaleOptions(ctx context.Context) ([]SaleOption, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Preload("Sizes", func(tx *gorm.DB) *gorm.DB { return tx.Order("size_stocks.id ASC") }).
		Order("products.id ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	options := make([]SaleOption, 0, len(products))
	for _, p := range products {
		options = append(options, SaleOption{
			ProductID:    p.ID,
			Season:       p.Season,
			Gender:       p.Gender,
			ImageURL:     p.ImageURL,
			SellingPrice: p.SellingPrice,
			Sizes:        p.Sizes,
		})
	}
	return options, nil
}

// RecentSales lists the last week of sales, newest first, flagged when reverted.
func (s *SalesService) RecentSales(ctx context.Context) ([]RecentSale, error) {
	since := s.clock.Now().UTC().AddDate(0, 0, -recentSalesDays)

	var rows []RecentSale
	err := s.db.WithContext(ctx).Table("sales").
		Select("sales.*, COALESCE(products.image_url, '') AS product_image, "+
			"COALESCE(products.season, '') AS season, COALESCE(products.gender, '') AS gender, "+
			"sale_reverts.id IS NOT NULL AS is_reverted").
		Joins("LEFT JOIN products ON products.id = sales.product_id").
		Joins("LEFT JOIN sale_reverts ON sale_reverts.sale_id = sales.id").
		Where("sales.sold_at >= ?", since).
		Order("sales.sold_at DESC, sales.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent sales: %w", err)
	}
	if rows == nil {
		rows = []RecentSale{}
	}
	return rows, nil
}

// ExportSalesCSV renders the whole ledger, newest first. Profit is per unit.
func (s *SalesService) ExportSalesCSV(ctx context.Context) ([]byte, error) {
	var sales []models.Sale
	if err := s.db.WithContext(ctx).Order("sold_at DESC, id DESC").Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	rows := make([][]string, 0, len(sales))
	for _, sale := range sales {
		rows = append(rows, []string{
			sale.SoldAt.In(s.location).Format(utils.CSVTimeLayout),
			strconv.FormatUint(uint64(sale.ProductID), 10),
			sale.Size,
			strconv.Itoa(sale.Quantity),
			sale.SellingPrice.String(),
			sale.UnitCost.String(),
			sale.UnitProfit().StringFixed(2),
		})
	}

	var buf bytes.Buffer
	if err := utils.WriteCSV(&buf, salesCSVHeader, rows); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}
