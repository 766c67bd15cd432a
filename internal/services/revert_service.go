// internal/services/revert_service.go
package services

import (
	"context"
	"errors"
	"fmt"
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

const (
	maxRevertReasonLength = 500
	revertStatsWindowDays = 30
)

type RevertService struct {
	db    *gorm.DB
	clock Clock
}

type RevertRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type RevertHistoryEntry struct {
	models.SaleRevert
	ProductImage string `json:"product_image"`
	Season       string `json:"season"`
	Gender       string `json:"gender"`
	Username     string `json:"username"`
}

type RevertStats struct {
	TotalReverts   int64 `json:"total_reverts"`
	TotalQuantity  int64 `json:"total_quantity"`
	TotalAmount    int64 `json:"total_amount"`
	ThisMonthCount int64 `json:"this_month_count"`
}

type RevertDetails struct {
	RevertedBy      string    `json:"reverted_by"`
	RevertTimestamp time.Time `json:"revert_timestamp"`
	Reason          string    `json:"reason"`
}

type SaleDetails struct {
	ID              uint            `json:"id"`
	ProductID       uint            `json:"product_id"`
	Size            string          `json:"size"`
	Quantity        int             `json:"quantity"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	Timestamp       time.Time       `json:"timestamp"`
	ProductImage    string          `json:"product_image"`
	ProductStyleURL string          `json:"product_style_url"`
	Season          string          `json:"season"`
	Gender          string          `json:"gender"`
	IsReverted      bool            `json:"is_reverted"`
	RevertDetails   *RevertDetails  `json:"revert_details"`
}

func NewRevertService(db *gorm.DB, clock Clock) *RevertService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &RevertService{db: db, clock: clock}
}

// RevertSale restores the stock taken by a sale and records the compensating
// entry. A sale can be reverted once.
func (s *RevertService) RevertSale(ctx context.Context, actor *auth.Identity, saleID uint, reason string) (*models.SaleRevert, error) {
	if actor == nil {
		return nil, errors.New("revert requires an acting user")
	}

	reason = strings.TrimSpace(reason)
	if runes := []rune(reason); len(runes) > maxRevertReasonLength {
		reason = string(runes[:maxRevertReasonLength])
	}

	var sale models.Sale
	if err := s.db.WithContext(ctx).First(&sale, saleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.SaleRevert{}).Where("sale_id = ?", sale.ID).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if existing > 0 {
		return nil, ErrAlreadyReverted
	}

	revert := &models.SaleRevert{
		SaleID:             sale.ID,
		ProductID:          sale.ProductID,
		Size:               sale.Size,
		Quantity:           sale.Quantity,
		SellingPrice:       sale.SellingPrice,
		UnitCost:           sale.UnitCost,
		RevertedAt:         s.clock.Now().UTC(),
		RevertedBy:         actor.UserID,
		RevertedByUsername: actor.Username,
		Reason:             reason,
	}

	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		var stock models.SizeStock
		err := tx.Where("product_id = ? AND size = ?", sale.ProductID, sale.Size).First(&stock).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			stock = models.SizeStock{ProductID: sale.ProductID, Size: sale.Size, Quantity: 0}
			if err := tx.Create(&stock).Error; err != nil {
				return fmt.Errorf("failed to recreate size %s: %w", sale.Size, err)
			}
		case err != nil:
			return err
		}

		if err := tx.Model(&models.SizeStock{}).Where("id = ?", stock.ID).
			Update("quantity", gorm.Expr("quantity + ?", sale.Quantity)).Error; err != nil {
			return fmt.Errorf("failed to restore stock: %w", err)
		}

		return tx.Create(revert).Error
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrAlreadyReverted
		}
		logrus.WithError(err).WithField("sale_id", sale.ID).Error("Sale revert rolled back")
		return nil, &RevertError{Cause: err}
	}

	logrus.WithFields(logrus.Fields{
		"sale_id":     sale.ID,
		"product_id":  sale.ProductID,
		"size":        sale.Size,
		"quantity":    sale.Quantity,
		"reverted_by": actor.UserID,
	}).Info("Sale reverted")

	return revert, nil
}

// RevertHistory pages through reverts newest first. Stats cover every revert.
func (s *RevertService) RevertHistory(ctx context.Context, params utils.PaginationParams) ([]RevertHistoryEntry, int64, *RevertStats, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.SaleRevert{}).Count(&total).Error; err != nil {
		return nil, 0, nil, fmt.Errorf("failed to count reverts: %w", err)
	}

	var entries []RevertHistoryEntry
	query := db.Table("sale_reverts").
		Select("sale_reverts.*, COALESCE(products.image_url, '') AS product_image, " +
			"COALESCE(products.season, '') AS season, COALESCE(products.gender, '') AS gender, " +
			"COALESCE(users.username, sale_reverts.reverted_by_username) AS username").
		Joins("LEFT JOIN products ON products.id = sale_reverts.product_id").
		Joins("LEFT JOIN users ON users.id = sale_reverts.reverted_by").
		Order("sale_reverts.reverted_at DESC, sale_reverts.id DESC")
	if err := utils.ApplyPagination(query, params).Scan(&entries).Error; err != nil {
		return nil, 0, nil, fmt.Errorf("failed to load reverts: %w", err)
	}
	if entries == nil {
		entries = []RevertHistoryEntry{}
	}

	stats, err := s.revertStats(ctx)
	if err != nil {
		return nil, 0, nil, err
	}
	return entries, total, stats, nil
}

func (s *RevertService) revertStats(ctx context.Context) (*RevertStats, error) {
	var reverts []models.SaleRevert
	if err := s.db.WithContext(ctx).Select("quantity", "selling_price", "reverted_at").Find(&reverts).Error; err != nil {
		return nil, fmt.Errorf("failed to load revert stats: %w", err)
	}

	since := s.clock.Now().UTC().AddDate(0, 0, -revertStatsWindowDays)
	stats := &RevertStats{TotalReverts: int64(len(reverts))}
	amount := decimal.Zero
	for _, r := range reverts {
		stats.TotalQuantity += int64(r.Quantity)
		amount = amount.Add(r.SellingPrice.Mul(decimal.NewFromInt(int64(r.Quantity))))
		if !r.RevertedAt.Before(since) {
			stats.ThisMonthCount++
		}
	}
	stats.TotalAmount = amount.IntPart()
	return stats, nil
}

func (s *RevertService) SaleDetails(ctx context.Context, saleID uint) (*SaleDetails, error) {
	db := s.db.WithContext(ctx)

	var sale models.Sale
	if err := db.First(&sale, saleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	details := &SaleDetails{
		ID:           sale.ID,
		ProductID:    sale.ProductID,
		Size:         sale.Size,
		Quantity:     sale.Quantity,
		SellingPrice: sale.SellingPrice,
		UnitCost:     sale.UnitCost,
		Timestamp:    sale.SoldAt,
	}

	var product models.Product
	if err := db.First(&product, sale.ProductID).Error; err == nil {
		details.ProductImage = product.ImageURL
		details.ProductStyleURL = product.StyleURL
		details.Season = product.Season
		details.Gender = product.Gender
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	var revert models.SaleRevert
	err := db.Where("sale_id = ?", sale.ID).First(&revert).Error
	switch {
	case err == nil:
		revertedBy := revert.RevertedByUsername
		var user models.User
		if db.Select("username").First(&user, revert.RevertedBy).Error == nil {
			revertedBy = user.Username
		}
		details.IsReverted = true
		details.RevertDetails = &RevertDetails{
			RevertedBy:      revertedBy,
			RevertTimestamp: revert.RevertedAt,
			Reason:          revert.Reason,
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("database error: %w", err)
	}

	return details, nil
}
