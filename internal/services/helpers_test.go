package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/zuzi-store/internal/auth"
	"github.com/javajoker/zuzi-store/internal/config"
	"github.com/javajoker/zuzi-store/internal/database"
	"github.com/javajoker/zuzi-store/internal/models"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(t time.Time) *fixedClock {
	return &fixedClock{now: t}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testPricingConfig() config.PricingConfig {
	return config.PricingConfig{ExchangeRate: 1400, Margin: 7000, RoundingUnit: 1000}
}

func testInventoryConfig() config.InventoryConfig {
	return config.InventoryConfig{LowStockThreshold: 1, PriceSearchWindow: 5000}
}

func testReportConfig() config.ReportConfig {
	return config.ReportConfig{LowStockThreshold: 2, DefaultWindowDays: 30, TopN: 5, Timezone: "UTC"}
}

var (
	testAdmin    = &auth.Identity{UserID: 1, Username: "admin", Role: models.RoleAdmin}
	testEmployee = &auth.Identity{UserID: 2, Username: "clerk", Role: models.RoleEmployee}
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	return db
}

func seedProduct(t *testing.T, catalog *CatalogService, season, gender string, totalCost, shipping int64, sizes ...SizeQuantity) *models.Product {
	t.Helper()
	product, err := catalog.CreateProduct(context.Background(), &ProductRequest{
		Season:       season,
		Gender:       gender,
		TotalCost:    decimal.NewFromInt(totalCost),
		ShippingCost: decimal.NewFromInt(shipping),
		Sizes:        sizes,
	})
	require.NoError(t, err)
	return product
}

func stockOf(t *testing.T, db *gorm.DB, productID uint, size string) int {
	t.Helper()
	var stock models.SizeStock
	require.NoError(t, db.Where("product_id = ? AND size = ?", productID, size).First(&stock).Error)
	return stock.Quantity
}
