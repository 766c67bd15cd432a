// internal/services/report_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/javajoker/zuzi-store/internal/config"
	"github.com/javajoker/zuzi-store/internal/models"
	"github.com/javajoker/zuzi-store/internal/utils"
)

const dateLayout = "2006-01-02"

var detailedCSVHeader = []string{
	"Date", "Product ID", "Size", "Quantity", "Selling Price", "Unit Cost", "Total Revenue", "Total Cost", "Profit",
}

type ReportService struct {
	db                *gorm.DB
	clock             Clock
	location          *time.Location
	lowStockThreshold int
	defaultWindowDays int
	topN              int
}

// Window is an inclusive reporting range.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Summary struct {
	SalesCount int64           `json:"sales_count"`
	UnitsSold  int64           `json:"units_sold"`
	Revenue    decimal.Decimal `json:"revenue"`
	Cost       decimal.Decimal `json:"cost"`
	Profit     decimal.Decimal `json:"profit"`
}

type ProductPerformance struct {
	ProductID  uint            `json:"product_id"`
	ImageURL   string          `json:"image_url"`
	Season     string          `json:"season"`
	Gender     string          `json:"gender"`
	Deleted    bool            `json:"deleted"`
	SalesCount int64           `json:"sales_count"`
	UnitsSold  int64           `json:"units_sold"`
	Revenue    decimal.Decimal `json:"revenue"`
	Cost       decimal.Decimal `json:"cost"`
	Profit     decimal.Decimal `json:"profit"`
}

type SizePerformance struct {
	Size          string          `json:"size"`
	SalesCount    int64           `json:"sales_count"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

type DailySales struct {
	Date       string          `json:"date"`
	SalesCount int64           `json:"sales_count"`
	UnitsSold  int64           `json:"units_sold"`
	Revenue    decimal.Decimal `json:"revenue"`
	Profit     decimal.Decimal `json:"profit"`
}

type InventoryValue struct {
	TotalCost  decimal.Decimal `json:"total_cost"`
	TotalValue decimal.Decimal `json:"total_value"`
	TotalUnits int64           `json:"total_units"`
}

type Report struct {
	Window             Window               `json:"window"`
	Summary            Summary              `json:"summary"`
	ProductPerformance []ProductPerformance `json:"product_performance"`
	TopProducts        []ProductPerformance `json:"top_products"`
	WorstProducts      []ProductPerformance `json:"worst_products"`
	SizePerformance    []SizePerformance    `json:"size_performance"`
	DailySales         []DailySales         `json:"daily_sales"`
	LowStock           []LowStockItem       `json:"low_stock"`
	InventoryValue     InventoryValue       `json:"inventory_value"`
}

func NewReportService(db *gorm.DB, clock Clock, location *time.Location, cfg config.ReportConfig) *ReportService {
	if clock == nil {
		clock = SystemClock{}
	}
	if location == nil {
		location = time.Local
	}
	topN := cfg.TopN
	if topN <= 0 {
		topN = 5
	}
	days := cfg.DefaultWindowDays
	if days <= 0 {
		days = 30
	}
	return &ReportService{
		db:                db,
		clock:             clock,
		location:          location,
		lowStockThreshold: cfg.LowStockThreshold,
		defaultWindowDays: days,
		topN:              topN,
	}
}

// ParseWindow turns YYYY-MM-DD bounds into an inclusive window covering the whole
// end day. Missing bounds select the trailing default window ending now.
func (s *ReportService) ParseWindow(start, end string) (Window, error) {
	if start == "" || end == "" {
		now := s.clock.Now().In(s.location)
		return Window{Start: now.AddDate(0, 0, -s.defaultWindowDays), End: now}, nil
	}

	startDay, err := time.ParseInLocation(dateLayout, start, s.location)
	if err != nil {
		return Window{}, fmt.Errorf("%w: start date %q", ErrInvalidWindow, start)
	}
	endDay, err := time.ParseInLocation(dateLayout, end, s.location)
	if err != nil {
		return Window{}, fmt.Errorf("%w: end date %q", ErrInvalidWindow, end)
	}
	if startDay.After(endDay) {
		return Window{}, fmt.Errorf("%w: start date is after end date", ErrInvalidWindow)
	}

	return Window{
		Start: startDay,
		End:   endDay.AddDate(0, 0, 1).Add(-time.Nanosecond),
	}, nil
}

func (s *ReportService) salesInWindow(ctx context.Context, w Window) ([]models.Sale, error) {
	var sales []models.Sale
	err := s.db.WithContext(ctx).
		Where("sold_at >= ? AND sold_at <= ?", w.Start.UTC(), w.End.UTC()).
		Order("sold_at DESC, id DESC").
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}
	return sales, nil
}

func (s *ReportService) BuildReport(ctx context.Context, w Window) (*Report, error) {
	sales, err := s.salesInWindow(ctx, w)
	if err != nil {
		return nil, err
	}

	products, err := s.productsByID(ctx, sales)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Window:             w,
		Summary:            summarize(sales),
		ProductPerformance: productPerformance(sales, products),
		SizePerformance:    sizePerformance(sales),
		DailySales:         dailySales(sales, s.location),
	}
	report.TopProducts, report.WorstProducts = topAndWorst(report.ProductPerformance, s.topN)

	if report.LowStock, err = s.lowStock(ctx); err != nil {
		return nil, err
	}
	if report.InventoryValue, err = s.inventoryValue(ctx); err != nil {
		return nil, err
	}

	return report, nil
}

func (s *ReportService) productsByID(ctx context.Context, sales []models.Sale) (map[uint]models.Product, error) {
	ids := make([]uint, 0)
	seen := make(map[uint]bool)
	for _, sale := range sales {
		if !seen[sale.ProductID] {
			seen[sale.ProductID] = true
			ids = append(ids, sale.ProductID)
		}
	}

	out := make(map[uint]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var products []models.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func summarize(sales []models.Sale) Summary {
	sum := Summary{Revenue: decimal.Zero, Cost: decimal.Zero, Profit: decimal.Zero}
	for i := range sales {
		sale := &sales[i]
		sum.SalesCount++
		sum.UnitsSold += int64(sale.Quantity)
		sum.Revenue = sum.Revenue.Add(sale.Revenue())
		sum.Cost = sum.Cost.Add(sale.Cost())
	}
	sum.Profit = sum.Revenue.Sub(sum.Cost)
	return sum
}

// productPerformance groups by the ledger's product id so the per-product
// profits always add up to the summary profit.
func productPerformance(sales []models.Sale, products map[uint]models.Product) []ProductPerformance {
	byID := make(map[uint]*ProductPerformance)
	for i := range sales {
		sale := &sales[i]
		perf, ok := byID[sale.ProductID]
		if !ok {
			perf = &ProductPerformance{
				ProductID: sale.ProductID,
				Revenue:   decimal.Zero,
				Cost:      decimal.Zero,
				Profit:    decimal.Zero,
			}
			if p, found := products[sale.ProductID]; found {
				perf.ImageURL = p.ImageURL
				perf.Season = p.Season
				perf.Gender = p.Gender
			} else {
				perf.Deleted = true
			}
			byID[sale.ProductID] = perf
		}
		perf.SalesCount++
		perf.UnitsSold += int64(sale.Quantity)
		perf.Revenue = perf.Revenue.Add(sale.Revenue())
		perf.Cost = perf.Cost.Add(sale.Cost())
		perf.Profit = perf.Revenue.Sub(perf.Cost)
	}

	out := make([]ProductPerformance, 0, len(byID))
	for _, perf := range byID {
		out = append(out, *perf)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Profit.Cmp(out[j].Profit); c != 0 {
			return c > 0
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}

// topAndWorst slices the profit-ordered list. The worst slice stays empty until
// at least n products have sales.
func topAndWorst(perf []ProductPerformance, n int) ([]ProductPerformance, []ProductPerformance) {
	top := perf
	if len(top) > n {
		top = top[:n]
	}

	worst := []ProductPerformance{}
	if len(perf) >= n {
		worst = perf[len(perf)-n:]
	}
	return top, worst
}

func sizePerformance(sales []models.Sale) []SizePerformance {
	bySize := make(map[string]*SizePerformance)
	for i := range sales {
		sale := &sales[i]
		perf, ok := bySize[sale.Size]
		if !ok {
			perf = &SizePerformance{Size: sale.Size, TotalRevenue: decimal.Zero}
			bySize[sale.Size] = perf
		}
		perf.SalesCount++
		perf.TotalQuantity += int64(sale.Quantity)
		perf.TotalRevenue = perf.TotalRevenue.Add(sale.Revenue())
	}

	out := make([]SizePerformance, 0, len(bySize))
	for _, perf := range bySize {
		out = append(out, *perf)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalQuantity != out[j].TotalQuantity {
			return out[i].TotalQuantity > out[j].TotalQuantity
		}
		return out[i].Size < out[j].Size
	})
	return out
}

func dailySales(sales []models.Sale, loc *time.Location) []DailySales {
	byDay := make(map[string]*DailySales)
	for i := range sales {
		sale := &sales[i]
		day := sale.SoldAt.In(loc).Format(dateLayout)
		d, ok := byDay[day]
		if !ok {
			d = &DailySales{Date: day, Revenue: decimal.Zero, Profit: decimal.Zero}
			byDay[day] = d
		}
		d.SalesCount++
		d.UnitsSold += int64(sale.Quantity)
		d.Revenue = d.Revenue.Add(sale.Revenue())
		d.Profit = d.Profit.Add(sale.Profit())
	}

	out := make([]DailySales, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (s *ReportService) lowStock(ctx context.Context) ([]LowStockItem, error) {
	items := []LowStockItem{}
	err := s.db.WithContext(ctx).Table("size_stocks").
		Select("size_stocks.product_id, size_stocks.size, size_stocks.quantity, products.season, products.gender, products.image_url").
		Joins("JOIN products ON products.id = size_stocks.product_id").
		Where("size_stocks.quantity <= ?", s.lowStockThreshold).
		Order("size_stocks.quantity ASC, size_stocks.product_id ASC").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load low stock: %w", err)
	}
	return items, nil
}

func (s *ReportService) inventoryValue(ctx context.Context) (InventoryValue, error) {
	var rows []struct {
		Quantity     int
		UnitCost     decimal.Decimal
		SellingPrice decimal.Decimal
	}
	err := s.db.WithContext(ctx).Table("size_stocks").
		Select("size_stocks.quantity, products.unit_cost, products.selling_price").
		Joins("JOIN products ON products.id = size_stocks.product_id").
		Scan(&rows).Error
	if err != nil {
		return InventoryValue{}, fmt.Errorf("failed to load inventory: %w", err)
	}

	value := InventoryValue{TotalCost: decimal.Zero, TotalValue: decimal.Zero}
	for _, r := range rows {
		qty := decimal.NewFromInt(int64(r.Quantity))
		value.TotalCost = value.TotalCost.Add(r.UnitCost.Mul(qty))
		value.TotalValue = value.TotalValue.Add(r.SellingPrice.Mul(qty))
		value.TotalUnits += int64(r.Quantity)
	}
	return value, nil
}

// DetailedReportFilename names the export after the window bounds.
func (s *ReportService) DetailedReportFilename(w Window) string {
	return fmt.Sprintf("detailed_report_%s_%s.csv",
		w.Start.In(s.location).Format("20060102"), w.End.In(s.location).Format("20060102"))
}

// ExportDetailedCSV renders every ledger row in the window, newest first.
func (s *ReportService) ExportDetailedCSV(ctx context.Context, w Window) ([]byte, error) {
	sales, err := s.salesInWindow(ctx, w)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(sales))
	for i := range sales {
		sale := &sales[i]
		rows = append(rows, []string{
			sale.SoldAt.In(s.location).Format(utils.CSVTimeLayout),
			strconv.FormatUint(uint64(sale.ProductID), 10),
			sale.Size,
			strconv.Itoa(sale.Quantity),
			sale.SellingPrice.StringFixed(0),
			sale.UnitCost.StringFixed(0),
			sale.Revenue().StringFixed(0),
			sale.Cost().StringFixed(0),
			sale.Profit().StringFixed(0),
		})
	}

	var buf bytes.Buffer
	if err := utils.WriteCSV(&buf, detailedCSVHeader, rows); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}
