package repository

import (
	"time"

	"go-resale-ledger/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReportRepository interface {
	GetStockStats(lowStockThreshold int) (*StockStats, error)
	GetSalesMovement(startDate, endDate time.Time) ([]SalesMovementData, error)
	GetRevenue(startDate, endDate time.Time) (decimal.Decimal, int64, error)
}

// SalesMovementData is one chart bucket: units and revenue sold on a day.
type SalesMovementData struct {
	Date    string          `json:"date"`
	Units   int             `json:"units"`
	Revenue decimal.Decimal `json:"revenue"`
}

// StockStats is the overview block for the admin dashboard.
type StockStats struct {
	TotalLots      int64           `json:"total_lots"`
	TotalUnits     int64           `json:"total_units"`
	PoolUnits      int64           `json:"pool_units"`
	LowStockLots   int64           `json:"low_stock_lots"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
}

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db}
}

func (r *reportRepo) GetStockStats(lowStockThreshold int) (*StockStats, error) {
	var stats StockStats

	if err := r.db.Model(&model.PurchaseLot{}).Count(&stats.TotalLots).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&model.Allocation{}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&stats.TotalUnits).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&model.Allocation{}).
		Where("holder_id IS NULL").
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&stats.PoolUnits).Error; err != nil {
		return nil, err
	}

	// A lot is low on stock when its remaining units across every holder
	// fall under the threshold.
	if err := r.db.Model(&model.Allocation{}).
		Select("lot_id").
		Group("lot_id").
		Having("SUM(quantity) < ?", lowStockThreshold).
		Count(&stats.LowStockLots).Error; err != nil {
		return nil, err
	}

	// Valuation at acquisition cost: remaining units times the lot's unit price.
	var value decimal.Decimal
	err := r.db.Model(&model.Allocation{}).
		Joins("JOIN purchase_lots ON purchase_lots.id = allocations.lot_id AND purchase_lots.deleted_at IS NULL").
		Select("COALESCE(SUM(allocations.quantity * purchase_lots.unit_price), 0)").
		Scan(&value).Error
	if err != nil {
		return nil, err
	}
	stats.InventoryValue = value

	return &stats, nil
}

func (r *reportRepo) GetSalesMovement(startDate, endDate time.Time) ([]SalesMovementData, error) {
	var results []SalesMovementData

	rows, err := r.db.Model(&model.SaleLineItem{}).
		Joins("JOIN sales ON sales.id = sale_line_items.sale_id AND sales.deleted_at IS NULL").
		Select(`
			DATE(sales.created_at) as date,
			COALESCE(SUM(sale_line_items.quantity), 0) as units,
			COALESCE(SUM(sale_line_items.quantity * sale_line_items.unit_price), 0) as revenue
		`).
		Where("sales.created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(sales.created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data SalesMovementData
		if err := rows.Scan(&data.Date, &data.Units, &data.Revenue); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}

func (r *reportRepo) GetRevenue(startDate, endDate time.Time) (decimal.Decimal, int64, error) {
	var revenue decimal.Decimal
	err := r.db.Model(&model.Sale{}).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Select("COALESCE(SUM(total), 0)").
		Scan(&revenue).Error
	if err != nil {
		return decimal.Zero, 0, err
	}

	var count int64
	err = r.db.Model(&model.Sale{}).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Count(&count).Error
	if err != nil {
		return decimal.Zero, 0, err
	}

	return revenue, count, nil
}
