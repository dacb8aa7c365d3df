package repository

import (
	"errors"
	"time"

	"go-resale-ledger/internal/model"
	"go-resale-ledger/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleFilter narrows sale listings for the history screens.
type SaleFilter struct {
	SellerID *uuid.UUID
	Customer string
	DateFrom *time.Time
	DateTo   *time.Time
	OrderBy  string // newest | oldest | highest_value | lowest_value
	Page     int
	PageSize int
}

// SellerSummary aggregates sales per seller for the admin dashboard.
type SellerSummary struct {
	SellerID    uuid.UUID       `json:"seller_id"`
	SellerName  string          `json:"seller_name"`
	SellerEmail string          `json:"seller_email"`
	SaleCount   int64           `json:"sale_count"`
	UnitsSold   int64           `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type SaleRepository interface {
	Create(tx *gorm.DB, sale *model.Sale) error
	FindByID(id uuid.UUID) (*model.Sale, error)
	FindLine(saleID, lineID uuid.UUID) (*model.SaleLineItem, error)
	FindAll(filter SaleFilter) ([]model.Sale, int64, error)
	UpdateLine(tx *gorm.DB, line *model.SaleLineItem) error
	UpdateTotal(tx *gorm.DB, saleID uuid.UUID, total decimal.Decimal, updatedBy string) error
	DeleteLine(tx *gorm.DB, lineID uuid.UUID, deletedBy string) error
	Delete(tx *gorm.DB, saleID uuid.UUID, deletedBy string) error
	SellerSummaries(from, to *time.Time) ([]SellerSummary, error)
	SoldQuantityByLot(lotID uuid.UUID) (int64, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) Create(tx *gorm.DB, sale *model.Sale) error {
	return tx.Create(sale).Error
}

func (r *saleRepo) FindByID(id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Preload("Seller").
		Preload("LineItems").
		Preload("LineItems.Allocation").
		Preload("LineItems.Allocation.Lot").
		First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "sale not found")
	}
	return &sale, err
}

func (r *saleRepo) FindLine(saleID, lineID uuid.UUID) (*model.SaleLineItem, error) {
	var line model.SaleLineItem
	err := r.db.Preload("Allocation").Preload("Allocation.Lot").
		First(&line, "id = ? AND sale_id = ?", lineID, saleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "sale line not found")
	}
	return &line, err
}

func (r *saleRepo) FindAll(filter SaleFilter) ([]model.Sale, int64, error) {
	q := r.db.Model(&model.Sale{})

	if filter.SellerID != nil {
		q = q.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.Customer != "" {
		q = q.Where("customer_name LIKE ?", "%"+filter.Customer+"%")
	}
	if filter.DateFrom != nil {
		q = q.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		q = q.Where("created_at <= ?", *filter.DateTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filter.OrderBy {
	case "oldest":
		q = q.Order("created_at ASC")
	case "highest_value":
		q = q.Order("total DESC")
	case "lowest_value":
		q = q.Order("total ASC")
	default:
		q = q.Order("created_at DESC")
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}

	var sales []model.Sale
	err := q.Preload("Seller").
		Preload("LineItems").
		Preload("LineItems.Allocation.Lot").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) UpdateLine(tx *gorm.DB, line *model.SaleLineItem) error {
	return tx.Save(line).Error
}

func (r *saleRepo) UpdateTotal(tx *gorm.DB, saleID uuid.UUID, total decimal.Decimal, updatedBy string) error {
	return tx.Model(&model.Sale{}).Where("id = ?", saleID).
		Updates(map[string]interface{}{"total": total, "updated_by": updatedBy}).Error
}

func (r *saleRepo) DeleteLine(tx *gorm.DB, lineID uuid.UUID, deletedBy string) error {
	if err := tx.Model(&model.SaleLineItem{}).Where("id = ?", lineID).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return tx.Delete(&model.SaleLineItem{}, "id = ?", lineID).Error
}

func (r *saleRepo) Delete(tx *gorm.DB, saleID uuid.UUID, deletedBy string) error {
	if err := tx.Model(&model.SaleLineItem{}).Where("sale_id = ?", saleID).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	if err := tx.Delete(&model.SaleLineItem{}, "sale_id = ?", saleID).Error; err != nil {
		return err
	}
	if err := tx.Model(&model.Sale{}).Where("id = ?", saleID).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Sale{}, "id = ?", saleID).Error
}

func (r *saleRepo) SellerSummaries(from, to *time.Time) ([]SellerSummary, error) {
	type row struct {
		SellerID    uuid.UUID
		SellerName  string
		SellerEmail string
		SaleCount   int64
		UnitsSold   int64
		Revenue     decimal.Decimal
	}

	q := r.db.Model(&model.Sale{}).
		Select(`sales.seller_id as seller_id,
			users.full_name as seller_name,
			users.email as seller_email,
			COUNT(DISTINCT sales.id) as sale_count,
			COALESCE(SUM(sale_line_items.quantity), 0) as units_sold,
			COALESCE(SUM(sale_line_items.quantity * sale_line_items.unit_price), 0) as revenue`).
		Joins("JOIN users ON users.id = sales.seller_id").
		Joins("JOIN sale_line_items ON sale_line_items.sale_id = sales.id AND sale_line_items.deleted_at IS NULL").
		Group("sales.seller_id, users.full_name, users.email").
		Order("revenue DESC")

	if from != nil {
		q = q.Where("sales.created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("sales.created_at <= ?", *to)
	}

	var rows []row
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]SellerSummary, len(rows))
	for i, s := range rows {
		out[i] = SellerSummary(s)
	}
	return out, nil
}

// SoldQuantityByLot sums the units currently recorded as sold from a lot.
// Used by conservation checks and by lot deletion validation.
func (r *saleRepo) SoldQuantityByLot(lotID uuid.UUID) (int64, error) {
	var sold int64
	err := r.db.Model(&model.SaleLineItem{}).
		Joins("JOIN allocations ON allocations.id = sale_line_items.allocation_id").
		Where("allocations.lot_id = ?", lotID).
		Select("COALESCE(SUM(sale_line_items.quantity), 0)").
		Scan(&sold).Error
	return sold, err
}
