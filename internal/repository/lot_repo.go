package repository

import (
	"errors"

	"go-resale-ledger/internal/model"
	"go-resale-ledger/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LotFilter narrows lot listings. Search matches name substring or exact
// IMEI/barcode, the lookups the scanner-driven UIs perform.
type LotFilter struct {
	Search     string
	CategoryID *uuid.UUID
	Page       int
	PageSize   int
}

type LotRepository interface {
	Create(tx *gorm.DB, lot *model.PurchaseLot) error
	FindByID(id uuid.UUID) (*model.PurchaseLot, error)
	FindByIMEI(imei string) (*model.PurchaseLot, error)
	FindAll(filter LotFilter) ([]model.PurchaseLot, int64, error)
	Update(lot *model.PurchaseLot) error
	UpdateFields(id uuid.UUID, updates map[string]interface{}) error
	SoftDelete(tx *gorm.DB, id uuid.UUID, deletedBy string) error
}

type lotRepo struct {
	db *gorm.DB
}

func NewLotRepo(db *gorm.DB) LotRepository {
	return &lotRepo{db}
}

func (r *lotRepo) Create(tx *gorm.DB, lot *model.PurchaseLot) error {
	return tx.Create(lot).Error
}

func (r *lotRepo) FindByID(id uuid.UUID) (*model.PurchaseLot, error) {
	var lot model.PurchaseLot
	err := r.db.Preload("Allocations").Preload("Category").First(&lot, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "lot not found")
	}
	return &lot, err
}

func (r *lotRepo) FindByIMEI(imei string) (*model.PurchaseLot, error) {
	var lot model.PurchaseLot
	err := r.db.First(&lot, "imei = ?", imei).Error
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

func (r *lotRepo) FindAll(filter LotFilter) ([]model.PurchaseLot, int64, error) {
	q := r.db.Model(&model.PurchaseLot{})

	if filter.Search != "" {
		q = q.Where("name LIKE ? OR imei = ? OR barcode = ?",
			"%"+filter.Search+"%", filter.Search, filter.Search)
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	var lots []model.PurchaseLot
	err := q.Preload("Category").Order("purchase_date DESC, created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&lots).Error
	return lots, total, err
}

func (r *lotRepo) Update(lot *model.PurchaseLot) error {
	return r.db.Save(lot).Error
}

func (r *lotRepo) UpdateFields(id uuid.UUID, updates map[string]interface{}) error {
	res := r.db.Model(&model.PurchaseLot{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "lot not found")
	}
	return nil
}

func (r *lotRepo) SoftDelete(tx *gorm.DB, id uuid.UUID, deletedBy string) error {
	if err := tx.Model(&model.PurchaseLot{}).Where("id = ?", id).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return tx.Delete(&model.PurchaseLot{}, "id = ?", id).Error
}
