package repository

import (
	"errors"

	"go-resale-ledger/internal/model"
	"go-resale-ledger/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LotCategoryRepository interface {
	Create(category *model.LotCategory) error
	FindByID(id uuid.UUID) (*model.LotCategory, error)
	FindAll() ([]model.LotCategory, error)
	Update(category *model.LotCategory) error
	SoftDelete(id uuid.UUID, deletedBy string) error
	CountLots(id uuid.UUID) (int64, error)
}

type lotCategoryRepo struct {
	db *gorm.DB
}

func NewLotCategoryRepo(db *gorm.DB) LotCategoryRepository {
	return &lotCategoryRepo{db}
}

func (r *lotCategoryRepo) Create(category *model.LotCategory) error {
	return r.db.Create(category).Error
}

func (r *lotCategoryRepo) FindByID(id uuid.UUID) (*model.LotCategory, error) {
	var category model.LotCategory
	err := r.db.First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "category not found")
	}
	return &category, err
}

func (r *lotCategoryRepo) FindAll() ([]model.LotCategory, error) {
	var categories []model.LotCategory
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *lotCategoryRepo) Update(category *model.LotCategory) error {
	return r.db.Save(category).Error
}

func (r *lotCategoryRepo) SoftDelete(id uuid.UUID, deletedBy string) error {
	if err := r.db.Model(&model.LotCategory{}).Where("id = ?", id).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return r.db.Delete(&model.LotCategory{}, "id = ?", id).Error
}

// CountLots counts live lots still referencing the category; deletion is
// blocked while any remain.
func (r *lotCategoryRepo) CountLots(id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.PurchaseLot{}).Where("category_id = ?", id).Count(&count).Error
	return count, err
}
