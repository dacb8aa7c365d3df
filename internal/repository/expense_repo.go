package repository

import (
	"errors"
	"time"

	"go-resale-ledger/internal/model"
	"go-resale-ledger/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExpenseFilter struct {
	CategoryID *uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
}

type ExpenseRepository interface {
	CreateCategory(category *model.ExpenseCategory) error
	FindCategoryByID(id uuid.UUID) (*model.ExpenseCategory, error)
	FindAllCategories() ([]model.ExpenseCategory, error)
	UpdateCategory(category *model.ExpenseCategory) error
	DeleteCategory(tx *gorm.DB, id uuid.UUID, deletedBy string) error

	Create(expense *model.Expense) error
	FindByID(id uuid.UUID) (*model.Expense, error)
	FindAll(filter ExpenseFilter) ([]model.Expense, error)
	Update(expense *model.Expense) error
	Delete(id uuid.UUID, deletedBy string) error
}

type expenseRepo struct {
	db *gorm.DB
}

func NewExpenseRepo(db *gorm.DB) ExpenseRepository {
	return &expenseRepo{db}
}

func (r *expenseRepo) CreateCategory(category *model.ExpenseCategory) error {
	return r.db.Create(category).Error
}

func (r *expenseRepo) FindCategoryByID(id uuid.UUID) (*model.ExpenseCategory, error) {
	var category model.ExpenseCategory
	err := r.db.First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "expense category not found")
	}
	return &category, err
}

func (r *expenseRepo) FindAllCategories() ([]model.ExpenseCategory, error) {
	var categories []model.ExpenseCategory
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *expenseRepo) UpdateCategory(category *model.ExpenseCategory) error {
	return r.db.Save(category).Error
}

// DeleteCategory removes the category together with its expenses; the caller
// wraps both deletions in one transaction.
func (r *expenseRepo) DeleteCategory(tx *gorm.DB, id uuid.UUID, deletedBy string) error {
	if err := tx.Model(&model.Expense{}).Where("category_id = ?", id).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	if err := tx.Delete(&model.Expense{}, "category_id = ?", id).Error; err != nil {
		return err
	}
	if err := tx.Model(&model.ExpenseCategory{}).Where("id = ?", id).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return tx.Delete(&model.ExpenseCategory{}, "id = ?", id).Error
}

func (r *expenseRepo) Create(expense *model.Expense) error {
	return r.db.Create(expense).Error
}

func (r *expenseRepo) FindByID(id uuid.UUID) (*model.Expense, error) {
	var expense model.Expense
	err := r.db.Preload("Category").First(&expense, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "expense not found")
	}
	return &expense, err
}

func (r *expenseRepo) FindAll(filter ExpenseFilter) ([]model.Expense, error) {
	q := r.db.Model(&model.Expense{})

	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.DateFrom != nil {
		q = q.Where("expense_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		q = q.Where("expense_date <= ?", *filter.DateTo)
	}

	var expenses []model.Expense
	err := q.Preload("Category").
		Order("expense_date DESC, created_at DESC").
		Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepo) Update(expense *model.Expense) error {
	return r.db.Save(expense).Error
}

func (r *expenseRepo) Delete(id uuid.UUID, deletedBy string) error {
	if err := r.db.Model(&model.Expense{}).Where("id = ?", id).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return r.db.Delete(&model.Expense{}, "id = ?", id).Error
}
