package service

import (
	"time"

	"go-resale-ledger/internal/model"
	"go-resale-ledger/internal/repository"
	"go-resale-ledger/pkg/apperr"
	"go-resale-ledger/pkg/logger"
	"go-resale-ledger/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// expenseDateLayout is the wire format for expense dates; expenses carry a
// date, never a time of day.
const expenseDateLayout = "2006-01-02"

type CreateExpenseRequest struct {
	Name        string          `json:"name" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	CategoryID  uuid.UUID       `json:"category_id" validate:"uuid_required"`
	Description *string         `json:"description"`
	Date        string          `json:"date" validate:"required"`
}

type UpdateExpenseRequest struct {
	Name        *string          `json:"name"`
	Amount      *decimal.Decimal `json:"amount"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	Description *string          `json:"description"`
	Date        *string          `json:"date"`
}

type ExpenseCategoryRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

// ExpenseService tracks operating costs. Expenses never touch stock or
// sales; they exist for the financial picture alongside the sales ledger.
type ExpenseService interface {
	CreateCategory(actor Actor, req *ExpenseCategoryRequest) (*model.ExpenseCategory, error)
	UpdateCategory(actor Actor, id uuid.UUID, req *ExpenseCategoryRequest) (*model.ExpenseCategory, error)
	ListCategories() ([]model.ExpenseCategory, error)
	DeleteCategory(actor Actor, id uuid.UUID) error

	CreateExpense(actor Actor, req *CreateExpenseRequest) (*model.Expense, error)
	UpdateExpense(actor Actor, id uuid.UUID, req *UpdateExpenseRequest) (*model.Expense, error)
	ListExpenses(filter repository.ExpenseFilter) ([]model.Expense, error)
	DeleteExpense(actor Actor, id uuid.UUID) error
}

type expenseService struct {
	expenseRepo repository.ExpenseRepository
	db          *gorm.DB
}

func NewExpenseService(expenseRepo repository.ExpenseRepository, db *gorm.DB) ExpenseService {
	return &expenseService{
		expenseRepo: expenseRepo,
		db:          db,
	}
}

func (s *expenseService) CreateCategory(actor Actor, req *ExpenseCategoryRequest) (*model.ExpenseCategory, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Newf(apperr.KindValidation, "field '%s' failed on tag '%s'", errs[0].FailedField, errs[0].Tag)
	}

	category := &model.ExpenseCategory{
		Name:        req.Name,
		Description: req.Description,
	}
	category.CreatedBy = actor.audit()
	category.UpdatedBy = actor.audit()

	if err := s.expenseRepo.CreateCategory(category); err != nil {
		return nil, apperr.Wrap(err, "failed to create expense category")
	}
	return category, nil
}

func (s *expenseService) UpdateCategory(actor Actor, id uuid.UUID, req *ExpenseCategoryRequest) (*model.ExpenseCategory, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Newf(apperr.KindValidation, "field '%s' failed on tag '%s'", errs[0].FailedField, errs[0].Tag)
	}

	category, err := s.expenseRepo.FindCategoryByID(id)
	if err != nil {
		return nil, err
	}

	category.Name = req.Name
	category.Description = req.Description
	category.UpdatedBy = actor.audit()

	if err := s.expenseRepo.UpdateCategory(category); err != nil {
		return nil, apperr.Wrap(err, "failed to update expense category")
	}
	return category, nil
}

func (s *expenseService) ListCategories() ([]model.ExpenseCategory, error) {
	return s.expenseRepo.FindAllCategories()
}

// DeleteCategory removes the category and every expense filed under it, in
// one transaction.
func (s *expenseService) DeleteCategory(actor Actor, id uuid.UUID) error {
	if _, err := s.expenseRepo.FindCategoryByID(id); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.expenseRepo.DeleteCategory(tx, id, actor.audit())
	})
	if err != nil {
		return apperr.Wrap(err, "failed to delete expense category")
	}

	logger.WithOp("expense_category_delete").
		WithField("category_id", id).
		Info("expense category removed with its expenses")
	return nil
}

func (s *expenseService) CreateExpense(actor Actor, req *CreateExpenseRequest) (*model.Expense, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Newf(apperr.KindValidation, "field '%s' failed on tag '%s'", errs[0].FailedField, errs[0].Tag)
	}

	date, err := parseExpenseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if _, err := s.expenseRepo.FindCategoryByID(req.CategoryID); err != nil {
		return nil, err
	}

	expense := &model.Expense{
		Name:        req.Name,
		Amount:      req.Amount,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		ExpenseDate: date,
	}
	expense.CreatedBy = actor.audit()
	expense.UpdatedBy = actor.audit()

	if err := s.expenseRepo.Create(expense); err != nil {
		return nil, apperr.Wrap(err, "failed to create expense")
	}
	return s.expenseRepo.FindByID(expense.ID)
}

func (s *expenseService) UpdateExpense(actor Actor, id uuid.UUID, req *UpdateExpenseRequest) (*model.Expense, error) {
	expense, err := s.expenseRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperr.New(apperr.KindValidation, "name must not be empty")
		}
		expense.Name = *req.Name
	}
	if req.Amount != nil {
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, apperr.New(apperr.KindValidation, "amount must be positive")
		}
		expense.Amount = *req.Amount
	}
	if req.CategoryID != nil {
		if _, err := s.expenseRepo.FindCategoryByID(*req.CategoryID); err != nil {
			return nil, err
		}
		expense.CategoryID = *req.CategoryID
	}
	if req.Description != nil {
		expense.Description = req.Description
	}
	if req.Date != nil {
		date, err := parseExpenseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		expense.ExpenseDate = date
	}
	expense.UpdatedBy = actor.audit()

	if err := s.expenseRepo.Update(expense); err != nil {
		return nil, apperr.Wrap(err, "failed to update expense")
	}
	return s.expenseRepo.FindByID(id)
}

func (s *expenseService) ListExpenses(filter repository.ExpenseFilter) ([]model.Expense, error) {
	return s.expenseRepo.FindAll(filter)
}

func (s *expenseService) DeleteExpense(actor Actor, id uuid.UUID) error {
	if _, err := s.expenseRepo.FindByID(id); err != nil {
		return err
	}
	return s.expenseRepo.Delete(id, actor.audit())
}

func parseExpenseDate(value string) (time.Time, error) {
	date, err := time.Parse(expenseDateLayout, value)
	if err != nil {
		return time.Time{}, apperr.New(apperr.KindValidation, "date must use the YYYY-MM-DD format")
	}
	return date, nil
}
