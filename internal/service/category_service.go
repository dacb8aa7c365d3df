package service

import (
	"go-resale-ledger/internal/model"
	"go-resale-ledger/internal/repository"
	"go-resale-ledger/pkg/apperr"
	"go-resale-ledger/pkg/validator"

	"github.com/google/uuid"
)

type LotCategoryRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	Color       *string `json:"color"`
	Active      *bool   `json:"active"`
}

// LotCategoryService manages the optional lot grouping labels. A category
// with lots still assigned to it cannot be deleted.
type LotCategoryService interface {
	CreateCategory(actor Actor, req *LotCategoryRequest) (*model.LotCategory, error)
	UpdateCategory(actor Actor, id uuid.UUID, req *LotCategoryRequest) (*model.LotCategory, error)
	ListCategories() ([]model.LotCategory, error)
	DeleteCategory(actor Actor, id uuid.UUID) error
}

type lotCategoryService struct {
	categoryRepo repository.LotCategoryRepository
}

func NewLotCategoryService(categoryRepo repository.LotCategoryRepository) LotCategoryService {
	return &lotCategoryService{categoryRepo: categoryRepo}
}

func (s *lotCategoryService) CreateCategory(actor Actor, req *LotCategoryRequest) (*model.LotCategory, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Newf(apperr.KindValidation, "field '%s' failed on tag '%s'", errs[0].FailedField, errs[0].Tag)
	}

	category := &model.LotCategory{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		Active:      true,
	}
	category.CreatedBy = actor.audit()
	category.UpdatedBy = actor.audit()

	if err := s.categoryRepo.Create(category); err != nil {
		return nil, apperr.Wrap(err, "failed to create category")
	}
	return category, nil
}

func (s *lotCategoryService) UpdateCategory(actor Actor, id uuid.UUID, req *LotCategoryRequest) (*model.LotCategory, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Newf(apperr.KindValidation, "field '%s' failed on tag '%s'", errs[0].FailedField, errs[0].Tag)
	}

	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	category.Name = req.Name
	category.Description = req.Description
	category.Icon = req.Icon
	category.Color = req.Color
	if req.Active != nil {
		category.Active = *req.Active
	}
	category.UpdatedBy = actor.audit()

	if err := s.categoryRepo.Update(category); err != nil {
		return nil, apperr.Wrap(err, "failed to update category")
	}
	return category, nil
}

func (s *lotCategoryService) ListCategories() ([]model.LotCategory, error) {
	return s.categoryRepo.FindAll()
}

func (s *lotCategoryService) DeleteCategory(actor Actor, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(id); err != nil {
		return err
	}

	count, err := s.categoryRepo.CountLots(id)
	if err != nil {
		return apperr.Wrap(err, "failed to count category lots")
	}
	if count > 0 {
		return apperr.New(apperr.KindInvalidOperation, "category still has lots assigned to it")
	}

	return s.categoryRepo.SoftDelete(id, actor.audit())
}
