package service

import (
	"go-resale-ledger/internal/model"
	"go-resale-ledger/internal/repository"
	"go-resale-ledger/pkg/apperr"
	"go-resale-ledger/pkg/validator"

	"github.com/google/uuid"
)

type UserService interface {
	CreateUser(actor Actor, req *CreateUserRequest) (*model.User, error)
	UpdateUser(actor Actor, userID uuid.UUID, req *UpdateUserRequest) (*model.User, error)
	GetAllUsers() ([]model.UserResponse, error)
	GetSellers() ([]model.UserResponse, error)
	GetUserByID(id uuid.UUID) (*model.UserResponse, error)
}

type CreateUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FullName    string `json:"full_name" validate:"required"`
	PhoneNumber string `json:"phone_number"`
	IsAdmin     bool   `json:"is_admin"`
}

type UpdateUserRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=6"` // Optional
	FullName    string  `json:"full_name" validate:"required"`
	PhoneNumber string  `json:"phone_number"`
	IsAdmin     *bool   `json:"is_admin"`
	IsActive    *bool   `json:"is_active"`
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) CreateUser(actor Actor, req *CreateUserRequest) (*model.User, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Newf(apperr.KindValidation, "field '%s' failed on tag '%s'", errs[0].FailedField, errs[0].Tag)
	}

	existing, _ := s.userRepo.FindByEmail(req.Email)
	if existing != nil {
		return nil, apperr.New(apperr.KindConflict, "email already exists")
	}

	user := &model.User{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		IsAdmin:     req.IsAdmin,
		IsActive:    true,
	}
	user.CreatedBy = actor.audit()
	user.UpdatedBy = actor.audit()

	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperr.Wrap(err, "failed to hash password")
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, apperr.Wrap(err, "failed to create user")
	}
	return user, nil
}

func (s *userService) UpdateUser(actor Actor, userID uuid.UUID, req *UpdateUserRequest) (*model.User, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Newf(apperr.KindValidation, "field '%s' failed on tag '%s'", errs[0].FailedField, errs[0].Tag)
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if req.Email != user.Email {
		existing, _ := s.userRepo.FindByEmail(req.Email)
		if existing != nil {
			return nil, apperr.New(apperr.KindConflict, "email already exists")
		}
	}

	user.Email = req.Email
	user.FullName = req.FullName
	user.PhoneNumber = req.PhoneNumber
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = actor.audit()

	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, apperr.Wrap(err, "failed to hash password")
		}
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, apperr.Wrap(err, "failed to update user")
	}
	return s.userRepo.FindByID(userID)
}

func (s *userService) GetAllUsers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}
	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetSellers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindSellers()
	if err != nil {
		return nil, err
	}
	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	response := user.ToResponse()
	return &response, nil
}
