package service

import (
	"time"

	"go-resale-ledger/internal/model"
	"go-resale-ledger/internal/repository"
	"go-resale-ledger/internal/ws"
	"go-resale-ledger/pkg/apperr"
	"go-resale-ledger/pkg/jwt"

	"github.com/google/uuid"
)

// sessionInactivityLimit forces re-login after this much time without a
// heartbeat.
const sessionInactivityLimit = 5 * time.Minute

type AuthService interface {
	Login(email, password string) (*LoginResponse, error)
	ResetPassword(email, oldPassword, newPassword string) error
	ValidateToken(tokenString string) (*TokenValidationResponse, error)
	Heartbeat(userID uuid.UUID) error
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type TokenValidationResponse struct {
	User model.UserResponse `json:"user"`
}

type authService struct {
	userRepo repository.UserRepository
	wsHub    *ws.Hub
}

func NewAuthService(userRepo repository.UserRepository, hub *ws.Hub) AuthService {
	return &authService{
		userRepo: userRepo,
		wsHub:    hub,
	}
}

func (s *authService) Login(email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "invalid email or password")
	}
	if !user.IsActive {
		return nil, apperr.New(apperr.KindInvalidOperation, "user account is inactive")
	}
	if !user.CheckPassword(password) {
		return nil, apperr.New(apperr.KindValidation, "invalid email or password")
	}

	// Single session: a fresh token version invalidates every earlier token.
	now := time.Now()
	user.TokenVersion = uuid.New().String()
	user.LastSeenAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, apperr.Wrap(err, "failed to update session")
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, user.FullName, user.IsAdmin, user.TokenVersion)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to generate token")
	}

	return &LoginResponse{
		Token: token,
		User:  user.ToResponse(),
	}, nil
}

func (s *authService) ResetPassword(email, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	if !user.CheckPassword(oldPassword) {
		return apperr.New(apperr.KindValidation, "current password is incorrect")
	}
	if len(newPassword) < 6 {
		return apperr.New(apperr.KindValidation, "new password must be at least 6 characters")
	}
	if err := user.SetPassword(newPassword); err != nil {
		return apperr.Wrap(err, "failed to hash new password")
	}
	// Changing the password ends other sessions too.
	user.TokenVersion = uuid.New().String()
	return s.userRepo.Update(user)
}

func (s *authService) ValidateToken(tokenString string) (*TokenValidationResponse, error) {
	claims, err := jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, apperr.Wrap(err, "invalid token")
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}
	if !user.IsActive {
		return nil, apperr.New(apperr.KindInvalidOperation, "user account is inactive")
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, apperr.New(apperr.KindValidation, "session expired (logged in on another device)")
	}
	if user.LastSeenAt == nil || time.Since(*user.LastSeenAt) > sessionInactivityLimit {
		return nil, apperr.New(apperr.KindValidation, "session expired due to inactivity")
	}

	return &TokenValidationResponse{User: user.ToResponse()}, nil
}

func (s *authService) Heartbeat(userID uuid.UUID) error {
	if err := s.userRepo.UpdateLastSeen(userID); err != nil {
		return err
	}

	s.wsHub.PublishPresence(userID.String(), "online")
	return nil
}
