package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/repository"
)

// UserService handles user accounts and their FIRE settings.
type UserService struct {
	userRepo *repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetUsers returns every user ordered by name.
func (s *UserService) GetUsers(ctx context.Context) ([]model.User, error) {
	return s.userRepo.GetUsers(ctx)
}

// GetUser returns one user. Returns apperrors.ErrUserNotFound when it does not exist.
func (s *UserService) GetUser(ctx context.Context, userID string) (model.User, error) {
	return s.userRepo.GetUser(ctx, userID)
}

// CreateUser creates a user. Unset FIRE settings stay null and fall back to
// the configured defaults when the planning card is computed.
func (s *UserService) CreateUser(ctx context.Context, req request.CreateUserRequest) (*model.User, error) {
	at := now()
	user := &model.User{
		ID:                newID(),
		Name:              strings.TrimSpace(req.Name),
		Email:             strings.ToLower(strings.TrimSpace(req.Email)),
		FireTarget:        nullDecimal(req.FireTarget),
		ExpectedReturn:    nullDecimal(req.ExpectedReturn),
		MonthlyInvestment: nullDecimal(req.MonthlyInvestment),
		CreatedAt:         at,
		UpdatedAt:         at,
	}

	if err := s.userRepo.InsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// UpdateUser applies the provided fields. A zero FIRE setting clears it back
// to the derived default.
func (s *UserService) UpdateUser(ctx context.Context, userID string, req request.UpdateUserRequest) (*model.User, error) {
	user, err := s.userRepo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	setString(&user.Name, req.Name)
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	updateSetting(&user.FireTarget, req.FireTarget)
	updateSetting(&user.ExpectedReturn, req.ExpectedReturn)
	updateSetting(&user.MonthlyInvestment, req.MonthlyInvestment)
	user.UpdatedAt = now()

	if err := s.userRepo.UpdateUser(ctx, &user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &user, nil
}

func updateSetting(dst *decimal.NullDecimal, src *decimal.Decimal) {
	switch {
	case src == nil:
	case src.IsZero():
		*dst = decimal.NullDecimal{}
	default:
		*dst = decimal.NewNullDecimal(*src)
	}
}

// DeleteUser removes the user and, through cascading foreign keys, every
// record the user owns.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	return s.userRepo.DeleteUser(ctx, userID)
}
