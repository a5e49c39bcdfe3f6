package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/repository"
)

// PortfolioService handles portfolio-related business logic operations.
// Every operation is scoped to the owning user.
type PortfolioService struct {
	portfolioRepo *repository.PortfolioRepository
	userRepo      *repository.UserRepository
}

// NewPortfolioService creates a new PortfolioService with the provided repository dependencies.
func NewPortfolioService(portfolioRepo *repository.PortfolioRepository, userRepo *repository.UserRepository) *PortfolioService {
	return &PortfolioService{
		portfolioRepo: portfolioRepo,
		userRepo:      userRepo,
	}
}

// GetPortfolios retrieves all portfolios of a user ordered by name.
func (s *PortfolioService) GetPortfolios(ctx context.Context, userID string) ([]model.Portfolio, error) {
	return s.portfolioRepo.GetPortfolios(ctx, userID)
}

// GetPortfolio retrieves a single portfolio.
// Returns apperrors.ErrPortfolioNotFound when it does not exist or belongs to another user.
func (s *PortfolioService) GetPortfolio(ctx context.Context, userID, portfolioID string) (model.Portfolio, error) {
	return s.portfolioRepo.GetPortfolio(ctx, userID, portfolioID)
}

// CreatePortfolio creates a portfolio for an existing user.
func (s *PortfolioService) CreatePortfolio(ctx context.Context, userID string, req request.CreatePortfolioRequest) (*model.Portfolio, error) {
	if _, err := s.userRepo.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	portfolio := &model.Portfolio{
		ID:          newID(),
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CreatedAt:   now(),
	}

	if err := s.portfolioRepo.InsertPortfolio(ctx, portfolio); err != nil {
		return nil, fmt.Errorf("failed to create portfolio: %w", err)
	}
	return portfolio, nil
}

// UpdatePortfolio applies the provided fields to an existing portfolio.
func (s *PortfolioService) UpdatePortfolio(ctx context.Context, userID, portfolioID string, req request.UpdatePortfolioRequest) (*model.Portfolio, error) {
	portfolio, err := s.portfolioRepo.GetPortfolio(ctx, userID, portfolioID)
	if err != nil {
		return nil, err
	}

	setString(&portfolio.Name, req.Name)
	if req.Description != nil {
		portfolio.Description = *req.Description
	}

	if err := s.portfolioRepo.UpdatePortfolio(ctx, &portfolio); err != nil {
		return nil, fmt.Errorf("failed to update portfolio: %w", err)
	}
	return &portfolio, nil
}

// DeletePortfolio removes a portfolio together with its holdings.
func (s *PortfolioService) DeletePortfolio(ctx context.Context, userID, portfolioID string) error {
	return s.portfolioRepo.DeletePortfolio(ctx, userID, portfolioID)
}
