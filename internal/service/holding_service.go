package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/marketdata"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/repository"
)

// HoldingService manages manually entered holdings. Synced holdings arrive
// through SyncedAccountService and merged ones through reconciliation.
type HoldingService struct {
	holdingRepo   *repository.HoldingRepository
	portfolioRepo *repository.PortfolioRepository
}

// NewHoldingService creates a new HoldingService.
func NewHoldingService(holdingRepo *repository.HoldingRepository, portfolioRepo *repository.PortfolioRepository) *HoldingService {
	return &HoldingService{
		holdingRepo:   holdingRepo,
		portfolioRepo: portfolioRepo,
	}
}

// GetHoldings returns the user's live holdings, optionally for one portfolio.
func (s *HoldingService) GetHoldings(ctx context.Context, userID, portfolioID string) ([]model.Holding, error) {
	if portfolioID != "" {
		if _, err := s.portfolioRepo.GetPortfolio(ctx, userID, portfolioID); err != nil {
			return nil, err
		}
	}
	return s.holdingRepo.GetHoldings(ctx, userID, portfolioID)
}

// GetHolding returns one live holding.
func (s *HoldingService) GetHolding(ctx context.Context, userID, holdingID string) (model.Holding, error) {
	return s.holdingRepo.GetHolding(ctx, userID, holdingID)
}

// CreateHolding adds a MANUAL holding to one of the user's portfolios.
// The ticker is stored upper-cased; prices stay empty until the next refresh.
func (s *HoldingService) CreateHolding(ctx context.Context, userID string, req request.CreateHoldingRequest) (*model.Holding, error) {
	if _, err := s.portfolioRepo.GetPortfolio(ctx, userID, req.PortfolioID); err != nil {
		return nil, err
	}
	ticker, err := marketdata.NormalizeTicker(req.Ticker)
	if err != nil {
		return nil, err
	}

	at := now()
	holding := &model.Holding{
		ID:          newID(),
		UserID:      userID,
		PortfolioID: req.PortfolioID,
		Ticker:      ticker,
		Sector:      strings.TrimSpace(req.Sector),
		Shares:      req.Shares,
		CostBasis:   req.CostBasis,
		DataSource:  model.DataSourceManual,
		CreatedAt:   at,
		UpdatedAt:   at,
	}

	if err := s.holdingRepo.InsertHolding(ctx, holding); err != nil {
		return nil, fmt.Errorf("failed to create holding: %w", err)
	}
	return holding, nil
}

// UpdateHolding applies the provided fields. Moving a holding requires the
// target portfolio to belong to the same user.
func (s *HoldingService) UpdateHolding(ctx context.Context, userID, holdingID string, req request.UpdateHoldingRequest) (*model.Holding, error) {
	holding, err := s.holdingRepo.GetHolding(ctx, userID, holdingID)
	if err != nil {
		return nil, err
	}

	if req.PortfolioID != nil && *req.PortfolioID != holding.PortfolioID {
		if _, err := s.portfolioRepo.GetPortfolio(ctx, userID, *req.PortfolioID); err != nil {
			return nil, err
		}
		holding.PortfolioID = *req.PortfolioID
	}
	if req.Ticker != nil {
		ticker, err := marketdata.NormalizeTicker(*req.Ticker)
		if err != nil {
			return nil, err
		}
		holding.Ticker = ticker
	}
	setString(&holding.Sector, req.Sector)
	setDecimal(&holding.Shares, req.Shares)
	setDecimal(&holding.CostBasis, req.CostBasis)
	holding.UpdatedAt = now()

	if err := s.holdingRepo.UpdateHolding(ctx, &holding); err != nil {
		return nil, fmt.Errorf("failed to update holding: %w", err)
	}
	return &holding, nil
}

// DeleteHolding soft-deletes a holding so reconciliation history stays intact.
func (s *HoldingService) DeleteHolding(ctx context.Context, userID, holdingID string) error {
	return s.holdingRepo.SoftDeleteHolding(ctx, userID, holdingID, now())
}
