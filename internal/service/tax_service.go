package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/repository"
)

// TaxProfileService manages the per-user tax profile and the jurisdiction table.
type TaxProfileService struct {
	taxRepo  *repository.TaxRepository
	userRepo *repository.UserRepository
}

// NewTaxProfileService creates a new TaxProfileService.
func NewTaxProfileService(taxRepo *repository.TaxRepository, userRepo *repository.UserRepository) *TaxProfileService {
	return &TaxProfileService{
		taxRepo:  taxRepo,
		userRepo: userRepo,
	}
}

// GetTaxProfile returns the user's profile or apperrors.ErrTaxProfileNotFound.
func (s *TaxProfileService) GetTaxProfile(ctx context.Context, userID string) (model.TaxProfile, error) {
	return s.taxRepo.GetTaxProfile(ctx, userID)
}

// SetTaxProfile creates or replaces the user's profile. The jurisdiction code
// is stored upper-cased and need not appear in the comparison table.
func (s *TaxProfileService) SetTaxProfile(ctx context.Context, userID string, req request.TaxProfileRequest) (*model.TaxProfile, error) {
	if _, err := s.userRepo.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	profile := &model.TaxProfile{
		UserID:        userID,
		Jurisdiction:  strings.ToUpper(strings.TrimSpace(req.Jurisdiction)),
		FilingStatus:  strings.TrimSpace(req.FilingStatus),
		EffectiveRate: req.EffectiveRate,
		UpdatedAt:     now(),
	}
	if profile.FilingStatus == "" {
		profile.FilingStatus = "single"
	}

	if err := s.taxRepo.UpsertTaxProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save tax profile: %w", err)
	}
	return profile, nil
}

// DeleteTaxProfile removes the user's profile.
func (s *TaxProfileService) DeleteTaxProfile(ctx context.Context, userID string) error {
	return s.taxRepo.DeleteTaxProfile(ctx, userID)
}

// GetJurisdictions returns the comparison table ordered by code.
func (s *TaxProfileService) GetJurisdictions(ctx context.Context) ([]model.TaxJurisdiction, error) {
	return s.taxRepo.GetJurisdictions(ctx)
}
