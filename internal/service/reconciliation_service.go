package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/reconcile"
	"github.com/ndewijer/Income-Clarity-Backend/internal/repository"
)

// ReconciliationService finds duplicate positions between manual and synced
// holdings and applies or reverts the user's decisions.
type ReconciliationService struct {
	store     *repository.Store
	tolerance decimal.Decimal
	clock     func() time.Time
}

// NewReconciliationService creates a new ReconciliationService matching within tolerance.
func NewReconciliationService(store *repository.Store, tolerance decimal.Decimal) *ReconciliationService {
	return &ReconciliationService{
		store:     store,
		tolerance: tolerance,
		clock:     now,
	}
}

// AutoResult reports what an automatic pass did.
type AutoResult struct {
	Applied []model.Reconciliation `json:"applied"`
	// Pending are the candidates that need an explicit user decision.
	Pending []reconcile.Candidate `json:"pending"`
}

// GetCandidates returns the candidate pairs for the user's live holdings.
// It never writes.
func (s *ReconciliationService) GetCandidates(ctx context.Context, userID string) ([]reconcile.Candidate, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	holdings, err := s.store.GetHoldings(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	return reconcile.MatchCandidates(holdings, holdings, s.tolerance), nil
}

// Apply resolves the pair of manual and synced holdings with the given choice.
// Returns apperrors.ErrReconciliationConflict when either holding changed or
// was reconciled since it was read.
func (s *ReconciliationService) Apply(ctx context.Context, userID string, req request.ApplyReconciliationRequest) (model.Reconciliation, error) {
	choice, err := reconcile.ParseChoice(req.Choice)
	if err != nil {
		return model.Reconciliation{}, err
	}

	manual, err := s.store.Holdings.GetHolding(ctx, userID, req.ManualHoldingID)
	if err != nil {
		return model.Reconciliation{}, err
	}
	synced, err := s.store.Holdings.GetHolding(ctx, userID, req.SyncedHoldingID)
	if err != nil {
		return model.Reconciliation{}, err
	}

	pairs := reconcile.MatchCandidates([]model.Holding{manual}, []model.Holding{synced}, s.tolerance)
	if len(pairs) != 1 {
		return model.Reconciliation{}, fmt.Errorf("%w: holdings %s and %s are not a manual/synced pair of one ticker",
			apperrors.ErrInvalidInput, manual.ID, synced.ID)
	}

	return s.apply(ctx, pairs[0], choice)
}

func (s *ReconciliationService) apply(ctx context.Context, c reconcile.Candidate, choice reconcile.Choice) (model.Reconciliation, error) {
	res, err := reconcile.Reconcile(c, choice, s.clock(), newID)
	if err != nil {
		return model.Reconciliation{}, err
	}
	rec, err := s.store.SaveReconciliation(ctx, res)
	if err != nil {
		return model.Reconciliation{}, err
	}
	log.Printf("reconciled %s for user %s with %s (reconciliation %s)", rec.Ticker, rec.UserID, rec.Choice, rec.ID)
	return rec, nil
}

// AutoReconcile keeps the synced side of every unambiguous HIGH confidence
// pair. All other pairs are returned untouched for the user to decide. A pair
// that changed while the pass ran is left pending as well.
func (s *ReconciliationService) AutoReconcile(ctx context.Context, userID string) (*AutoResult, error) {
	candidates, err := s.GetCandidates(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &AutoResult{
		Applied: []model.Reconciliation{},
		Pending: []reconcile.Candidate{},
	}
	for _, c := range candidates {
		if !reconcile.AutoResolvable(c) {
			result.Pending = append(result.Pending, c)
			continue
		}
		rec, err := s.apply(ctx, c, reconcile.KeepSynced)
		if errors.Is(err, apperrors.ErrReconciliationConflict) {
			result.Pending = append(result.Pending, c)
			continue
		}
		if err != nil {
			return nil, err
		}
		result.Applied = append(result.Applied, rec)
	}
	return result, nil
}

// Undo restores both originals of a reconciliation exactly as they were.
func (s *ReconciliationService) Undo(ctx context.Context, userID, reconciliationID string) (model.Reconciliation, error) {
	rec, err := s.store.UndoReconciliation(ctx, userID, reconciliationID, s.clock())
	if err != nil {
		return model.Reconciliation{}, err
	}
	log.Printf("undid reconciliation %s of %s for user %s", rec.ID, rec.Ticker, rec.UserID)
	return rec, nil
}

// GetReconciliations lists the user's reconciliation history, newest first.
func (s *ReconciliationService) GetReconciliations(ctx context.Context, userID string) ([]model.Reconciliation, error) {
	return s.store.Reconciliations.GetReconciliations(ctx, userID)
}

// GetReconciliation returns one reconciliation.
func (s *ReconciliationService) GetReconciliation(ctx context.Context, userID, reconciliationID string) (model.Reconciliation, error) {
	return s.store.Reconciliations.GetReconciliation(ctx, userID, reconciliationID)
}
