package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/reconcile"
)

// Store groups the repositories behind one connection and implements the
// record store read paths and the transactional reconciliation writes.
type Store struct {
	db *sql.DB

	Users           *UserRepository
	Portfolios      *PortfolioRepository
	Holdings        *HoldingRepository
	Income          *IncomeRepository
	Expenses        *ExpenseRepository
	Tax             *TaxRepository
	Accounts        *SyncedAccountRepository
	Reconciliations *ReconciliationRepository
}

// NewStore creates a Store over db.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:              db,
		Users:           NewUserRepository(db),
		Portfolios:      NewPortfolioRepository(db),
		Holdings:        NewHoldingRepository(db),
		Income:          NewIncomeRepository(db),
		Expenses:        NewExpenseRepository(db),
		Tax:             NewTaxRepository(db),
		Accounts:        NewSyncedAccountRepository(db),
		Reconciliations: NewReconciliationRepository(db),
	}
}

func (s *Store) withTx(tx *sql.Tx) *Store {
	return &Store{
		db:              s.db,
		Users:           s.Users.WithTx(tx),
		Portfolios:      s.Portfolios.WithTx(tx),
		Holdings:        s.Holdings.WithTx(tx),
		Income:          s.Income.WithTx(tx),
		Expenses:        s.Expenses.WithTx(tx),
		Tax:             s.Tax.WithTx(tx),
		Accounts:        s.Accounts.WithTx(tx),
		Reconciliations: s.Reconciliations.WithTx(tx),
	}
}

// InTx runs fn against a Store bound to one transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Printf("failed to roll back transaction: %v", rbErr)
		}
	}()

	if err := fn(s.withTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetHoldings returns the user's live holdings, optionally for one portfolio.
func (s *Store) GetHoldings(ctx context.Context, userID, portfolioID string) ([]model.Holding, error) {
	return s.Holdings.GetHoldings(ctx, userID, portfolioID)
}

// GetIncome returns the user's income received within rng.
func (s *Store) GetIncome(ctx context.Context, userID string, rng model.DateRange) ([]model.IncomeRecord, error) {
	return s.Income.GetIncome(ctx, userID, rng)
}

// GetExpenses returns the user's expenses applicable to rng.
func (s *Store) GetExpenses(ctx context.Context, userID string, rng model.DateRange) ([]model.ExpenseRecord, error) {
	return s.Expenses.GetExpenses(ctx, userID, rng)
}

// GetTaxProfile returns the user's tax profile, or nil when none is configured.
func (s *Store) GetTaxProfile(ctx context.Context, userID string) (*model.TaxProfile, error) {
	p, err := s.Tax.GetTaxProfile(ctx, userID)
	if errors.Is(err, apperrors.ErrTaxProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetJurisdictions returns the tax comparison table.
func (s *Store) GetJurisdictions(ctx context.Context) ([]model.TaxJurisdiction, error) {
	return s.Tax.GetJurisdictions(ctx)
}

// GetUser returns the user with FIRE settings.
func (s *Store) GetUser(ctx context.Context, userID string) (model.User, error) {
	return s.Users.GetUser(ctx, userID)
}

// SaveReconciliation applies a reconcile result in one transaction: it checks
// both originals are unchanged since matching, inserts the merged holding if
// any, soft-deletes the replaced originals and records the raw rows for undo.
// A changed or already deleted original returns ErrReconciliationConflict and
// nothing is written.
func (s *Store) SaveReconciliation(ctx context.Context, res reconcile.Result) (model.Reconciliation, error) {
	var saved model.Reconciliation

	err := s.InTx(ctx, func(tx *Store) error {
		manual, err := tx.Holdings.lockUnchanged(ctx, res.ManualSnapshot)
		if err != nil {
			return err
		}
		synced, err := tx.Holdings.lockUnchanged(ctx, res.SyncedSnapshot)
		if err != nil {
			return err
		}

		if res.Merged != nil {
			if err := tx.Holdings.InsertHolding(ctx, res.Merged); err != nil {
				return err
			}
		}
		for _, id := range res.SoftDeleted {
			if err := tx.Holdings.SoftDeleteHolding(ctx, res.UserID, id, res.CreatedAt); err != nil {
				return err
			}
		}

		rec := model.Reconciliation{
			ID:              res.ID,
			UserID:          res.UserID,
			Ticker:          res.Ticker,
			Choice:          string(res.Choice),
			ManualHoldingID: res.ManualSnapshot.ID,
			SyncedHoldingID: res.SyncedSnapshot.ID,
			ManualSnapshot:  res.ManualSnapshot,
			SyncedSnapshot:  res.SyncedSnapshot,
			CreatedAt:       res.CreatedAt,
		}
		if id := res.ResultHoldingID(); id != "" {
			rec.ResultHoldingID = &id
		}
		if err := tx.Reconciliations.insert(ctx, rec, manual, synced); err != nil {
			return err
		}
		saved = rec
		return nil
	})
	if err != nil {
		return model.Reconciliation{}, err
	}

	return saved, nil
}

// UndoReconciliation reverts a reconciliation in one transaction: both
// originals are written back from their stored rows and a merged holding is
// removed. Undo is refused with apperrors.ErrReconciliationConflict while a
// later reconciliation involving the same holdings is still in effect.
func (s *Store) UndoReconciliation(ctx context.Context, userID, reconciliationID string, at time.Time) (model.Reconciliation, error) {
	var undone model.Reconciliation

	err := s.InTx(ctx, func(tx *Store) error {
		rr, err := tx.Reconciliations.getRow(ctx, userID, reconciliationID)
		if err != nil {
			return err
		}
		if rr.rec.UndoneAt != nil {
			return apperrors.ErrAlreadyUndone
		}

		involved := []string{rr.rec.ManualHoldingID, rr.rec.SyncedHoldingID}
		if rr.rec.ResultHoldingID != nil {
			involved = append(involved, *rr.rec.ResultHoldingID)
		}
		later, err := tx.Reconciliations.laterActive(ctx, userID, reconciliationID, involved...)
		if err != nil {
			return err
		}
		if later != "" {
			return fmt.Errorf("%w: undo reconciliation %s first", apperrors.ErrReconciliationConflict, later)
		}

		if rr.rec.Choice == string(reconcile.MergeSumShares) && rr.rec.ResultHoldingID != nil {
			err := tx.Holdings.hardDelete(ctx, userID, *rr.rec.ResultHoldingID)
			if err != nil && !errors.Is(err, apperrors.ErrHoldingNotFound) {
				return err
			}
		}
		if err := tx.Holdings.restoreRow(ctx, rr.manual); err != nil {
			return fmt.Errorf("failed to restore manual holding %s: %w", rr.manual.ID, err)
		}
		if err := tx.Holdings.restoreRow(ctx, rr.synced); err != nil {
			return fmt.Errorf("failed to restore synced holding %s: %w", rr.synced.ID, err)
		}
		if err := tx.Reconciliations.markUndone(ctx, userID, reconciliationID, at); err != nil {
			return err
		}

		undone = rr.rec
		undoneAt := at.UTC()
		undone.UndoneAt = &undoneAt
		return nil
	})
	if err != nil {
		return model.Reconciliation{}, err
	}

	return undone, nil
}

// lockUnchanged reads the stored row of snapshot and verifies it is live and
// has not been edited since the snapshot was taken.
func (r *HoldingRepository) lockUnchanged(ctx context.Context, snapshot model.Holding) (holdingRow, error) {
	hr, err := r.getRow(ctx, snapshot.UserID, snapshot.ID)
	if errors.Is(err, apperrors.ErrHoldingNotFound) {
		return holdingRow{}, fmt.Errorf("%w: holding %s no longer exists", apperrors.ErrReconciliationConflict, snapshot.ID)
	}
	if err != nil {
		return holdingRow{}, err
	}
	if hr.DeletedAt != nil {
		return holdingRow{}, fmt.Errorf("%w: holding %s was already reconciled", apperrors.ErrReconciliationConflict, snapshot.ID)
	}
	if hr.UpdatedAt != formatTime(snapshot.UpdatedAt) {
		return holdingRow{}, fmt.Errorf("%w: holding %s changed since matching", apperrors.ErrReconciliationConflict, snapshot.ID)
	}
	return hr, nil
}
