package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/reconcile"
	"github.com/ndewijer/Income-Clarity-Backend/internal/testutil"
)

type reconcileFixture struct {
	user   model.User
	manual model.Holding
	synced model.Holding
}

// setupDuplicatePair creates one manual and one synced SCHD holding.
func setupDuplicatePair(t *testing.T, db *sql.DB, manualShares, syncedShares string) reconcileFixture {
	t.Helper()

	user := testutil.NewUser().Build(t, db)
	p := testutil.NewPortfolio(user.ID).Build(t, db)
	account := testutil.CreateSyncedAccount(t, db, user.ID, "token")
	manual := testutil.NewHolding(user.ID, p.ID, "SCHD").WithShares(manualShares).Build(t, db)
	synced := testutil.NewHolding(user.ID, p.ID, "SCHD").WithShares(syncedShares).Synced(account.ID).Build(t, db)
	return reconcileFixture{user: user, manual: manual, synced: synced}
}

// TestReconciliationService_GetCandidates tests candidate detection.
//
// WHY: Candidates are read-only suggestions. Listing them twice must return
// the same pairs and never change a holding.
func TestReconciliationService_GetCandidates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestReconciliationService(t, db)
	f := setupDuplicatePair(t, db, "10", "10")

	for range 2 {
		candidates, err := svc.GetCandidates(context.Background(), f.user.ID)
		if err != nil {
			t.Fatalf("GetCandidates() returned unexpected error: %v", err)
		}
		if len(candidates) != 1 {
			t.Fatalf("Expected 1 candidate, got %d", len(candidates))
		}
		if candidates[0].Tier != reconcile.TierHigh {
			t.Errorf("Expected HIGH tier, got %s", candidates[0].Tier)
		}
	}
	testutil.AssertRowCount(t, db, "reconciliation", 0)
}

func TestReconciliationService_ApplyAndUndo(t *testing.T) {
	ctx := context.Background()

	t.Run("merge then undo restores both originals", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReconciliationService(t, db)
		holdings := testutil.NewTestHoldingService(t, db)
		f := setupDuplicatePair(t, db, "10", "15")

		// Execute
		rec, err := svc.Apply(ctx, f.user.ID, request.ApplyReconciliationRequest{
			ManualHoldingID: f.manual.ID,
			SyncedHoldingID: f.synced.ID,
			Choice:          "merge_sum_shares",
		})
		if err != nil {
			t.Fatalf("Apply() returned unexpected error: %v", err)
		}

		// Assert
		live, err := holdings.GetHoldings(ctx, f.user.ID, "")
		if err != nil {
			t.Fatalf("GetHoldings() returned unexpected error: %v", err)
		}
		if len(live) != 1 || !live[0].Shares.Equal(decimal.NewFromInt(25)) || live[0].DataSource != model.DataSourceMerged {
			t.Fatalf("Expected one merged holding of 25 shares, got %+v", live)
		}

		undone, err := svc.Undo(ctx, f.user.ID, rec.ID)
		if err != nil {
			t.Fatalf("Undo() returned unexpected error: %v", err)
		}
		if undone.UndoneAt == nil {
			t.Error("Expected UndoneAt to be set")
		}

		live, err = holdings.GetHoldings(ctx, f.user.ID, "")
		if err != nil {
			t.Fatalf("GetHoldings() returned unexpected error: %v", err)
		}
		if len(live) != 2 {
			t.Fatalf("Expected both originals back, got %d holdings", len(live))
		}
		for _, h := range live {
			switch h.ID {
			case f.manual.ID:
				if !h.Shares.Equal(f.manual.Shares) {
					t.Errorf("Manual holding not restored: %+v", h)
				}
			case f.synced.ID:
				if !h.Shares.Equal(f.synced.Shares) {
					t.Errorf("Synced holding not restored: %+v", h)
				}
			default:
				t.Errorf("Unexpected live holding %s", h.ID)
			}
		}

		if _, err := svc.Undo(ctx, f.user.ID, rec.ID); !errors.Is(err, apperrors.ErrAlreadyUndone) {
			t.Errorf("Expected ErrAlreadyUndone on second undo, got %v", err)
		}
	})

	t.Run("second apply on the same pair conflicts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReconciliationService(t, db)
		f := setupDuplicatePair(t, db, "10", "10")
		req := request.ApplyReconciliationRequest{
			ManualHoldingID: f.manual.ID,
			SyncedHoldingID: f.synced.ID,
			Choice:          string(reconcile.KeepManual),
		}

		if _, err := svc.Apply(ctx, f.user.ID, req); err != nil {
			t.Fatalf("Apply() returned unexpected error: %v", err)
		}
		// The synced side is now soft-deleted.
		if _, err := svc.Apply(ctx, f.user.ID, req); !errors.Is(err, apperrors.ErrHoldingNotFound) {
			t.Errorf("Expected ErrHoldingNotFound, got %v", err)
		}
	})

	t.Run("rejects two manual holdings", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReconciliationService(t, db)
		user := testutil.NewUser().Build(t, db)
		p := testutil.NewPortfolio(user.ID).Build(t, db)
		a := testutil.NewHolding(user.ID, p.ID, "VTI").Build(t, db)
		b := testutil.NewHolding(user.ID, p.ID, "VTI").Build(t, db)

		_, err := svc.Apply(ctx, user.ID, request.ApplyReconciliationRequest{
			ManualHoldingID: a.ID, SyncedHoldingID: b.ID, Choice: string(reconcile.KeepSynced),
		})
		if !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("rejects unknown choice", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReconciliationService(t, db)
		f := setupDuplicatePair(t, db, "10", "10")

		_, err := svc.Apply(ctx, f.user.ID, request.ApplyReconciliationRequest{
			ManualHoldingID: f.manual.ID, SyncedHoldingID: f.synced.ID, Choice: "KEEP_BOTH",
		})
		if !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got %v", err)
		}
	})
}

// TestReconciliationService_AutoReconcile tests the automatic pass.
//
// WHY: Only confident matches may be resolved without the user. Everything
// else must come back untouched as pending.
func TestReconciliationService_AutoReconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps synced side of a high confidence pair", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReconciliationService(t, db)
		holdings := testutil.NewTestHoldingService(t, db)
		f := setupDuplicatePair(t, db, "10", "10")

		result, err := svc.AutoReconcile(ctx, f.user.ID)
		if err != nil {
			t.Fatalf("AutoReconcile() returned unexpected error: %v", err)
		}
		if len(result.Applied) != 1 || len(result.Pending) != 0 {
			t.Fatalf("Expected 1 applied and 0 pending, got %d and %d", len(result.Applied), len(result.Pending))
		}
		if result.Applied[0].Choice != string(reconcile.KeepSynced) {
			t.Errorf("Expected KEEP_SYNCED, got %s", result.Applied[0].Choice)
		}

		live, err := holdings.GetHoldings(ctx, f.user.ID, "")
		if err != nil {
			t.Fatalf("GetHoldings() returned unexpected error: %v", err)
		}
		if len(live) != 1 || live[0].ID != f.synced.ID {
			t.Errorf("Expected only the synced holding to remain, got %+v", live)
		}
	})

	t.Run("leaves medium confidence pair pending", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReconciliationService(t, db)
		f := setupDuplicatePair(t, db, "10", "40")

		result, err := svc.AutoReconcile(ctx, f.user.ID)
		if err != nil {
			t.Fatalf("AutoReconcile() returned unexpected error: %v", err)
		}
		if len(result.Applied) != 0 || len(result.Pending) != 1 {
			t.Errorf("Expected 0 applied and 1 pending, got %d and %d", len(result.Applied), len(result.Pending))
		}
		testutil.AssertRowCount(t, db, "reconciliation", 0)
	})
}
