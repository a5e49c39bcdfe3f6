package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/reconcile"
	"github.com/ndewijer/Income-Clarity-Backend/internal/repository"
	"github.com/ndewijer/Income-Clarity-Backend/internal/testutil"
)

// rawHolding returns every stored column of a holding as text.
func rawHolding(t *testing.T, db *sql.DB, id string) []sql.NullString {
	t.Helper()

	cols := make([]sql.NullString, 15)
	dest := make([]any, len(cols))
	for i := range cols {
		dest[i] = &cols[i]
	}
	err := db.QueryRow(`
		SELECT id, user_id, portfolio_id, ticker, sector, shares, cost_basis, current_price,
		       previous_close, price_refreshed_at, data_source, synced_account_id, deleted_at,
		       created_at, updated_at
		FROM holding WHERE id = ?`, id).Scan(dest...)
	if err != nil {
		t.Fatalf("Failed to read raw holding %s: %v", id, err)
	}
	return cols
}

func equalRows(a, b []sql.NullString) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func seedPair(t *testing.T, db *sql.DB) (model.User, model.Holding, model.Holding) {
	t.Helper()

	user := testutil.NewUser().Build(t, db)
	manualPf := testutil.NewPortfolio(user.ID).WithName("Manual").Build(t, db)
	syncedPf := testutil.NewPortfolio(user.ID).WithName("Brokerage").Build(t, db)
	account := testutil.CreateSyncedAccount(t, db, user.ID, "token")

	manual := testutil.NewHolding(user.ID, manualPf.ID, "VTI").
		WithShares("100").WithCostBasis("20000.50").WithSector("Equity").WithPrice("250.1").
		Build(t, db)
	synced := testutil.NewHolding(user.ID, syncedPf.ID, "VTI").
		WithShares("101").WithCostBasis("20100").Synced(account.ID).
		Build(t, db)
	return user, manual, synced
}

func TestStore_ReconcileRoundTrip(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC)

	for _, choice := range []reconcile.Choice{reconcile.KeepManual, reconcile.KeepSynced, reconcile.MergeSumShares} {
		t.Run(string(choice)+" then undo restores both originals byte for byte", func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			store := repository.NewStore(db)
			user, manual, synced := seedPair(t, db)

			beforeManual := rawHolding(t, db, manual.ID)
			beforeSynced := rawHolding(t, db, synced.ID)

			candidates := reconcile.MatchCandidates([]model.Holding{manual}, []model.Holding{synced}, reconcile.DefaultTolerance)
			if len(candidates) != 1 {
				t.Fatalf("Expected 1 candidate, got %d", len(candidates))
			}
			res, err := reconcile.Reconcile(candidates[0], choice, now, testutil.MakeID)
			if err != nil {
				t.Fatalf("Reconcile() returned unexpected error: %v", err)
			}

			saved, err := store.SaveReconciliation(ctx, res)
			if err != nil {
				t.Fatalf("SaveReconciliation() returned unexpected error: %v", err)
			}

			live, err := store.GetHoldings(ctx, user.ID, "")
			if err != nil {
				t.Fatalf("GetHoldings() returned unexpected error: %v", err)
			}
			if len(live) != 1 {
				t.Fatalf("Expected 1 live holding after reconcile, got %d", len(live))
			}
			if live[0].ID != *saved.ResultHoldingID {
				t.Errorf("Expected live holding %s, got %s", *saved.ResultHoldingID, live[0].ID)
			}
			if choice == reconcile.MergeSumShares {
				if live[0].DataSource != model.DataSourceMerged {
					t.Errorf("Expected MERGED holding, got %s", live[0].DataSource)
				}
				if !live[0].Shares.Equal(decimal.NewFromInt(201)) {
					t.Errorf("Expected 201 merged shares, got %s", live[0].Shares)
				}
			}
			testutil.AssertRowCount(t, db, "reconciliation", 1)

			undone, err := store.UndoReconciliation(ctx, user.ID, saved.ID, now.Add(time.Hour))
			if err != nil {
				t.Fatalf("UndoReconciliation() returned unexpected error: %v", err)
			}
			if undone.UndoneAt == nil {
				t.Error("Expected undoneAt to be set")
			}

			if after := rawHolding(t, db, manual.ID); !equalRows(beforeManual, after) {
				t.Errorf("Manual holding not restored exactly:\nbefore %v\nafter  %v", beforeManual, after)
			}
			if after := rawHolding(t, db, synced.ID); !equalRows(beforeSynced, after) {
				t.Errorf("Synced holding not restored exactly:\nbefore %v\nafter  %v", beforeSynced, after)
			}
			testutil.AssertRowCount(t, db, "holding", 2)

			_, err = store.UndoReconciliation(ctx, user.ID, saved.ID, now.Add(2*time.Hour))
			if !errors.Is(err, apperrors.ErrAlreadyUndone) {
				t.Errorf("Expected ErrAlreadyUndone, got %v", err)
			}
		})
	}
}

func TestStore_SaveReconciliationConflicts(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC)

	t.Run("edited holding aborts without writing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		store := repository.NewStore(db)
		_, manual, synced := seedPair(t, db)

		res, err := reconcile.Reconcile(reconcile.Candidate{Manual: manual, Synced: synced}, reconcile.MergeSumShares, now, testutil.MakeID)
		if err != nil {
			t.Fatalf("Reconcile() returned unexpected error: %v", err)
		}

		edited := manual
		edited.Shares = decimal.NewFromInt(50)
		edited.UpdatedAt = now
		if err := store.Holdings.UpdateHolding(ctx, &edited); err != nil {
			t.Fatalf("UpdateHolding() returned unexpected error: %v", err)
		}

		_, err = store.SaveReconciliation(ctx, res)
		if !errors.Is(err, apperrors.ErrReconciliationConflict) {
			t.Fatalf("Expected ErrReconciliationConflict, got %v", err)
		}
		testutil.AssertRowCount(t, db, "reconciliation", 0)
		testutil.AssertRowCount(t, db, "holding", 2)
		testutil.AssertRowCount(t, db, "holding WHERE deleted_at IS NOT NULL", 0)
	})

	t.Run("failure mid-transaction rolls back every write", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		store := repository.NewStore(db)
		_, manual, synced := seedPair(t, db)

		res, err := reconcile.Reconcile(reconcile.Candidate{Manual: manual, Synced: synced}, reconcile.MergeSumShares, now, testutil.MakeID)
		if err != nil {
			t.Fatalf("Reconcile() returned unexpected error: %v", err)
		}
		res.SoftDeleted = append(res.SoftDeleted, "does-not-exist")

		if _, err := store.SaveReconciliation(ctx, res); err == nil {
			t.Fatal("Expected error, got nil")
		}
		testutil.AssertRowCount(t, db, "holding", 2)
		testutil.AssertRowCount(t, db, "holding WHERE deleted_at IS NOT NULL", 0)
		testutil.AssertRowCount(t, db, "reconciliation", 0)
	})

	t.Run("second reconcile of the same pair conflicts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		store := repository.NewStore(db)
		_, manual, synced := seedPair(t, db)

		pair := reconcile.Candidate{Manual: manual, Synced: synced}
		first, _ := reconcile.Reconcile(pair, reconcile.KeepManual, now, testutil.MakeID)
		if _, err := store.SaveReconciliation(ctx, first); err != nil {
			t.Fatalf("SaveReconciliation() returned unexpected error: %v", err)
		}
		second, _ := reconcile.Reconcile(pair, reconcile.KeepSynced, now, testutil.MakeID)
		if _, err := store.SaveReconciliation(ctx, second); !errors.Is(err, apperrors.ErrReconciliationConflict) {
			t.Errorf("Expected ErrReconciliationConflict, got %v", err)
		}
	})

	t.Run("other user cannot undo", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		store := repository.NewStore(db)
		_, manual, synced := seedPair(t, db)
		other := testutil.NewUser().Build(t, db)

		res, _ := reconcile.Reconcile(reconcile.Candidate{Manual: manual, Synced: synced}, reconcile.KeepManual, now, testutil.MakeID)
		saved, err := store.SaveReconciliation(ctx, res)
		if err != nil {
			t.Fatalf("SaveReconciliation() returned unexpected error: %v", err)
		}

		_, err = store.UndoReconciliation(ctx, other.ID, saved.ID, now)
		if !errors.Is(err, apperrors.ErrReconciliationNotFound) {
			t.Errorf("Expected ErrReconciliationNotFound, got %v", err)
		}
	})
}

func TestStore_UndoOutOfOrder(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC)

	db := testutil.SetupTestDB(t)
	store := repository.NewStore(db)
	user, manual, synced := seedPair(t, db)

	first, err := reconcile.Reconcile(reconcile.Candidate{Manual: manual, Synced: synced}, reconcile.KeepManual, now, testutil.MakeID)
	if err != nil {
		t.Fatalf("Reconcile() returned unexpected error: %v", err)
	}
	savedFirst, err := store.SaveReconciliation(ctx, first)
	if err != nil {
		t.Fatalf("SaveReconciliation() returned unexpected error: %v", err)
	}

	// The kept manual holding is matched again against a second account.
	kept, err := store.Holdings.GetHolding(ctx, user.ID, manual.ID)
	if err != nil {
		t.Fatalf("GetHolding() returned unexpected error: %v", err)
	}
	pf := testutil.NewPortfolio(user.ID).WithName("Second brokerage").Build(t, db)
	account := testutil.CreateSyncedAccount(t, db, user.ID, "token-2")
	other := testutil.NewHolding(user.ID, pf.ID, "VTI").
		WithShares("100").WithCostBasis("20000").Synced(account.ID).
		Build(t, db)

	second, err := reconcile.Reconcile(reconcile.Candidate{Manual: kept, Synced: other}, reconcile.KeepSynced, now, testutil.MakeID)
	if err != nil {
		t.Fatalf("Reconcile() returned unexpected error: %v", err)
	}
	savedSecond, err := store.SaveReconciliation(ctx, second)
	if err != nil {
		t.Fatalf("SaveReconciliation() returned unexpected error: %v", err)
	}

	liveCount := func() int {
		t.Helper()
		live, err := store.GetHoldings(ctx, user.ID, "")
		if err != nil {
			t.Fatalf("GetHoldings() returned unexpected error: %v", err)
		}
		return len(live)
	}

	t.Run("older reconciliation cannot be undone first", func(t *testing.T) {
		_, err := store.UndoReconciliation(ctx, user.ID, savedFirst.ID, now.Add(time.Hour))
		if !errors.Is(err, apperrors.ErrReconciliationConflict) {
			t.Fatalf("Expected ErrReconciliationConflict, got %v", err)
		}
		if n := liveCount(); n != 1 {
			t.Errorf("Expected 1 live holding, got %d", n)
		}
		testutil.AssertRowCount(t, db, "reconciliation WHERE undone_at IS NOT NULL", 0)
	})

	t.Run("undo in reverse order restores every original", func(t *testing.T) {
		if _, err := store.UndoReconciliation(ctx, user.ID, savedSecond.ID, now.Add(time.Hour)); err != nil {
			t.Fatalf("UndoReconciliation() of the newer record returned unexpected error: %v", err)
		}
		if n := liveCount(); n != 2 {
			t.Errorf("Expected 2 live holdings after the first undo, got %d", n)
		}
		if _, err := store.UndoReconciliation(ctx, user.ID, savedFirst.ID, now.Add(2*time.Hour)); err != nil {
			t.Fatalf("UndoReconciliation() of the older record returned unexpected error: %v", err)
		}
		if n := liveCount(); n != 3 {
			t.Errorf("Expected 3 live holdings after both undos, got %d", n)
		}
	})
}
