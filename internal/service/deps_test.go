package service_test

import (
	"database/sql"
	"testing"

	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/service"
	"github.com/ndewijer/Income-Clarity-Backend/internal/testutil"
)

// testDeps wires the services that cooperate on one database.
type testDeps struct {
	db        *sql.DB
	user      model.User
	portfolio model.Portfolio
	accounts  *service.SyncedAccountService
	holdings  *service.HoldingService
	reconcile *service.ReconciliationService
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()

	db := testutil.SetupTestDB(t)
	user := testutil.NewUser().Build(t, db)
	return &testDeps{
		db:        db,
		user:      user,
		portfolio: testutil.NewPortfolio(user.ID).Build(t, db),
		accounts:  testutil.NewTestSyncedAccountService(t, db, testutil.NewTestTokenCipher(t)),
		holdings:  testutil.NewTestHoldingService(t, db),
		reconcile: testutil.NewTestReconciliationService(t, db),
	}
}
