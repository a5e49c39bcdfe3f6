package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/service"
	"github.com/ndewijer/Income-Clarity-Backend/internal/testutil"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("redis: connection refused") }

func TestSystemService_CheckHealth(t *testing.T) {
	t.Run("healthy database without shared cache", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSystemService(t, db)

		if err := svc.CheckHealth(context.Background()); err != nil {
			t.Errorf("CheckHealth() returned unexpected error: %v", err)
		}
	})

	t.Run("closed database", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSystemService(t, db)
		db.Close()

		if err := svc.CheckHealth(context.Background()); err == nil {
			t.Error("Expected an error for a closed database")
		}
	})

	t.Run("unreachable cache", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := service.NewSystemService(db, failingPinger{}, nil)

		if err := svc.CheckHealth(context.Background()); err == nil {
			t.Error("Expected an error for an unreachable cache")
		}
	})
}

func TestSystemService_CheckVersion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestSystemService(t, db)

	info, err := svc.CheckVersion(context.Background())
	if err != nil {
		t.Fatalf("CheckVersion() returned unexpected error: %v", err)
	}
	if info.MigrationNeeded {
		t.Error("Expected no pending migrations on a migrated database")
	}
	if info.DBVersion == "0" || info.AppVersion == "" {
		t.Errorf("Unexpected version info: %+v", info)
	}
	if info.Cache != model.CacheMemory {
		t.Errorf("Expected the memory cache backend, got %q", info.Cache)
	}
	if !info.Features["supercards"] {
		t.Errorf("Expected the supercards feature flag, got %v", info.Features)
	}
}
