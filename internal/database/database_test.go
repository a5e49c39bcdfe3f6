package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenAndMigrate(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "clarity.db"))
	if err != nil {
		t.Fatalf("Open() returned unexpected error: %v", err)
	}
	defer db.Close()

	_, pending, err := SchemaStatus(ctx, db)
	if err != nil {
		t.Fatalf("SchemaStatus() returned unexpected error: %v", err)
	}
	if !pending {
		t.Error("Expected pending migrations on a fresh database")
	}

	version, err := Migrate(ctx, db)
	if err != nil {
		t.Fatalf("Migrate() returned unexpected error: %v", err)
	}
	if version < 1 {
		t.Errorf("Expected schema version >= 1, got %d", version)
	}

	t.Run("migrate is idempotent", func(t *testing.T) {
		again, err := Migrate(ctx, db)
		if err != nil {
			t.Fatalf("second Migrate() returned unexpected error: %v", err)
		}
		if again != version {
			t.Errorf("Expected version %d, got %d", version, again)
		}
	})

	t.Run("seeds tax jurisdictions", func(t *testing.T) {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM tax_jurisdiction").Scan(&count); err != nil {
			t.Fatalf("Failed to count jurisdictions: %v", err)
		}
		if count != 10 {
			t.Errorf("Expected 10 seeded jurisdictions, got %d", count)
		}
	})

	t.Run("foreign keys are enforced", func(t *testing.T) {
		_, err := db.Exec(`INSERT INTO portfolio (id, user_id, name, created_at) VALUES ('p1', 'missing', 'x', '2024-01-01T00:00:00Z')`)
		if err == nil {
			t.Error("Expected foreign key violation for unknown user")
		}
	})

	t.Run("reports no pending migrations", func(t *testing.T) {
		current, pending, err := SchemaStatus(ctx, db)
		if err != nil {
			t.Fatalf("SchemaStatus() returned unexpected error: %v", err)
		}
		if pending {
			t.Error("Expected no pending migrations")
		}
		if current != version {
			t.Errorf("Expected current version %d, got %d", version, current)
		}
	})
}

func TestHealthCheck(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "health.db"))
	if err != nil {
		t.Fatalf("Open() returned unexpected error: %v", err)
	}

	if err := HealthCheck(db); err != nil {
		t.Errorf("Expected healthy database, got %v", err)
	}

	db.Close()
	if err := HealthCheck(db); err == nil {
		t.Error("Expected error after close")
	}
}
