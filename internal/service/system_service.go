package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/ndewijer/Income-Clarity-Backend/internal/database"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/version"
)

// CachePinger is implemented by shared caches that can report their health.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// SystemService handles system-related operations
type SystemService struct {
	db       *sql.DB
	cache    CachePinger
	features map[string]bool
}

// NewSystemService creates a new SystemService. cache may be nil when the
// in-process cache is used.
func NewSystemService(db *sql.DB, cache CachePinger, features map[string]bool) *SystemService {
	return &SystemService{
		db:       db,
		cache:    cache,
		features: features,
	}
}

// CheckHealth checks the health of the database and, when configured, the shared cache.
func (s *SystemService) CheckHealth(ctx context.Context) error {
	if err := database.HealthCheck(s.db); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
	}
	return nil
}

// CheckVersion reports the application version, the applied schema version
// and whether migrations are pending.
func (s *SystemService) CheckVersion(ctx context.Context) (model.VersionInfo, error) {
	current, pending, err := database.SchemaStatus(ctx, s.db)
	if err != nil {
		return model.VersionInfo{}, err
	}

	info := model.VersionInfo{
		AppVersion:      version.Version,
		DBVersion:       strconv.FormatInt(current, 10),
		Cache:           model.CacheMemory,
		Features:        s.features,
		MigrationNeeded: pending,
	}
	if s.cache != nil {
		info.Cache = model.CacheRedis
	}
	if info.Features == nil {
		info.Features = map[string]bool{}
	}
	if pending {
		msg := "database schema is behind the application; run migrations"
		info.MigrationMessage = &msg
	}
	return info, nil
}
