package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
)

// SyncedAccountRepository provides data access methods for the synced_account table.
// AccessToken is stored exactly as given; callers encrypt it first.
type SyncedAccountRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewSyncedAccountRepository creates a new SyncedAccountRepository with the provided database connection.
func NewSyncedAccountRepository(db *sql.DB) *SyncedAccountRepository {
	return &SyncedAccountRepository{db: db}
}

// WithTx returns a new SyncedAccountRepository scoped to the provided transaction.
func (r *SyncedAccountRepository) WithTx(tx *sql.Tx) *SyncedAccountRepository {
	return &SyncedAccountRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *SyncedAccountRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const syncedAccountColumns = `id, user_id, provider, external_account_id, access_token, last_sync_at, sync_status, created_at`

func scanSyncedAccount(row interface{ Scan(...any) error }) (model.SyncedAccount, error) {
	var a model.SyncedAccount
	var lastSync sql.NullString
	var createdAtStr string

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Provider,
		&a.ExternalAccountID,
		&a.AccessToken,
		&lastSync,
		&a.SyncStatus,
		&createdAtStr,
	)
	if err != nil {
		return model.SyncedAccount{}, err
	}

	if a.LastSyncAt, err = parseNullTime(lastSync); err != nil {
		return model.SyncedAccount{}, err
	}
	if a.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.SyncedAccount{}, err
	}
	return a, nil
}

// GetSyncedAccounts retrieves the user's linked accounts.
func (r *SyncedAccountRepository) GetSyncedAccounts(ctx context.Context, userID string) ([]model.SyncedAccount, error) {
	query := `SELECT ` + syncedAccountColumns + ` FROM synced_account WHERE user_id = ? ORDER BY created_at ASC, id ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query synced_account table: %w", err)
	}
	defer rows.Close()

	accounts := []model.SyncedAccount{}
	for rows.Next() {
		a, err := scanSyncedAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan synced_account table results: %w", err)
		}
		accounts = append(accounts, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating synced_account table: %w", err)
	}

	return accounts, nil
}

// GetSyncedAccount retrieves one linked account of the user.
func (r *SyncedAccountRepository) GetSyncedAccount(ctx context.Context, userID, accountID string) (model.SyncedAccount, error) {
	query := `SELECT ` + syncedAccountColumns + ` FROM synced_account WHERE id = ? AND user_id = ?`

	a, err := scanSyncedAccount(r.getQuerier().QueryRowContext(ctx, query, accountID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.SyncedAccount{}, apperrors.ErrSyncedAccountNotFound
	}
	if err != nil {
		return model.SyncedAccount{}, fmt.Errorf("failed to query synced_account: %w", err)
	}
	return a, nil
}

// InsertSyncedAccount links a new account. Linking the same external account
// twice returns ErrDuplicateEntry.
func (r *SyncedAccountRepository) InsertSyncedAccount(ctx context.Context, a *model.SyncedAccount) error {
	query := `INSERT INTO synced_account (` + syncedAccountColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.getQuerier().ExecContext(ctx, query,
		a.ID,
		a.UserID,
		a.Provider,
		a.ExternalAccountID,
		a.AccessToken,
		nullTime(a.LastSyncAt),
		a.SyncStatus,
		formatTime(a.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to insert synced_account: %w", err)
	}
	return nil
}

// UpdateSyncStatus records the outcome of a sync attempt. lastSync is only
// written when non-nil.
func (r *SyncedAccountRepository) UpdateSyncStatus(ctx context.Context, userID, accountID, status string, lastSync *time.Time) error {
	query := `
		UPDATE synced_account
		SET sync_status = ?, last_sync_at = COALESCE(?, last_sync_at)
		WHERE id = ? AND user_id = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query, status, nullTime(lastSync), accountID, userID)
	if err != nil {
		return fmt.Errorf("failed to update synced_account: %w", err)
	}

	return checkAffected(result, apperrors.ErrSyncedAccountNotFound)
}

// DeleteSyncedAccount unlinks an account. Imported records stay and lose their link.
func (r *SyncedAccountRepository) DeleteSyncedAccount(ctx context.Context, userID, accountID string) error {
	result, err := r.getQuerier().ExecContext(ctx,
		`DELETE FROM synced_account WHERE id = ? AND user_id = ?`, accountID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete synced_account: %w", err)
	}

	return checkAffected(result, apperrors.ErrSyncedAccountNotFound)
}
