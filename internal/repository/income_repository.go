package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
)

// IncomeRepository provides data access methods for the income_record table.
type IncomeRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewIncomeRepository creates a new IncomeRepository with the provided database connection.
func NewIncomeRepository(db *sql.DB) *IncomeRepository {
	return &IncomeRepository{db: db}
}

// WithTx returns a new IncomeRepository scoped to the provided transaction.
func (r *IncomeRepository) WithTx(tx *sql.Tx) *IncomeRepository {
	return &IncomeRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *IncomeRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const incomeColumns = `id, user_id, amount, category, received_at, description, data_source,
	holding_id, synced_account_id, created_at`

func scanIncome(row interface{ Scan(...any) error }) (model.IncomeRecord, error) {
	var rec model.IncomeRecord
	var amountStr, receivedAtStr, createdAtStr string
	var holdingID, accountID sql.NullString

	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&amountStr,
		&rec.Category,
		&receivedAtStr,
		&rec.Description,
		&rec.DataSource,
		&holdingID,
		&accountID,
		&createdAtStr,
	)
	if err != nil {
		return model.IncomeRecord{}, err
	}

	if rec.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return model.IncomeRecord{}, fmt.Errorf("failed to parse amount of income %s: %w", rec.ID, err)
	}
	if rec.ReceivedAt, err = ParseTime(receivedAtStr); err != nil {
		return model.IncomeRecord{}, err
	}
	if rec.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.IncomeRecord{}, err
	}
	rec.HoldingID = ptrString(holdingID)
	rec.SyncedAccountID = ptrString(accountID)
	return rec, nil
}

// GetIncome retrieves the user's income records received within rng,
// ordered by received_at.
func (r *IncomeRepository) GetIncome(ctx context.Context, userID string, rng model.DateRange) ([]model.IncomeRecord, error) {
	// Coarse filter on the day prefix, exact bounds checked below.
	query := `
		SELECT ` + incomeColumns + `
		FROM income_record
		WHERE user_id = ? AND received_at >= ? AND received_at < ?
		ORDER BY received_at ASC, id ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query,
		userID,
		formatDate(rng.From),
		formatDate(rng.To.AddDate(0, 0, 1)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query income_record table: %w", err)
	}
	defer rows.Close()

	records := []model.IncomeRecord{}
	for rows.Next() {
		rec, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan income_record table results: %w", err)
		}
		if rng.Contains(rec.ReceivedAt) {
			records = append(records, rec)
		}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating income_record table: %w", err)
	}

	return records, nil
}

// GetIncomeRecord retrieves one income record of the user.
func (r *IncomeRepository) GetIncomeRecord(ctx context.Context, userID, incomeID string) (model.IncomeRecord, error) {
	query := `SELECT ` + incomeColumns + ` FROM income_record WHERE id = ? AND user_id = ?`

	rec, err := scanIncome(r.getQuerier().QueryRowContext(ctx, query, incomeID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.IncomeRecord{}, apperrors.ErrIncomeNotFound
	}
	if err != nil {
		return model.IncomeRecord{}, fmt.Errorf("failed to query income_record: %w", err)
	}
	return rec, nil
}

// ExistsSyncedIncome reports whether an identical synced income record was
// already imported, which keeps repeated imports idempotent.
func (r *IncomeRepository) ExistsSyncedIncome(ctx context.Context, rec model.IncomeRecord) (bool, error) {
	query := `
		SELECT COUNT(*) FROM income_record
		WHERE user_id = ? AND synced_account_id = ? AND received_at = ? AND amount = ? AND category = ?
	`

	var n int
	err := r.getQuerier().QueryRowContext(ctx, query,
		rec.UserID,
		nullString(rec.SyncedAccountID),
		formatTime(rec.ReceivedAt),
		rec.Amount.String(),
		rec.Category,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query income_record: %w", err)
	}
	return n > 0, nil
}

// InsertIncome creates a new income record.
func (r *IncomeRepository) InsertIncome(ctx context.Context, rec *model.IncomeRecord) error {
	query := `INSERT INTO income_record (` + incomeColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.getQuerier().ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		rec.Amount.String(),
		rec.Category,
		formatTime(rec.ReceivedAt),
		rec.Description,
		rec.DataSource,
		nullString(rec.HoldingID),
		nullString(rec.SyncedAccountID),
		formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert income_record: %w", err)
	}
	return nil
}

// DeleteIncome removes one income record of the user.
func (r *IncomeRepository) DeleteIncome(ctx context.Context, userID, incomeID string) error {
	result, err := r.getQuerier().ExecContext(ctx,
		`DELETE FROM income_record WHERE id = ? AND user_id = ?`, incomeID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete income_record: %w", err)
	}

	return checkAffected(result, apperrors.ErrIncomeNotFound)
}
