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

// ExpenseRepository provides data access methods for the expense_record table.
type ExpenseRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewExpenseRepository creates a new ExpenseRepository with the provided database connection.
func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// WithTx returns a new ExpenseRepository scoped to the provided transaction.
func (r *ExpenseRepository) WithTx(tx *sql.Tx) *ExpenseRepository {
	return &ExpenseRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *ExpenseRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const expenseColumns = `id, user_id, amount, category, date, recurring, description, created_at`

func scanExpense(row interface{ Scan(...any) error }) (model.ExpenseRecord, error) {
	var e model.ExpenseRecord
	var amountStr, dateStr, createdAtStr string

	err := row.Scan(
		&e.ID,
		&e.UserID,
		&amountStr,
		&e.Category,
		&dateStr,
		&e.Recurring,
		&e.Description,
		&createdAtStr,
	)
	if err != nil {
		return model.ExpenseRecord{}, err
	}

	if e.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return model.ExpenseRecord{}, fmt.Errorf("failed to parse amount of expense %s: %w", e.ID, err)
	}
	if e.Date, err = ParseTime(dateStr); err != nil {
		return model.ExpenseRecord{}, err
	}
	if e.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.ExpenseRecord{}, err
	}
	return e, nil
}

// GetExpenses retrieves the user's one-off expenses dated within rng plus every
// recurring expense that started on or before the end of rng.
func (r *ExpenseRepository) GetExpenses(ctx context.Context, userID string, rng model.DateRange) ([]model.ExpenseRecord, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expense_record
		WHERE user_id = ?
		AND ((recurring = 0 AND date >= ? AND date <= ?) OR (recurring = 1 AND date <= ?))
		ORDER BY date ASC, id ASC
	`
	to := formatDate(rng.To)

	rows, err := r.getQuerier().QueryContext(ctx, query, userID, formatDate(rng.From), to, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense_record table: %w", err)
	}
	defer rows.Close()

	expenses := []model.ExpenseRecord{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense_record table results: %w", err)
		}
		expenses = append(expenses, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense_record table: %w", err)
	}

	return expenses, nil
}

// GetExpense retrieves one expense record of the user.
func (r *ExpenseRepository) GetExpense(ctx context.Context, userID, expenseID string) (model.ExpenseRecord, error) {
	query := `SELECT ` + expenseColumns + ` FROM expense_record WHERE id = ? AND user_id = ?`

	e, err := scanExpense(r.getQuerier().QueryRowContext(ctx, query, expenseID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.ExpenseRecord{}, apperrors.ErrExpenseNotFound
	}
	if err != nil {
		return model.ExpenseRecord{}, fmt.Errorf("failed to query expense_record: %w", err)
	}
	return e, nil
}

// InsertExpense creates a new expense record.
func (r *ExpenseRepository) InsertExpense(ctx context.Context, e *model.ExpenseRecord) error {
	query := `INSERT INTO expense_record (` + expenseColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.getQuerier().ExecContext(ctx, query,
		e.ID,
		e.UserID,
		e.Amount.String(),
		e.Category,
		formatDate(e.Date),
		e.Recurring,
		e.Description,
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense_record: %w", err)
	}
	return nil
}

// DeleteExpense removes one expense record of the user.
func (r *ExpenseRepository) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	result, err := r.getQuerier().ExecContext(ctx,
		`DELETE FROM expense_record WHERE id = ? AND user_id = ?`, expenseID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete expense_record: %w", err)
	}

	return checkAffected(result, apperrors.ErrExpenseNotFound)
}
