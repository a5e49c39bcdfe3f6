package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
)

// UserRepository provides data access methods for the user table.
type UserRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewUserRepository creates a new UserRepository with the provided database connection.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a new UserRepository scoped to the provided transaction.
func (r *UserRepository) WithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *UserRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const userColumns = `id, name, email, fire_target, expected_return, monthly_investment, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	var fireTarget, expectedReturn, monthlyInvestment sql.NullString
	var createdAtStr, updatedAtStr string

	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&fireTarget,
		&expectedReturn,
		&monthlyInvestment,
		&createdAtStr,
		&updatedAtStr,
	); err != nil {
		return model.User{}, err
	}

	var err error
	if u.FireTarget, err = parseNullDecimal(fireTarget); err != nil {
		return model.User{}, err
	}
	if u.ExpectedReturn, err = parseNullDecimal(expectedReturn); err != nil {
		return model.User{}, err
	}
	if u.MonthlyInvestment, err = parseNullDecimal(monthlyInvestment); err != nil {
		return model.User{}, err
	}
	if u.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.User{}, err
	}
	if u.UpdatedAt, err = ParseTime(updatedAtStr); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// GetUsers retrieves all users ordered by name.
func (r *UserRepository) GetUsers(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM user ORDER BY name ASC, id ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query user table: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user table results: %w", err)
		}
		users = append(users, u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user table: %w", err)
	}

	return users, nil
}

// GetUser retrieves a single user by ID.
// Returns ErrUserNotFound if no user with the given ID exists.
func (r *UserRepository) GetUser(ctx context.Context, userID string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM user WHERE id = ?`

	u, err := scanUser(r.getQuerier().QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, apperrors.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to query user: %w", err)
	}

	return u, nil
}

// InsertUser creates a new user. A duplicate email returns ErrDuplicateEntry.
func (r *UserRepository) InsertUser(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO user (` + userColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `

	_, err := r.getQuerier().ExecContext(ctx, query,
		u.ID,
		u.Name,
		u.Email,
		nullDecimal(u.FireTarget),
		nullDecimal(u.ExpectedReturn),
		nullDecimal(u.MonthlyInvestment),
		formatTime(u.CreatedAt),
		formatTime(u.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// UpdateUser updates the user's profile and FIRE settings.
func (r *UserRepository) UpdateUser(ctx context.Context, u *model.User) error {
	query := `
        UPDATE user
        SET name = ?, email = ?, fire_target = ?, expected_return = ?, monthly_investment = ?, updated_at = ?
        WHERE id = ?
    `

	result, err := r.getQuerier().ExecContext(ctx, query,
		u.Name,
		u.Email,
		nullDecimal(u.FireTarget),
		nullDecimal(u.ExpectedReturn),
		nullDecimal(u.MonthlyInvestment),
		formatTime(u.UpdatedAt),
		u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return checkAffected(result, apperrors.ErrUserNotFound)
}

// DeleteUser removes a user; foreign keys cascade to every user-owned record.
func (r *UserRepository) DeleteUser(ctx context.Context, userID string) error {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM user WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return checkAffected(result, apperrors.ErrUserNotFound)
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
