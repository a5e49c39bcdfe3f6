package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
)

// PortfolioRepository provides data access methods for the portfolio table.
// Every query is scoped to a single user.
type PortfolioRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// WithTx returns a new PortfolioRepository scoped to the provided transaction.
func (r *PortfolioRepository) WithTx(tx *sql.Tx) *PortfolioRepository {
	return &PortfolioRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *PortfolioRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetPortfolios retrieves the user's portfolios ordered by name.
// Returns an empty slice if the user has none.
func (r *PortfolioRepository) GetPortfolios(ctx context.Context, userID string) ([]model.Portfolio, error) {
	query := `
          SELECT id, user_id, name, description, created_at
          FROM portfolio
          WHERE user_id = ?
          ORDER BY name ASC, id ASC
      `

	rows, err := r.getQuerier().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio table: %w", err)
	}
	defer rows.Close()

	portfolios := []model.Portfolio{}

	for rows.Next() {
		var p model.Portfolio
		var createdAtStr string

		err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.Name,
			&p.Description,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio table results: %w", err)
		}

		p.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, err
		}

		portfolios = append(portfolios, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio table: %w", err)
	}

	return portfolios, nil
}

// GetPortfolio retrieves one of the user's portfolios.
// Returns ErrPortfolioNotFound when it does not exist or belongs to another user.
func (r *PortfolioRepository) GetPortfolio(ctx context.Context, userID, portfolioID string) (model.Portfolio, error) {
	query := `
          SELECT id, user_id, name, description, created_at
          FROM portfolio
          WHERE id = ? AND user_id = ?
      `
	var p model.Portfolio
	var createdAtStr string

	err := r.getQuerier().QueryRowContext(ctx, query, portfolioID, userID).Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Description,
		&createdAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to query portfolio: %w", err)
	}

	p.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Portfolio{}, err
	}

	return p, nil
}

// InsertPortfolio creates a new portfolio.
func (r *PortfolioRepository) InsertPortfolio(ctx context.Context, p *model.Portfolio) error {
	query := `
        INSERT INTO portfolio (id, user_id, name, description, created_at)
        VALUES (?, ?, ?, ?, ?)
    `

	_, err := r.getQuerier().ExecContext(ctx, query,
		p.ID,
		p.UserID,
		p.Name,
		p.Description,
		formatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}

	return nil
}

// UpdatePortfolio updates the name and description of a portfolio.
func (r *PortfolioRepository) UpdatePortfolio(ctx context.Context, p *model.Portfolio) error {
	query := `
        UPDATE portfolio
        SET name = ?, description = ?
        WHERE id = ? AND user_id = ?
    `

	result, err := r.getQuerier().ExecContext(ctx, query,
		p.Name,
		p.Description,
		p.ID,
		p.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}

	return checkAffected(result, apperrors.ErrPortfolioNotFound)
}

// DeletePortfolio removes a portfolio and, through the foreign key, its holdings.
func (r *PortfolioRepository) DeletePortfolio(ctx context.Context, userID, portfolioID string) error {
	query := `DELETE FROM portfolio WHERE id = ? AND user_id = ?`

	result, err := r.getQuerier().ExecContext(ctx, query, portfolioID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}

	return checkAffected(result, apperrors.ErrPortfolioNotFound)
}
