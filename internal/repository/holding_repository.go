package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
)

// HoldingRepository provides data access methods for the holding table.
// Reads skip soft-deleted rows unless stated otherwise.
type HoldingRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewHoldingRepository creates a new HoldingRepository with the provided database connection.
func NewHoldingRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

// WithTx returns a new HoldingRepository scoped to the provided transaction.
func (r *HoldingRepository) WithTx(tx *sql.Tx) *HoldingRepository {
	return &HoldingRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *HoldingRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const holdingColumns = `id, user_id, portfolio_id, ticker, sector, shares, cost_basis,
	current_price, previous_close, price_refreshed_at, data_source, synced_account_id,
	deleted_at, created_at, updated_at`

// holdingRow is a holding exactly as stored. Reconciliation snapshots keep it
// verbatim so an undo writes back the original column text.
type holdingRow struct {
	ID               string  `json:"id"`
	UserID           string  `json:"user_id"`
	PortfolioID      string  `json:"portfolio_id"`
	Ticker           string  `json:"ticker"`
	Sector           string  `json:"sector"`
	Shares           string  `json:"shares"`
	CostBasis        string  `json:"cost_basis"`
	CurrentPrice     *string `json:"current_price"`
	PreviousClose    *string `json:"previous_close"`
	PriceRefreshedAt *string `json:"price_refreshed_at"`
	DataSource       string  `json:"data_source"`
	SyncedAccountID  *string `json:"synced_account_id"`
	DeletedAt        *string `json:"deleted_at"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

func scanHoldingRow(row interface{ Scan(...any) error }) (holdingRow, error) {
	var hr holdingRow
	var currentPrice, previousClose, refreshedAt, accountID, deletedAt sql.NullString

	err := row.Scan(
		&hr.ID,
		&hr.UserID,
		&hr.PortfolioID,
		&hr.Ticker,
		&hr.Sector,
		&hr.Shares,
		&hr.CostBasis,
		&currentPrice,
		&previousClose,
		&refreshedAt,
		&hr.DataSource,
		&accountID,
		&deletedAt,
		&hr.CreatedAt,
		&hr.UpdatedAt,
	)
	if err != nil {
		return holdingRow{}, err
	}

	hr.CurrentPrice = ptrString(currentPrice)
	hr.PreviousClose = ptrString(previousClose)
	hr.PriceRefreshedAt = ptrString(refreshedAt)
	hr.SyncedAccountID = ptrString(accountID)
	hr.DeletedAt = ptrString(deletedAt)
	return hr, nil
}

func holdingRowFrom(h model.Holding) holdingRow {
	return holdingRow{
		ID:               h.ID,
		UserID:           h.UserID,
		PortfolioID:      h.PortfolioID,
		Ticker:           h.Ticker,
		Sector:           h.Sector,
		Shares:           h.Shares.String(),
		CostBasis:        h.CostBasis.String(),
		CurrentPrice:     ptrString(nullDecimal(h.CurrentPrice)),
		PreviousClose:    ptrString(nullDecimal(h.PreviousClose)),
		PriceRefreshedAt: ptrString(nullTime(h.PriceRefreshedAt)),
		DataSource:       string(h.DataSource),
		SyncedAccountID:  h.SyncedAccountID,
		DeletedAt:        ptrString(nullTime(h.DeletedAt)),
		CreatedAt:        formatTime(h.CreatedAt),
		UpdatedAt:        formatTime(h.UpdatedAt),
	}
}

func (hr holdingRow) values() []any {
	return []any{
		hr.ID,
		hr.UserID,
		hr.PortfolioID,
		hr.Ticker,
		hr.Sector,
		hr.Shares,
		hr.CostBasis,
		nullString(hr.CurrentPrice),
		nullString(hr.PreviousClose),
		nullString(hr.PriceRefreshedAt),
		hr.DataSource,
		nullString(hr.SyncedAccountID),
		nullString(hr.DeletedAt),
		hr.CreatedAt,
		hr.UpdatedAt,
	}
}

func (hr holdingRow) toModel() (model.Holding, error) {
	h := model.Holding{
		ID:              hr.ID,
		UserID:          hr.UserID,
		PortfolioID:     hr.PortfolioID,
		Ticker:          hr.Ticker,
		Sector:          hr.Sector,
		DataSource:      model.DataSource(hr.DataSource),
		SyncedAccountID: hr.SyncedAccountID,
	}

	var err error
	if h.Shares, err = decimal.NewFromString(hr.Shares); err != nil {
		return model.Holding{}, fmt.Errorf("failed to parse shares of holding %s: %w", hr.ID, err)
	}
	if h.CostBasis, err = decimal.NewFromString(hr.CostBasis); err != nil {
		return model.Holding{}, fmt.Errorf("failed to parse cost basis of holding %s: %w", hr.ID, err)
	}
	if h.CurrentPrice, err = parseNullDecimal(nullString(hr.CurrentPrice)); err != nil {
		return model.Holding{}, err
	}
	if h.PreviousClose, err = parseNullDecimal(nullString(hr.PreviousClose)); err != nil {
		return model.Holding{}, err
	}
	if h.PriceRefreshedAt, err = parseNullTime(nullString(hr.PriceRefreshedAt)); err != nil {
		return model.Holding{}, err
	}
	if h.DeletedAt, err = parseNullTime(nullString(hr.DeletedAt)); err != nil {
		return model.Holding{}, err
	}
	if h.CreatedAt, err = ParseTime(hr.CreatedAt); err != nil {
		return model.Holding{}, err
	}
	if h.UpdatedAt, err = ParseTime(hr.UpdatedAt); err != nil {
		return model.Holding{}, err
	}
	return h, nil
}

func (r *HoldingRepository) queryHoldings(ctx context.Context, query string, args ...any) ([]model.Holding, error) {
	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding table: %w", err)
	}
	defer rows.Close()

	holdings := []model.Holding{}
	for rows.Next() {
		hr, err := scanHoldingRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding table results: %w", err)
		}
		h, err := hr.toModel()
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding table: %w", err)
	}

	return holdings, nil
}

// GetHoldings retrieves the user's live holdings, optionally limited to one
// portfolio when portfolioID is non-empty. Ordered by ticker then id.
func (r *HoldingRepository) GetHoldings(ctx context.Context, userID, portfolioID string) ([]model.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holding WHERE user_id = ? AND deleted_at IS NULL`
	args := []any{userID}

	if portfolioID != "" {
		query += " AND portfolio_id = ?"
		args = append(args, portfolioID)
	}
	query += " ORDER BY ticker ASC, id ASC"

	return r.queryHoldings(ctx, query, args...)
}

// GetHolding retrieves a single live holding.
// Returns ErrHoldingNotFound when it does not exist, is deleted or belongs to another user.
func (r *HoldingRepository) GetHolding(ctx context.Context, userID, holdingID string) (model.Holding, error) {
	hr, err := r.getRow(ctx, userID, holdingID)
	if err != nil {
		return model.Holding{}, err
	}
	if hr.DeletedAt != nil {
		return model.Holding{}, apperrors.ErrHoldingNotFound
	}
	return hr.toModel()
}

// FindSyncedHolding returns the live holding imported from account for ticker.
func (r *HoldingRepository) FindSyncedHolding(ctx context.Context, userID, accountID, ticker string) (model.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holding
		WHERE user_id = ? AND synced_account_id = ? AND ticker = ? AND data_source = ? AND deleted_at IS NULL
		ORDER BY created_at ASC LIMIT 1`

	hr, err := scanHoldingRow(r.getQuerier().QueryRowContext(ctx, query, userID, accountID, ticker, model.DataSourceSynced))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Holding{}, apperrors.ErrHoldingNotFound
	}
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to query synced holding: %w", err)
	}
	return hr.toModel()
}

// HasRetiredSyncedHolding reports whether a synced holding for ticker from
// account was soft-deleted, which means the user already reconciled it away.
func (r *HoldingRepository) HasRetiredSyncedHolding(ctx context.Context, userID, accountID, ticker string) (bool, error) {
	query := `SELECT COUNT(*) FROM holding
		WHERE user_id = ? AND synced_account_id = ? AND ticker = ? AND data_source = ? AND deleted_at IS NOT NULL`

	var n int
	if err := r.getQuerier().QueryRowContext(ctx, query, userID, accountID, ticker, model.DataSourceSynced).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to query retired synced holding: %w", err)
	}
	return n > 0, nil
}

func (r *HoldingRepository) getRow(ctx context.Context, userID, holdingID string) (holdingRow, error) {
	query := `SELECT ` + holdingColumns + ` FROM holding WHERE id = ? AND user_id = ?`

	hr, err := scanHoldingRow(r.getQuerier().QueryRowContext(ctx, query, holdingID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return holdingRow{}, apperrors.ErrHoldingNotFound
	}
	if err != nil {
		return holdingRow{}, fmt.Errorf("failed to query holding: %w", err)
	}
	return hr, nil
}

// InsertHolding creates a new holding.
func (r *HoldingRepository) InsertHolding(ctx context.Context, h *model.Holding) error {
	query := `INSERT INTO holding (` + holdingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if _, err := r.getQuerier().ExecContext(ctx, query, holdingRowFrom(*h).values()...); err != nil {
		return fmt.Errorf("failed to insert holding: %w", err)
	}
	return nil
}

// UpdateHolding updates the user-editable fields of a live holding.
func (r *HoldingRepository) UpdateHolding(ctx context.Context, h *model.Holding) error {
	query := `
        UPDATE holding
        SET portfolio_id = ?, ticker = ?, sector = ?, shares = ?, cost_basis = ?, updated_at = ?
        WHERE id = ? AND user_id = ? AND deleted_at IS NULL
    `

	result, err := r.getQuerier().ExecContext(ctx, query,
		h.PortfolioID,
		h.Ticker,
		h.Sector,
		h.Shares.String(),
		h.CostBasis.String(),
		formatTime(h.UpdatedAt),
		h.ID,
		h.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}

	return checkAffected(result, apperrors.ErrHoldingNotFound)
}

// SoftDeleteHolding marks a live holding deleted at the given time.
func (r *HoldingRepository) SoftDeleteHolding(ctx context.Context, userID, holdingID string, at time.Time) error {
	query := `UPDATE holding SET deleted_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL`

	result, err := r.getQuerier().ExecContext(ctx, query, formatTime(at), holdingID, userID)
	if err != nil {
		return fmt.Errorf("failed to soft delete holding: %w", err)
	}

	return checkAffected(result, apperrors.ErrHoldingNotFound)
}

func (r *HoldingRepository) hardDelete(ctx context.Context, userID, holdingID string) error {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM holding WHERE id = ? AND user_id = ?`, holdingID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}

	return checkAffected(result, apperrors.ErrHoldingNotFound)
}

// restoreRow writes every column of hr back onto the existing row.
func (r *HoldingRepository) restoreRow(ctx context.Context, hr holdingRow) error {
	query := `
        UPDATE holding
        SET portfolio_id = ?, ticker = ?, sector = ?, shares = ?, cost_basis = ?,
            current_price = ?, previous_close = ?, price_refreshed_at = ?, data_source = ?,
            synced_account_id = ?, deleted_at = ?, created_at = ?, updated_at = ?
        WHERE id = ? AND user_id = ?
    `
	v := hr.values()
	args := append(v[2:], hr.ID, hr.UserID)

	result, err := r.getQuerier().ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to restore holding: %w", err)
	}

	return checkAffected(result, apperrors.ErrHoldingNotFound)
}

// GetTrackedTickers returns the distinct tickers of all live holdings across users.
// It backs the price refresh job, which only ever writes market prices.
func (r *HoldingRepository) GetTrackedTickers(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT ticker FROM holding WHERE deleted_at IS NULL ORDER BY ticker ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding tickers: %w", err)
	}
	defer rows.Close()

	tickers := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan holding ticker: %w", err)
		}
		tickers = append(tickers, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding tickers: %w", err)
	}

	return tickers, nil
}

// UpdatePricesByTicker stores a refreshed quote on every live holding of ticker.
// updated_at is left alone so a price refresh never invalidates a pending reconciliation.
func (r *HoldingRepository) UpdatePricesByTicker(ctx context.Context, ticker string, price, previousClose decimal.NullDecimal, at time.Time) (int64, error) {
	query := `
        UPDATE holding
        SET current_price = ?, previous_close = ?, price_refreshed_at = ?
        WHERE ticker = ? AND deleted_at IS NULL
    `

	result, err := r.getQuerier().ExecContext(ctx, query,
		nullDecimal(price),
		nullDecimal(previousClose),
		formatTime(at),
		ticker,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update holding prices: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
