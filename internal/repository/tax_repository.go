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

// TaxRepository provides data access methods for the tax_profile and
// tax_jurisdiction tables.
type TaxRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTaxRepository creates a new TaxRepository with the provided database connection.
func NewTaxRepository(db *sql.DB) *TaxRepository {
	return &TaxRepository{db: db}
}

// WithTx returns a new TaxRepository scoped to the provided transaction.
func (r *TaxRepository) WithTx(tx *sql.Tx) *TaxRepository {
	return &TaxRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *TaxRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetTaxProfile retrieves the user's tax profile.
// Returns ErrTaxProfileNotFound when none has been configured.
func (r *TaxRepository) GetTaxProfile(ctx context.Context, userID string) (model.TaxProfile, error) {
	query := `
		SELECT user_id, jurisdiction, filing_status, effective_rate, updated_at
		FROM tax_profile
		WHERE user_id = ?
	`
	var p model.TaxProfile
	var rateStr, updatedAtStr string

	err := r.getQuerier().QueryRowContext(ctx, query, userID).Scan(
		&p.UserID,
		&p.Jurisdiction,
		&p.FilingStatus,
		&rateStr,
		&updatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TaxProfile{}, apperrors.ErrTaxProfileNotFound
	}
	if err != nil {
		return model.TaxProfile{}, fmt.Errorf("failed to query tax_profile: %w", err)
	}

	if p.EffectiveRate, err = decimal.NewFromString(rateStr); err != nil {
		return model.TaxProfile{}, fmt.Errorf("failed to parse effective rate: %w", err)
	}
	if p.UpdatedAt, err = ParseTime(updatedAtStr); err != nil {
		return model.TaxProfile{}, err
	}

	return p, nil
}

// UpsertTaxProfile creates or replaces the user's tax profile.
func (r *TaxRepository) UpsertTaxProfile(ctx context.Context, p *model.TaxProfile) error {
	query := `
		INSERT INTO tax_profile (user_id, jurisdiction, filing_status, effective_rate, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			jurisdiction = excluded.jurisdiction,
			filing_status = excluded.filing_status,
			effective_rate = excluded.effective_rate,
			updated_at = excluded.updated_at
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		p.UserID,
		p.Jurisdiction,
		p.FilingStatus,
		p.EffectiveRate.String(),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert tax_profile: %w", err)
	}
	return nil
}

// DeleteTaxProfile removes the user's tax profile.
func (r *TaxRepository) DeleteTaxProfile(ctx context.Context, userID string) error {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM tax_profile WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete tax_profile: %w", err)
	}

	return checkAffected(result, apperrors.ErrTaxProfileNotFound)
}

// GetJurisdictions retrieves the comparison table ordered by code.
func (r *TaxRepository) GetJurisdictions(ctx context.Context) ([]model.TaxJurisdiction, error) {
	query := `SELECT code, name, dividend_rate FROM tax_jurisdiction ORDER BY code ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tax_jurisdiction table: %w", err)
	}
	defer rows.Close()

	jurisdictions := []model.TaxJurisdiction{}
	for rows.Next() {
		var j model.TaxJurisdiction
		var rateStr string
		if err := rows.Scan(&j.Code, &j.Name, &rateStr); err != nil {
			return nil, fmt.Errorf("failed to scan tax_jurisdiction table results: %w", err)
		}
		if j.DividendRate, err = decimal.NewFromString(rateStr); err != nil {
			return nil, fmt.Errorf("failed to parse rate of jurisdiction %s: %w", j.Code, err)
		}
		jurisdictions = append(jurisdictions, j)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tax_jurisdiction table: %w", err)
	}

	return jurisdictions, nil
}

// GetJurisdiction retrieves a single jurisdiction by code.
func (r *TaxRepository) GetJurisdiction(ctx context.Context, code string) (model.TaxJurisdiction, error) {
	var j model.TaxJurisdiction
	var rateStr string

	err := r.getQuerier().QueryRowContext(ctx,
		`SELECT code, name, dividend_rate FROM tax_jurisdiction WHERE code = ?`, code,
	).Scan(&j.Code, &j.Name, &rateStr)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TaxJurisdiction{}, apperrors.ErrJurisdictionNotFound
	}
	if err != nil {
		return model.TaxJurisdiction{}, fmt.Errorf("failed to query tax_jurisdiction: %w", err)
	}

	if j.DividendRate, err = decimal.NewFromString(rateStr); err != nil {
		return model.TaxJurisdiction{}, fmt.Errorf("failed to parse rate of jurisdiction %s: %w", j.Code, err)
	}
	return j, nil
}
