package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
)

// ReconciliationRepository provides data access methods for the reconciliation table.
// Snapshots are stored as the JSON of the raw holding rows.
type ReconciliationRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewReconciliationRepository creates a new ReconciliationRepository with the provided database connection.
func NewReconciliationRepository(db *sql.DB) *ReconciliationRepository {
	return &ReconciliationRepository{db: db}
}

// WithTx returns a new ReconciliationRepository scoped to the provided transaction.
func (r *ReconciliationRepository) WithTx(tx *sql.Tx) *ReconciliationRepository {
	return &ReconciliationRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *ReconciliationRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const reconciliationColumns = `id, user_id, ticker, choice, manual_holding_id, synced_holding_id,
	result_holding_id, manual_snapshot, synced_snapshot, created_at, undone_at`

// reconciliationRow keeps the snapshots in their stored form for undo.
type reconciliationRow struct {
	rec    model.Reconciliation
	manual holdingRow
	synced holdingRow
}

func scanReconciliation(row interface{ Scan(...any) error }) (reconciliationRow, error) {
	var rr reconciliationRow
	var resultID, undoneAt sql.NullString
	var manualJSON, syncedJSON, createdAtStr string

	err := row.Scan(
		&rr.rec.ID,
		&rr.rec.UserID,
		&rr.rec.Ticker,
		&rr.rec.Choice,
		&rr.rec.ManualHoldingID,
		&rr.rec.SyncedHoldingID,
		&resultID,
		&manualJSON,
		&syncedJSON,
		&createdAtStr,
		&undoneAt,
	)
	if err != nil {
		return reconciliationRow{}, err
	}

	if err := json.Unmarshal([]byte(manualJSON), &rr.manual); err != nil {
		return reconciliationRow{}, fmt.Errorf("failed to decode manual snapshot of reconciliation %s: %w", rr.rec.ID, err)
	}
	if err := json.Unmarshal([]byte(syncedJSON), &rr.synced); err != nil {
		return reconciliationRow{}, fmt.Errorf("failed to decode synced snapshot of reconciliation %s: %w", rr.rec.ID, err)
	}
	if rr.rec.ManualSnapshot, err = rr.manual.toModel(); err != nil {
		return reconciliationRow{}, err
	}
	if rr.rec.SyncedSnapshot, err = rr.synced.toModel(); err != nil {
		return reconciliationRow{}, err
	}
	if rr.rec.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return reconciliationRow{}, err
	}
	if rr.rec.UndoneAt, err = parseNullTime(undoneAt); err != nil {
		return reconciliationRow{}, err
	}
	rr.rec.ResultHoldingID = ptrString(resultID)
	return rr, nil
}

// GetReconciliations retrieves the user's reconciliation history, newest first.
func (r *ReconciliationRepository) GetReconciliations(ctx context.Context, userID string) ([]model.Reconciliation, error) {
	query := `SELECT ` + reconciliationColumns + ` FROM reconciliation WHERE user_id = ? ORDER BY created_at DESC, id ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reconciliation table: %w", err)
	}
	defer rows.Close()

	recs := []model.Reconciliation{}
	for rows.Next() {
		rr, err := scanReconciliation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reconciliation table results: %w", err)
		}
		recs = append(recs, rr.rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reconciliation table: %w", err)
	}

	return recs, nil
}

// GetReconciliation retrieves one reconciliation of the user.
func (r *ReconciliationRepository) GetReconciliation(ctx context.Context, userID, id string) (model.Reconciliation, error) {
	rr, err := r.getRow(ctx, userID, id)
	if err != nil {
		return model.Reconciliation{}, err
	}
	return rr.rec, nil
}

func (r *ReconciliationRepository) getRow(ctx context.Context, userID, id string) (reconciliationRow, error) {
	query := `SELECT ` + reconciliationColumns + ` FROM reconciliation WHERE id = ? AND user_id = ?`

	rr, err := scanReconciliation(r.getQuerier().QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return reconciliationRow{}, apperrors.ErrReconciliationNotFound
	}
	if err != nil {
		return reconciliationRow{}, fmt.Errorf("failed to query reconciliation: %w", err)
	}
	return rr, nil
}

func (r *ReconciliationRepository) insert(ctx context.Context, rec model.Reconciliation, manual, synced holdingRow) error {
	manualJSON, err := json.Marshal(manual)
	if err != nil {
		return fmt.Errorf("failed to encode manual snapshot: %w", err)
	}
	syncedJSON, err := json.Marshal(synced)
	if err != nil {
		return fmt.Errorf("failed to encode synced snapshot: %w", err)
	}

	query := `INSERT INTO reconciliation (` + reconciliationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.getQuerier().ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		rec.Ticker,
		rec.Choice,
		rec.ManualHoldingID,
		rec.SyncedHoldingID,
		nullString(rec.ResultHoldingID),
		string(manualJSON),
		string(syncedJSON),
		formatTime(rec.CreatedAt),
		nullTime(rec.UndoneAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert reconciliation: %w", err)
	}
	return nil
}

// laterActive returns the id of the first reconciliation recorded after id
// that is still in effect and involves one of holdingIDs, or "" when there is none.
func (r *ReconciliationRepository) laterActive(ctx context.Context, userID, id string, holdingIDs ...string) (string, error) {
	if len(holdingIDs) == 0 {
		return "", nil
	}
	in := strings.TrimSuffix(strings.Repeat("?, ", len(holdingIDs)), ", ")
	query := `
		SELECT id FROM reconciliation
		WHERE user_id = ? AND undone_at IS NULL
		AND rowid > (SELECT rowid FROM reconciliation WHERE id = ? AND user_id = ?)
		AND (manual_holding_id IN (` + in + `) OR synced_holding_id IN (` + in + `) OR result_holding_id IN (` + in + `))
		ORDER BY rowid ASC
		LIMIT 1
	`
	args := []any{userID, id, userID}
	for range 3 {
		for _, h := range holdingIDs {
			args = append(args, h)
		}
	}

	var later string
	err := r.getQuerier().QueryRowContext(ctx, query, args...).Scan(&later)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query later reconciliations: %w", err)
	}
	return later, nil
}

func (r *ReconciliationRepository) markUndone(ctx context.Context, userID, id string, at time.Time) error {
	result, err := r.getQuerier().ExecContext(ctx,
		`UPDATE reconciliation SET undone_at = ? WHERE id = ? AND user_id = ? AND undone_at IS NULL`,
		formatTime(at), id, userID)
	if err != nil {
		return fmt.Errorf("failed to update reconciliation: %w", err)
	}

	return checkAffected(result, apperrors.ErrAlreadyUndone)
}
