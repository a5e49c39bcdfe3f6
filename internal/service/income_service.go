package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/repository"
	"github.com/ndewijer/Income-Clarity-Backend/internal/validation"
)

// IncomeService manages income records.
type IncomeService struct {
	store *repository.Store
}

// NewIncomeService creates a new IncomeService.
func NewIncomeService(store *repository.Store) *IncomeService {
	return &IncomeService{store: store}
}

// GetIncome returns the user's income within the filter range, optionally
// restricted to one category, ordered by receipt time.
func (s *IncomeService) GetIncome(ctx context.Context, userID string, filters *request.RecordFilters) ([]model.IncomeRecord, error) {
	records, err := s.store.Income.GetIncome(ctx, userID, filters.Range)
	if err != nil {
		return nil, err
	}
	if filters.Category == "" {
		return records, nil
	}

	filtered := make([]model.IncomeRecord, 0, len(records))
	for _, rec := range records {
		if string(rec.Category) == filters.Category {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

// GetIncomeRecord returns one income record.
func (s *IncomeService) GetIncomeRecord(ctx context.Context, userID, incomeID string) (model.IncomeRecord, error) {
	return s.store.Income.GetIncomeRecord(ctx, userID, incomeID)
}

// CreateIncome records a MANUAL income receipt. A referenced holding must be
// one of the user's live holdings.
func (s *IncomeService) CreateIncome(ctx context.Context, userID string, req request.CreateIncomeRequest) (*model.IncomeRecord, error) {
	if _, err := s.store.Users.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	rec, err := s.newRecord(userID, req)
	if err != nil {
		return nil, err
	}
	if rec.HoldingID != nil {
		if _, err := s.store.Holdings.GetHolding(ctx, userID, *rec.HoldingID); err != nil {
			return nil, err
		}
	}

	if err := s.store.Income.InsertIncome(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create income: %w", err)
	}
	return rec, nil
}

func (s *IncomeService) newRecord(userID string, req request.CreateIncomeRequest) (*model.IncomeRecord, error) {
	receivedAt, err := request.ParseDateTime(req.ReceivedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return &model.IncomeRecord{
		ID:          newID(),
		UserID:      userID,
		Amount:      req.Amount,
		Category:    model.IncomeCategory(strings.ToLower(strings.TrimSpace(req.Category))),
		ReceivedAt:  receivedAt,
		Description: req.Description,
		DataSource:  model.DataSourceManual,
		HoldingID:   req.HoldingID,
		CreatedAt:   now(),
	}, nil
}

// DeleteIncome removes one income record.
func (s *IncomeService) DeleteIncome(ctx context.Context, userID, incomeID string) error {
	return s.store.Income.DeleteIncome(ctx, userID, incomeID)
}

// ImportResult summarizes a CSV import.
type ImportResult struct {
	Imported int               `json:"imported"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// ImportIncomeCSV loads income records from CSV with the header
// amount,category,received_at[,description]. Rows are validated first and
// written in one transaction; any invalid row aborts the whole import.
func (s *IncomeService) ImportIncomeCSV(ctx context.Context, userID string, r io.Reader) (*ImportResult, error) {
	if _, err := s.store.Users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing CSV header: %v", apperrors.ErrInvalidInput, err)
	}
	columns := map[string]int{}
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"amount", "category", "received_at"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: CSV header lacks %s", apperrors.ErrInvalidInput, required)
		}
	}
	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []*model.IncomeRecord
	result := &ImportResult{Errors: map[string]string{}}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}

		amount, err := decimal.NewFromString(field(row, "amount"))
		if err != nil {
			result.Errors[fmt.Sprintf("line %d", line)] = "amount is not a number"
			continue
		}
		req := request.CreateIncomeRequest{
			Amount:      amount,
			Category:    field(row, "category"),
			ReceivedAt:  field(row, "received_at"),
			Description: field(row, "description"),
		}
		if err := validation.ValidateCreateIncome(req); err != nil {
			result.Errors[fmt.Sprintf("line %d", line)] = err.Error()
			continue
		}
		rec, err := s.newRecord(userID, req)
		if err != nil {
			result.Errors[fmt.Sprintf("line %d", line)] = err.Error()
			continue
		}
		records = append(records, rec)
	}

	if len(result.Errors) > 0 {
		return result, fmt.Errorf("%w: %d invalid rows", apperrors.ErrInvalidInput, len(result.Errors))
	}

	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		for _, rec := range records {
			if err := tx.Income.InsertIncome(ctx, rec); err != nil {
				return fmt.Errorf("failed to import income: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Imported = len(records)
	result.Errors = nil
	return result, nil
}
