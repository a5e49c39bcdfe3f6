package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/repository"
)

// ExpenseService manages expense records.
type ExpenseService struct {
	expenseRepo *repository.ExpenseRepository
	userRepo    *repository.UserRepository
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(expenseRepo *repository.ExpenseRepository, userRepo *repository.UserRepository) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		userRepo:    userRepo,
	}
}

// GetExpenses returns the expenses applicable to the filter range: those
// dated inside it plus recurring expenses started before its end.
func (s *ExpenseService) GetExpenses(ctx context.Context, userID string, filters *request.RecordFilters) ([]model.ExpenseRecord, error) {
	records, err := s.expenseRepo.GetExpenses(ctx, userID, filters.Range)
	if err != nil {
		return nil, err
	}
	if filters.Category == "" {
		return records, nil
	}

	filtered := make([]model.ExpenseRecord, 0, len(records))
	for _, rec := range records {
		if strings.EqualFold(rec.Category, filters.Category) {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

// GetExpense returns one expense record.
func (s *ExpenseService) GetExpense(ctx context.Context, userID, expenseID string) (model.ExpenseRecord, error) {
	return s.expenseRepo.GetExpense(ctx, userID, expenseID)
}

// CreateExpense records a one-off or recurring expense.
func (s *ExpenseService) CreateExpense(ctx context.Context, userID string, req request.CreateExpenseRequest) (*model.ExpenseRecord, error) {
	if _, err := s.userRepo.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	date, err := request.ParseDateTime(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	expense := &model.ExpenseRecord{
		ID:          newID(),
		UserID:      userID,
		Amount:      req.Amount,
		Category:    strings.ToLower(strings.TrimSpace(req.Category)),
		Date:        date,
		Recurring:   req.Recurring,
		Description: req.Description,
		CreatedAt:   now(),
	}

	if err := s.expenseRepo.InsertExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	return expense, nil
}

// DeleteExpense removes one expense record.
func (s *ExpenseService) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	return s.expenseRepo.DeleteExpense(ctx, userID, expenseID)
}
