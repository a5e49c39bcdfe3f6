package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/marketdata"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/repository"
	"github.com/ndewijer/Income-Clarity-Backend/internal/secrets"
)

// SyncedAccountService links bank-aggregator accounts and imports their
// positions and income as SYNCED records. Access tokens are stored sealed.
type SyncedAccountService struct {
	store  *repository.Store
	cipher *secrets.TokenCipher
}

// NewSyncedAccountService creates a new SyncedAccountService.
func NewSyncedAccountService(store *repository.Store, cipher *secrets.TokenCipher) *SyncedAccountService {
	return &SyncedAccountService{
		store:  store,
		cipher: cipher,
	}
}

// SyncResult summarizes one snapshot import.
type SyncResult struct {
	AccountID       string `json:"accountId"`
	HoldingsCreated int    `json:"holdingsCreated"`
	HoldingsUpdated int    `json:"holdingsUpdated"`
	HoldingsSkipped int    `json:"holdingsSkipped"`
	IncomeImported  int    `json:"incomeImported"`
	IncomeSkipped   int    `json:"incomeSkipped"`
}

// GetAccounts returns the user's linked accounts. Tokens are never exposed.
func (s *SyncedAccountService) GetAccounts(ctx context.Context, userID string) ([]model.SyncedAccount, error) {
	return s.store.Accounts.GetSyncedAccounts(ctx, userID)
}

// GetAccount returns one linked account.
func (s *SyncedAccountService) GetAccount(ctx context.Context, userID, accountID string) (model.SyncedAccount, error) {
	return s.store.Accounts.GetSyncedAccount(ctx, userID, accountID)
}

// LinkAccount stores a new aggregator link with its token sealed.
func (s *SyncedAccountService) LinkAccount(ctx context.Context, userID string, req request.LinkAccountRequest) (*model.SyncedAccount, error) {
	if _, err := s.store.Users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	sealed, err := s.cipher.Encrypt(req.AccessToken)
	if err != nil {
		return nil, err
	}

	account := &model.SyncedAccount{
		ID:                newID(),
		UserID:            userID,
		Provider:          strings.ToLower(strings.TrimSpace(req.Provider)),
		ExternalAccountID: strings.TrimSpace(req.ExternalAccountID),
		AccessToken:       sealed,
		SyncStatus:        model.SyncStatusPending,
		CreatedAt:         now(),
	}

	if err := s.store.Accounts.InsertSyncedAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEntry) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to link account: %w", err)
	}
	return account, nil
}

// UnlinkAccount removes the link. Imported holdings and income stay.
func (s *SyncedAccountService) UnlinkAccount(ctx context.Context, userID, accountID string) error {
	return s.store.Accounts.DeleteSyncedAccount(ctx, userID, accountID)
}

// ImportSnapshot applies one aggregator pull in a single transaction.
//
// Positions update the account's live synced holding for the ticker or create
// one in the given portfolio. A ticker whose synced holding was reconciled
// away is skipped so the same duplicate is not offered again. Income rows
// already imported from this account are skipped, which makes repeated pulls
// idempotent.
//
// When the stored token can no longer be opened the account is marked
// AUTH_ERROR and apperrors.ErrAccountTokenInvalid is returned.
func (s *SyncedAccountService) ImportSnapshot(ctx context.Context, userID, accountID string, req request.SyncSnapshotRequest) (*SyncResult, error) {
	account, err := s.store.Accounts.GetSyncedAccount(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	if _, err := s.cipher.Decrypt(account.AccessToken); err != nil {
		log.Printf("synced account %s: token rejected, marking %s", accountID, model.SyncStatusAuthError)
		if uerr := s.store.Accounts.UpdateSyncStatus(ctx, userID, accountID, model.SyncStatusAuthError, nil); uerr != nil {
			log.Printf("synced account %s: failed to record sync status: %v", accountID, uerr)
		}
		return nil, err
	}

	if _, err := s.store.Portfolios.GetPortfolio(ctx, userID, req.PortfolioID); err != nil {
		return nil, err
	}

	result := &SyncResult{AccountID: accountID}
	at := now()

	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		for _, p := range req.Holdings {
			if err := s.importPosition(ctx, tx, account, req.PortfolioID, p, at, result); err != nil {
				return err
			}
		}
		for _, inc := range req.Income {
			if err := s.importIncome(ctx, tx, account, inc, at, result); err != nil {
				return err
			}
		}
		return tx.Accounts.UpdateSyncStatus(ctx, userID, accountID, model.SyncStatusOK, &at)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("synced account %s: %d holdings created, %d updated, %d skipped; %d income imported, %d skipped",
		accountID, result.HoldingsCreated, result.HoldingsUpdated, result.HoldingsSkipped,
		result.IncomeImported, result.IncomeSkipped)
	return result, nil
}

func (s *SyncedAccountService) importPosition(
	ctx context.Context,
	tx *repository.Store,
	account model.SyncedAccount,
	portfolioID string,
	p request.SyncedPosition,
	at time.Time,
	result *SyncResult,
) error {
	ticker, err := marketdata.NormalizeTicker(p.Ticker)
	if err != nil {
		return err
	}

	existing, err := tx.Holdings.FindSyncedHolding(ctx, account.UserID, account.ID, ticker)
	switch {
	case err == nil:
		if existing.Shares.Equal(p.Shares) && existing.CostBasis.Equal(p.CostBasis) && existing.Sector == strings.TrimSpace(p.Sector) {
			return nil
		}
		existing.Shares = p.Shares
		existing.CostBasis = p.CostBasis
		existing.Sector = strings.TrimSpace(p.Sector)
		existing.UpdatedAt = at
		if err := tx.Holdings.UpdateHolding(ctx, &existing); err != nil {
			return err
		}
		result.HoldingsUpdated++
		return nil
	case !errors.Is(err, apperrors.ErrHoldingNotFound):
		return err
	}

	retired, err := tx.Holdings.HasRetiredSyncedHolding(ctx, account.UserID, account.ID, ticker)
	if err != nil {
		return err
	}
	if retired {
		result.HoldingsSkipped++
		return nil
	}

	accountID := account.ID
	holding := &model.Holding{
		ID:              newID(),
		UserID:          account.UserID,
		PortfolioID:     portfolioID,
		Ticker:          ticker,
		Sector:          strings.TrimSpace(p.Sector),
		Shares:          p.Shares,
		CostBasis:       p.CostBasis,
		DataSource:      model.DataSourceSynced,
		SyncedAccountID: &accountID,
		CreatedAt:       at,
		UpdatedAt:       at,
	}
	if err := tx.Holdings.InsertHolding(ctx, holding); err != nil {
		return err
	}
	result.HoldingsCreated++
	return nil
}

func (s *SyncedAccountService) importIncome(
	ctx context.Context,
	tx *repository.Store,
	account model.SyncedAccount,
	inc request.SyncedIncome,
	at time.Time,
	result *SyncResult,
) error {
	receivedAt, err := request.ParseDateTime(inc.ReceivedAt)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	accountID := account.ID
	rec := &model.IncomeRecord{
		ID:              newID(),
		UserID:          account.UserID,
		Amount:          inc.Amount,
		Category:        model.IncomeCategory(strings.ToLower(strings.TrimSpace(inc.Category))),
		ReceivedAt:      receivedAt,
		Description:     inc.Description,
		DataSource:      model.DataSourceSynced,
		SyncedAccountID: &accountID,
		CreatedAt:       at,
	}

	exists, err := tx.Income.ExistsSyncedIncome(ctx, *rec)
	if err != nil {
		return err
	}
	if exists {
		result.IncomeSkipped++
		return nil
	}
	if err := tx.Income.InsertIncome(ctx, rec); err != nil {
		return err
	}
	result.IncomeImported++
	return nil
}
