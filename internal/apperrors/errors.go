package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrUserNotFound indicates that a user with the given ID does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist
	// for the requesting user.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrHoldingNotFound indicates that an active holding with the given ID does not exist.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrIncomeNotFound indicates that an income record with the given ID does not exist.
	ErrIncomeNotFound = errors.New("income record not found")

	// ErrExpenseNotFound indicates that an expense record with the given ID does not exist.
	ErrExpenseNotFound = errors.New("expense record not found")

	// ErrTaxProfileNotFound indicates the user has not configured a tax profile yet.
	ErrTaxProfileNotFound = errors.New("tax profile not found")

	// ErrJurisdictionNotFound indicates an unknown tax jurisdiction code.
	ErrJurisdictionNotFound = errors.New("tax jurisdiction not found")

	// ErrSyncedAccountNotFound indicates that a linked aggregator account does not exist.
	ErrSyncedAccountNotFound = errors.New("synced account not found")

	// ErrReconciliationNotFound indicates that a reconciliation with the given ID does not exist.
	ErrReconciliationNotFound = errors.New("reconciliation not found")

	// ErrSymbolNotFound indicates that a symbol lookup returned no results
	ErrSymbolNotFound = errors.New("symbol not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidInput indicates a malformed record or request value, such as
	// negative shares or a tax rate outside [0,1].
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTicker indicates a ticker that is malformed or unknown to the quote provider.
	// It is the only error the market data gateway surfaces to callers.
	ErrInvalidTicker = errors.New("invalid ticker")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrReconciliationConflict indicates that a candidate pair cannot be resolved
	// without an explicit user decision, or that the records changed since matching.
	ErrReconciliationConflict = errors.New("reconciliation requires a user decision")

	// ErrAlreadyUndone indicates that a reconciliation was already reverted.
	ErrAlreadyUndone = errors.New("reconciliation already undone")

	// ErrAccountTokenInvalid indicates a stored aggregator token that can no longer be decrypted.
	ErrAccountTokenInvalid = errors.New("synced account token is invalid")
)

// Operation failure errors represent recoverable or system-level failures.
var (
	// ErrDataUnavailable indicates that records needed for a figure are missing.
	// The engine recovers by substituting documented defaults and flagging the card incomplete.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrUpstreamTimeout indicates that the quote provider did not answer in time.
	// The gateway recovers by serving the last cached value marked stale.
	ErrUpstreamTimeout = errors.New("upstream timeout")

	// ErrFailedToRetrieve is the generic message for record store read failures.
	ErrFailedToRetrieve = errors.New("failed to retrieve data")

	// ErrFailedToGetVersionInfo indicates the schema version could not be read.
	ErrFailedToGetVersionInfo = errors.New("failed to get version information")

	// ErrFailedToComputeSuperCards indicates a hard failure while building dashboards.
	ErrFailedToComputeSuperCards = errors.New("failed to compute super cards")
)
