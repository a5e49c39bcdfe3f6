// Package reconcile pairs manually entered holdings with holdings imported from
// a synced account and resolves each pair by an explicit user choice.
//
// Matching never writes anything. Reconcile only describes the outcome; the
// record store applies it in one transaction and keeps enough state to undo it.
package reconcile

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
)

// Tier is the confidence that a candidate pair is the same real-world position.
type Tier string

const (
	TierHigh   Tier = "HIGH"
	TierMedium Tier = "MEDIUM"
	TierLow    Tier = "LOW"
)

// Choice is the user's resolution of a candidate pair.
type Choice string

const (
	KeepManual     Choice = "KEEP_MANUAL"
	KeepSynced     Choice = "KEEP_SYNCED"
	MergeSumShares Choice = "MERGE_SUM_SHARES"
)

// DefaultTolerance is the relative difference within which shares or cost
// basis count as matching.
var DefaultTolerance = decimal.RequireFromString("0.05")

// ParseChoice validates a choice string.
func ParseChoice(s string) (Choice, error) {
	switch c := Choice(strings.ToUpper(strings.TrimSpace(s))); c {
	case KeepManual, KeepSynced, MergeSumShares:
		return c, nil
	}
	return "", fmt.Errorf("%w: unknown reconcile choice %q", apperrors.ErrInvalidInput, s)
}

// Candidate is one manual/synced pair sharing a ticker.
type Candidate struct {
	Ticker    string          `json:"ticker"`
	Manual    model.Holding   `json:"manual"`
	Synced    model.Holding   `json:"synced"`
	ShareDiff decimal.Decimal `json:"shareDiff"`
	CostDiff  decimal.Decimal `json:"costDiff"`
	Score     decimal.Decimal `json:"score"`
	Tier      Tier            `json:"tier"`
	// Ambiguous is set when either holding also appears in another candidate.
	Ambiguous bool `json:"ambiguous"`
}

// AutoResolvable reports whether the pair may be resolved without asking the user.
func AutoResolvable(c Candidate) bool {
	return c.Tier == TierHigh && !c.Ambiguous
}

// NormalizeTicker trims and upper-cases a ticker symbol.
func NormalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

// MatchCandidates pairs every live manual holding with every live synced holding
// of the same ticker and scores how closely shares and cost basis agree.
//
// The tier is HIGH when both differences are within tolerance, MEDIUM when one
// is and LOW otherwise. The output order is ticker, manual id, synced id, so the
// same inputs always give the same pairs and tiers.
func MatchCandidates(manual, synced []model.Holding, tolerance decimal.Decimal) []Candidate {
	if tolerance.IsNegative() {
		tolerance = decimal.Zero
	}

	byTicker := map[string][]model.Holding{}
	for _, s := range synced {
		if !eligible(s, model.DataSourceSynced) {
			continue
		}
		t := NormalizeTicker(s.Ticker)
		byTicker[t] = append(byTicker[t], s)
	}

	candidates := []Candidate{}
	for _, m := range manual {
		if !eligible(m, model.DataSourceManual) {
			continue
		}
		t := NormalizeTicker(m.Ticker)
		for _, s := range byTicker[t] {
			shareDiff := relDiff(m.Shares, s.Shares)
			costDiff := relDiff(m.CostBasis, s.CostBasis)
			candidates = append(candidates, Candidate{
				Ticker:    t,
				Manual:    m,
				Synced:    s,
				ShareDiff: shareDiff.Round(4),
				CostDiff:  costDiff.Round(4),
				Score:     score(shareDiff, costDiff),
				Tier:      tier(shareDiff, costDiff, tolerance),
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Ticker != b.Ticker {
			return a.Ticker < b.Ticker
		}
		if a.Manual.ID != b.Manual.ID {
			return a.Manual.ID < b.Manual.ID
		}
		return a.Synced.ID < b.Synced.ID
	})

	uses := map[string]int{}
	for _, c := range candidates {
		uses[c.Manual.ID]++
		uses[c.Synced.ID]++
	}
	for i := range candidates {
		candidates[i].Ambiguous = uses[candidates[i].Manual.ID] > 1 || uses[candidates[i].Synced.ID] > 1
	}

	return candidates
}

func eligible(h model.Holding, source model.DataSource) bool {
	return !h.IsDeleted() && h.DataSource == source
}

// relDiff returns |a-b| / max(a,b), or 0 when both are zero.
func relDiff(a, b decimal.Decimal) decimal.Decimal {
	hi := decimal.Max(a, b)
	if !hi.IsPositive() {
		if a.Equal(b) {
			return decimal.Zero
		}
		return decimal.NewFromInt(1)
	}
	return a.Sub(b).Abs().Div(hi)
}

func score(shareDiff, costDiff decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	s := one.Sub(shareDiff.Add(costDiff).Div(decimal.NewFromInt(2)))
	if s.IsNegative() {
		s = decimal.Zero
	}
	if s.GreaterThan(one) {
		s = one
	}
	return s.Round(4)
}

func tier(shareDiff, costDiff, tolerance decimal.Decimal) Tier {
	within := 0
	if shareDiff.LessThanOrEqual(tolerance) {
		within++
	}
	if costDiff.LessThanOrEqual(tolerance) {
		within++
	}
	switch within {
	case 2:
		return TierHigh
	case 1:
		return TierMedium
	}
	return TierLow
}

// Result describes the writes a reconcile decision requires.
//
// Kept is the surviving original when one side is kept. Merged is a new holding
// when shares are summed. SoftDeleted lists originals to mark deleted. The
// snapshots are the originals exactly as they were matched; the store refuses
// the result if either record has changed since.
type Result struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId"`
	Ticker         string         `json:"ticker"`
	Choice         Choice         `json:"choice"`
	ManualSnapshot model.Holding  `json:"manualSnapshot"`
	SyncedSnapshot model.Holding  `json:"syncedSnapshot"`
	Kept           *model.Holding `json:"kept,omitempty"`
	Merged         *model.Holding `json:"merged,omitempty"`
	SoftDeleted    []string       `json:"softDeleted"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// ResultHoldingID returns the id of the holding that represents the position
// after the decision.
func (r Result) ResultHoldingID() string {
	switch {
	case r.Merged != nil:
		return r.Merged.ID
	case r.Kept != nil:
		return r.Kept.ID
	}
	return ""
}

// Reconcile resolves a candidate pair by choice. newID supplies the id of the
// reconciliation and, for a merge, of the merged holding.
func Reconcile(c Candidate, choice Choice, now time.Time, newID func() string) (Result, error) {
	if _, err := ParseChoice(string(choice)); err != nil {
		return Result{}, err
	}
	m, s := c.Manual, c.Synced
	if m.ID == "" || s.ID == "" {
		return Result{}, fmt.Errorf("%w: candidate is missing a holding", apperrors.ErrInvalidInput)
	}
	if m.UserID != s.UserID {
		return Result{}, fmt.Errorf("%w: holdings belong to different users", apperrors.ErrInvalidInput)
	}
	if NormalizeTicker(m.Ticker) != NormalizeTicker(s.Ticker) {
		return Result{}, fmt.Errorf("%w: tickers %s and %s differ", apperrors.ErrInvalidInput, m.Ticker, s.Ticker)
	}
	if m.IsDeleted() || s.IsDeleted() {
		return Result{}, fmt.Errorf("%w: holding already reconciled", apperrors.ErrReconciliationConflict)
	}

	res := Result{
		ID:             newID(),
		UserID:         m.UserID,
		Ticker:         NormalizeTicker(m.Ticker),
		Choice:         choice,
		ManualSnapshot: m,
		SyncedSnapshot: s,
		CreatedAt:      now.UTC(),
	}

	switch choice {
	case KeepManual:
		kept := m
		res.Kept = &kept
		res.SoftDeleted = []string{s.ID}
	case KeepSynced:
		kept := s
		res.Kept = &kept
		res.SoftDeleted = []string{m.ID}
	case MergeSumShares:
		merged := merge(m, s, now.UTC())
		merged.ID = newID()
		res.Merged = &merged
		res.SoftDeleted = []string{m.ID, s.ID}
	}

	return res, nil
}

// merge sums shares and cost basis into a new MERGED holding placed in the
// manual holding's portfolio. The more recently refreshed price wins.
func merge(m, s model.Holding, now time.Time) model.Holding {
	sector := m.Sector
	if strings.TrimSpace(sector) == "" {
		sector = s.Sector
	}
	merged := model.Holding{
		UserID:          m.UserID,
		PortfolioID:     m.PortfolioID,
		Ticker:          NormalizeTicker(m.Ticker),
		Sector:          sector,
		Shares:          m.Shares.Add(s.Shares),
		CostBasis:       m.CostBasis.Add(s.CostBasis),
		DataSource:      model.DataSourceMerged,
		SyncedAccountID: s.SyncedAccountID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	src := m
	if newer(s.PriceRefreshedAt, m.PriceRefreshedAt) || !m.CurrentPrice.Valid {
		src = s
	}
	merged.CurrentPrice = src.CurrentPrice
	merged.PreviousClose = src.PreviousClose
	merged.PriceRefreshedAt = src.PriceRefreshedAt
	return merged
}

func newer(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	return b == nil || a.After(*b)
}
