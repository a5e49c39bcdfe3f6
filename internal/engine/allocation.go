package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
)

var basisPoints = decimal.NewFromInt(10000)

// ComputePortfolioAllocation groups holding values by sector and by ticker.
//
// A holding is valued at market when priced and at cost basis otherwise, so
// unpriced shares still count towards allocation. Holdings without a sector
// land in the Unknown bucket. Percentages use largest-remainder rounding so
// each breakdown sums to exactly 100.00.
func ComputePortfolioAllocation(holdings []model.Holding) model.PortfolioStrategyCard {
	card := model.PortfolioStrategyCard{
		BySector:    []model.AllocationSlice{},
		ByTicker:    []model.AllocationSlice{},
		Annotations: newAnnotations(),
	}

	bySector := map[string]decimal.Decimal{}
	byTicker := map[string]decimal.Decimal{}
	var total decimal.Decimal
	var asOf *time.Time

	for _, h := range holdings {
		if h.IsDeleted() {
			continue
		}
		if h.Shares.IsNegative() || h.CostBasis.IsNegative() {
			card.Exclude(model.WarnInvalidRecord, h.ID,
				fmt.Sprintf("%s has negative shares or cost basis", h.Ticker))
			continue
		}

		value, priced := h.MarketValue()
		if !priced {
			value = h.CostBasis
			card.Exclude(model.WarnValuedAtCost, h.ID,
				fmt.Sprintf("no price known for %s; valued at cost basis", h.Ticker))
		} else if h.PriceStale {
			t := h.UpdatedAt
			if h.PriceRefreshedAt != nil {
				t = *h.PriceRefreshedAt
			}
			asOf = oldest(asOf, t)
		}
		value = round2(value)

		sector := strings.TrimSpace(h.Sector)
		if sector == "" {
			sector = UnknownSector
		}
		bySector[sector] = bySector[sector].Add(value)
		byTicker[h.Ticker] = byTicker[h.Ticker].Add(value)
		total = total.Add(value)
	}

	card.TotalValue = figure(total, asOf)
	card.Stale = asOf != nil

	if len(byTicker) == 0 {
		return card
	}
	if !total.IsPositive() {
		card.Exclude(model.WarnZeroTotalValue, "", "portfolio has no value; percentages not computed")
		card.BySector = apportion(bySector, decimal.Zero)
		card.ByTicker = apportion(byTicker, decimal.Zero)
		return card
	}

	card.BySector = apportion(bySector, total)
	card.ByTicker = apportion(byTicker, total)
	return card
}

// apportion converts grouped values into slices ordered by value descending then
// key, with percentages apportioned by largest remainder. A zero total leaves
// every percentage at zero.
func apportion(groups map[string]decimal.Decimal, total decimal.Decimal) []model.AllocationSlice {
	out := make([]model.AllocationSlice, 0, len(groups))
	for k, v := range groups {
		out = append(out, model.AllocationSlice{Key: k, Value: v, Percent: decimal.Zero})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Value.Equal(out[j].Value) {
			return out[i].Value.GreaterThan(out[j].Value)
		}
		return out[i].Key < out[j].Key
	})

	if !total.IsPositive() {
		return out
	}

	// Work in basis points so the 2-decimal percentages are integers.
	floors := make([]int64, len(out))
	remainders := make([]decimal.Decimal, len(out))
	var allocated int64
	for i, s := range out {
		raw := s.Value.Mul(basisPoints).Div(total)
		f := raw.Floor()
		floors[i] = f.IntPart()
		remainders[i] = raw.Sub(f)
		allocated += floors[i]
	}

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := remainders[order[a]], remainders[order[b]]
		if !ra.Equal(rb) {
			return ra.GreaterThan(rb)
		}
		return out[order[a]].Key < out[order[b]].Key
	})
	for i := int64(0); i < 10000-allocated; i++ {
		floors[order[int(i)%len(order)]]++
	}

	for i := range out {
		out[i].Percent = decimal.New(floors[i], -2)
	}
	return out
}
