package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/yahoo"
)

type mockSymbol struct {
	price  *float64
	closes []yahoo.Indicators
	divs   []yahoo.Dividend
}

// MockYahooClient is an in-memory yahoo.Client for testing.
// Unknown symbols answer with apperrors.ErrSymbolNotFound, like the real API.
type MockYahooClient struct {
	mu      sync.Mutex
	symbols map[string]*mockSymbol
	err     error
	delay   time.Duration
	calls   int
}

// NewMockYahooClient creates a mock that knows no symbols.
func NewMockYahooClient() *MockYahooClient {
	return &MockYahooClient{symbols: make(map[string]*mockSymbol)}
}

func (m *MockYahooClient) symbol(s string) *mockSymbol {
	sym, ok := m.symbols[s]
	if !ok {
		sym = &mockSymbol{}
		m.symbols[s] = sym
	}
	return sym
}

// WithQuote sets the regular market price of symbol.
func (m *MockYahooClient) WithQuote(symbol string, price float64) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbol(symbol).price = &price
	return m
}

// WithDailyCloses sets one close per day, the last one dated on end.
func (m *MockYahooClient) WithDailyCloses(symbol string, end time.Time, closes ...float64) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	sym := m.symbol(symbol)
	sym.closes = sym.closes[:0]
	for i, c := range closes {
		day := end.AddDate(0, 0, i-len(closes)+1)
		sym.closes = append(sym.closes, yahoo.Indicators{Date: day.UTC(), PriceClose: c})
	}
	return m
}

// WithDividend adds a per-share dividend paid on date.
func (m *MockYahooClient) WithDividend(symbol string, date time.Time, amount float64) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	sym := m.symbol(symbol)
	sym.divs = append(sym.divs, yahoo.Dividend{Date: date.UTC(), Amount: amount})
	return m
}

// WithError makes every query fail with err.
func (m *MockYahooClient) WithError(err error) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithDelay makes every query wait d, or until its context ends.
func (m *MockYahooClient) WithDelay(d time.Duration) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// Calls returns the number of queries received.
func (m *MockYahooClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// QueryFiveDay returns the last five closes and the quote of symbol.
func (m *MockYahooClient) QueryFiveDay(ctx context.Context, symbol string) (yahoo.Response, error) {
	sym, err := m.begin(ctx, symbol)
	if err != nil {
		return yahoo.Response{}, err
	}
	closes := sym.closes
	if len(closes) > 5 {
		closes = closes[len(closes)-5:]
	}
	return MockChartResponse(symbol, sym.price, closes, nil), nil
}

// QueryRange returns the closes and dividends of symbol within [start, end].
func (m *MockYahooClient) QueryRange(ctx context.Context, symbol string, start, end time.Time) (yahoo.Response, error) {
	sym, err := m.begin(ctx, symbol)
	if err != nil {
		return yahoo.Response{}, err
	}
	var closes []yahoo.Indicators
	for _, c := range sym.closes {
		if !c.Date.Before(start) && !c.Date.After(end) {
			closes = append(closes, c)
		}
	}
	var divs []yahoo.Dividend
	for _, d := range sym.divs {
		if !d.Date.Before(start) && !d.Date.After(end) {
			divs = append(divs, d)
		}
	}
	return MockChartResponse(symbol, sym.price, closes, divs), nil
}

func (m *MockYahooClient) begin(ctx context.Context, symbol string) (mockSymbol, error) {
	m.mu.Lock()
	m.calls++
	delay, err := m.delay, m.err
	sym, ok := m.symbols[symbol]
	var snapshot mockSymbol
	if ok {
		snapshot = *sym
	}
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return mockSymbol{}, ctx.Err()
		}
	}
	if err != nil {
		return mockSymbol{}, err
	}
	if !ok {
		return mockSymbol{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
	}
	return snapshot, nil
}

// MockChartResponse builds a chart response the way the API encodes it,
// including the raw body used for dividend extraction.
func MockChartResponse(symbol string, price *float64, closes []yahoo.Indicators, divs []yahoo.Dividend) yahoo.Response {
	timestamps := make([]int64, 0, len(closes))
	values := make([]float64, 0, len(closes))
	for _, c := range closes {
		timestamps = append(timestamps, c.Date.Unix())
		values = append(values, c.PriceClose)
	}

	result := map[string]any{
		"meta": map[string]any{
			"symbol":       symbol,
			"currency":     "USD",
			"exchangeName": "NMS",
			"longName":     symbol + " Test Fund",
		},
		"timestamp":  timestamps,
		"indicators": map[string]any{"quote": []any{map[string]any{"close": values}}},
	}
	if price != nil {
		result["meta"].(map[string]any)["regularMarketPrice"] = *price
	}
	if len(divs) > 0 {
		events := make(map[string]any, len(divs))
		for _, d := range divs {
			key := fmt.Sprintf("%d", d.Date.Unix())
			events[key] = map[string]any{"amount": d.Amount, "date": d.Date.Unix()}
		}
		result["events"] = map[string]any{"dividends": events}
	}

	raw, err := json.Marshal(map[string]any{"chart": map[string]any{"result": []any{result}, "error": nil}})
	if err != nil {
		panic(err)
	}
	var resp yahoo.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		panic(err)
	}
	resp.Raw = raw
	return resp
}
