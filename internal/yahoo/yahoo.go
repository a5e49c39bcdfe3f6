package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"golang.org/x/time/rate"

	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
)

// DefaultBaseURL is the public Yahoo Finance query host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

const dividendsPath = "$.chart.result[0].events.dividends"

// Client is the subset of the Yahoo Finance API the market data gateway uses.
type Client interface {
	QueryFiveDay(ctx context.Context, symbol string) (Response, error)
	QueryRange(ctx context.Context, symbol string, start, end time.Time) (Response, error)
}

// FinanceClient provides methods for fetching financial data from Yahoo Finance API.
// It wraps an HTTP client and limits the outbound request rate so bursts of
// dashboard loads cannot trip the provider's throttling.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewFinanceClient creates a new Yahoo Finance client.
//
// Parameters:
//   - baseURL: API host; empty selects DefaultBaseURL
//   - requestsPerSec: sustained outbound request rate; zero or less disables limiting
//   - burst: number of requests allowed at once
func NewFinanceClient(baseURL string, requestsPerSec float64, burst int) *FinanceClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	limit := rate.Inf
	if requestsPerSec > 0 {
		limit = rate.Limit(requestsPerSec)
	}
	if burst < 1 {
		burst = 1
	}
	return &FinanceClient{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(limit, burst),
	}
}

// ParseChart converts a raw Yahoo Finance API response into a structured price chart.
// Days whose close is null are skipped.
//
// The method performs validation to ensure:
//   - A result is present
//   - Close price data is present
//   - Data arrays have matching lengths
func ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, fmt.Errorf("no results returned")
	}
	result := yahooResult.Chart.Result[0]

	chart := PriceChart{
		Symbol:             result.Meta.Symbol,
		Currency:           result.Meta.Currency,
		ExchangeName:       result.Meta.ExchangeName,
		LongName:           result.Meta.LongName,
		Shortname:          result.Meta.Shortname,
		RegularMarketPrice: result.Meta.RegularMarketPrice,
		PreviousClose:      result.Meta.ChartPreviousClose,
		Indicators:         []Indicators{},
	}
	if result.Meta.PreviousClose != nil {
		chart.PreviousClose = result.Meta.PreviousClose
	}
	if result.Meta.RegularMarketTime > 0 {
		chart.MarketTime = time.Unix(result.Meta.RegularMarketTime, 0).UTC()
	}

	if len(result.Timestamp) == 0 {
		if chart.RegularMarketPrice == nil {
			return PriceChart{}, fmt.Errorf("no price data returned")
		}
		return chart, nil
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return PriceChart{}, fmt.Errorf("no close prices returned")
	}

	closes := result.Indicators.Quote[0].Close
	if len(closes) != len(result.Timestamp) {
		return PriceChart{}, fmt.Errorf("mismatched data lengths")
	}

	for i, v := range result.Timestamp {
		if closes[i] == nil {
			continue
		}
		chart.Indicators = append(chart.Indicators, Indicators{
			Date:       time.Unix(v, 0).UTC(),
			PriceClose: *closes[i],
		})
	}

	return chart, nil
}

// ParseDividends extracts the dividend events of a range query, oldest first.
// A response without dividend events yields an empty slice.
func ParseDividends(yahooResult Response) ([]Dividend, error) {
	if len(yahooResult.Raw) == 0 {
		return []Dividend{}, nil
	}

	var doc any
	if err := json.Unmarshal(yahooResult.Raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	node, err := jsonpath.Get(dividendsPath, doc)
	if err != nil {
		// jsonpath reports a missing key as an error; no events means no dividends.
		return []Dividend{}, nil
	}
	events, ok := node.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected dividends payload %T", node)
	}

	dividends := make([]Dividend, 0, len(events))
	for key, raw := range events {
		ev, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unexpected dividend event %s", key)
		}
		amount, ok := ev["amount"].(float64)
		if !ok {
			return nil, fmt.Errorf("dividend event %s has no amount", key)
		}
		date, ok := ev["date"].(float64)
		if !ok {
			return nil, fmt.Errorf("dividend event %s has no date", key)
		}
		dividends = append(dividends, Dividend{Date: time.Unix(int64(date), 0).UTC(), Amount: amount})
	}

	sort.Slice(dividends, func(i, j int) bool { return dividends[i].Date.Before(dividends[j].Date) })
	return dividends, nil
}

// QueryFiveDay fetches the last 5 days of daily price data for a symbol.
// This method is optimized for retrieving the latest price and previous close.
//
// Returns apperrors.ErrSymbolNotFound when Yahoo does not know the symbol.
func (c *FinanceClient) QueryFiveDay(ctx context.Context, symbol string) (Response, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d", c.baseURL, url.PathEscape(symbol))
	return c.queryChart(ctx, symbol, endpoint)
}

// QueryRange fetches daily price data and dividend events for a symbol within a date range.
//
// Parameters:
//   - symbol: Stock ticker symbol (e.g., "AAPL", "MSFT")
//   - start: Beginning of date range (inclusive)
//   - end: End of date range (inclusive)
//
// Returns apperrors.ErrSymbolNotFound when Yahoo does not know the symbol.
func (c *FinanceClient) QueryRange(ctx context.Context, symbol string, start, end time.Time) (Response, error) {
	endpoint := fmt.Sprintf(
		"%s/v8/finance/chart/%s?interval=1d&events=div&period1=%d&period2=%d",
		c.baseURL,
		url.PathEscape(symbol),
		start.Unix(),
		end.Unix(),
	)
	return c.queryChart(ctx, symbol, endpoint)
}

func (c *FinanceClient) queryChart(ctx context.Context, symbol, endpoint string) (Response, error) {
	result, err := c.queryYahoo(ctx, endpoint)
	if err != nil {
		return Response{}, err
	}
	if len(result.Chart.Result) == 0 {
		return Response{}, fmt.Errorf("%w: no results returned for symbol %s", apperrors.ErrSymbolNotFound, symbol)
	}
	return result, nil
}

// queryYahoo is an internal helper that executes HTTP requests to Yahoo Finance API.
// This method handles the common logic for waiting on the rate limiter, reading
// responses, parsing JSON, and checking for API errors.
//
// The method sets required headers:
//   - User-Agent: Mimics a browser to avoid API blocking
//   - Accept: Requests JSON response format
func (c *FinanceClient) queryYahoo(ctx context.Context, endpoint string) (Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		if resp.StatusCode != http.StatusOK {
			return Response{}, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
		}
		return Response{}, err
	}
	response.Raw = data

	if chartErr := response.Chart.Error; chartErr != nil {
		if strings.EqualFold(chartErr.Code, "Not Found") {
			return response, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, chartErr.Description)
		}
		return response, fmt.Errorf("yahoo error: %w", chartErr)
	}
	if resp.StatusCode == http.StatusNotFound {
		return response, apperrors.ErrSymbolNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return response, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
	}

	return response, nil
}

// IsNotFound reports whether err means Yahoo does not know the symbol.
func IsNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrSymbolNotFound)
}
