package yahoo

import "time"

// Response represents the raw JSON response structure from Yahoo Finance API.
// This type maps directly to the Yahoo Finance chart API response format,
// containing nested structures for metadata, timestamps, and price indicators.
//
// The structure includes:
//   - Chart.Result: Array of result objects (typically contains one element)
//   - Chart.Result[].Meta: Symbol metadata and the latest regular market price
//   - Chart.Result[].Timestamp: Unix timestamps for each data point
//   - Chart.Result[].Indicators: Close prices, null on days without trading
//   - Chart.Error: Optional error object from Yahoo API
//
// Dividend events are not mapped here; ParseDividends reads them from Raw.
type Response struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string   `json:"currency"`
				Symbol             string   `json:"symbol"`
				ExchangeName       string   `json:"exchangeName"`
				LongName           string   `json:"longName"`
				Shortname          string   `json:"shortName"`
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64    `json:"regularMarketTime"`
				ChartPreviousClose *float64 `json:"chartPreviousClose"`
				PreviousClose      *float64 `json:"previousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *ChartError `json:"error"`
	} `json:"chart"`

	// Raw holds the undecoded body.
	Raw []byte `json:"-"`
}

// ChartError is the error object Yahoo embeds in chart responses.
type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *ChartError) Error() string {
	return e.Code + ": " + e.Description
}

// PriceChart represents a parsed and structured price chart from Yahoo Finance.
// This is the application's internal representation after parsing the raw Response.
//
// RegularMarketPrice and PreviousClose are nil when Yahoo omits them.
// Indicators holds one entry per trading day that has a close.
type PriceChart struct {
	Currency           string       `json:"currency"`
	Symbol             string       `json:"symbol"`
	ExchangeName       string       `json:"exchangeName"`
	LongName           string       `json:"longName"`
	Shortname          string       `json:"shortName"`
	RegularMarketPrice *float64     `json:"regularMarketPrice"`
	MarketTime         time.Time    `json:"marketTime"`
	PreviousClose      *float64     `json:"previousClose"`
	Indicators         []Indicators `json:"indicators"`
}

// Indicators represents a single day's close for a financial instrument.
type Indicators struct {
	Date       time.Time
	PriceClose float64
}

// Dividend is one cash dividend per share paid on Date.
type Dividend struct {
	Date   time.Time
	Amount float64
}
