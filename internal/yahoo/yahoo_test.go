package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
)

const chartBody = `{
  "chart": {
    "result": [{
      "meta": {
        "currency": "USD",
        "symbol": "SCHD",
        "exchangeName": "PCX",
        "longName": "Schwab US Dividend Equity ETF",
        "regularMarketPrice": 27.45,
        "regularMarketTime": 1741982400,
        "chartPreviousClose": 27.10
      },
      "timestamp": [1741699800, 1741786200, 1741872600],
      "indicators": {"quote": [{"close": [27.01, null, 27.45]}]},
      "events": {
        "dividends": {
          "1734566400": {"amount": 0.2645, "date": 1734566400},
          "1727308800": {"amount": 0.2488, "date": 1727308800}
        }
      }
    }],
    "error": null
  }
}`

const notFoundBody = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func newTestServer(t *testing.T, status int, body string, seen *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = r.URL.String()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFinanceClient_QueryFiveDay(t *testing.T) {
	t.Run("parses quote with null closes skipped", func(t *testing.T) {
		var seen string
		srv := newTestServer(t, http.StatusOK, chartBody, &seen)
		client := NewFinanceClient(srv.URL, 0, 1)

		resp, err := client.QueryFiveDay(context.Background(), "SCHD")
		if err != nil {
			t.Fatalf("QueryFiveDay() returned unexpected error: %v", err)
		}
		if !strings.Contains(seen, "/v8/finance/chart/SCHD") || !strings.Contains(seen, "range=5d") {
			t.Errorf("Unexpected request URL %s", seen)
		}

		chart, err := ParseChart(resp)
		if err != nil {
			t.Fatalf("ParseChart() returned unexpected error: %v", err)
		}
		if chart.Symbol != "SCHD" {
			t.Errorf("Expected symbol SCHD, got %s", chart.Symbol)
		}
		if chart.RegularMarketPrice == nil || *chart.RegularMarketPrice != 27.45 {
			t.Errorf("Expected market price 27.45, got %v", chart.RegularMarketPrice)
		}
		if chart.PreviousClose == nil || *chart.PreviousClose != 27.10 {
			t.Errorf("Expected previous close 27.10, got %v", chart.PreviousClose)
		}
		if len(chart.Indicators) != 2 {
			t.Fatalf("Expected 2 closes, got %d", len(chart.Indicators))
		}
		if chart.Indicators[1].PriceClose != 27.45 {
			t.Errorf("Expected last close 27.45, got %f", chart.Indicators[1].PriceClose)
		}
		if !chart.MarketTime.Equal(time.Unix(1741982400, 0)) {
			t.Errorf("Unexpected market time %s", chart.MarketTime)
		}
	})

	t.Run("unknown symbol maps to ErrSymbolNotFound", func(t *testing.T) {
		srv := newTestServer(t, http.StatusNotFound, notFoundBody, nil)
		client := NewFinanceClient(srv.URL, 0, 1)

		_, err := client.QueryFiveDay(context.Background(), "NOPE")
		if !errors.Is(err, apperrors.ErrSymbolNotFound) {
			t.Errorf("Expected ErrSymbolNotFound, got %v", err)
		}
		if !IsNotFound(err) {
			t.Error("Expected IsNotFound to be true")
		}
	})

	t.Run("server error is not a missing symbol", func(t *testing.T) {
		srv := newTestServer(t, http.StatusBadGateway, "<html>bad gateway</html>", nil)
		client := NewFinanceClient(srv.URL, 0, 1)

		_, err := client.QueryFiveDay(context.Background(), "SCHD")
		if err == nil {
			t.Fatal("Expected error, got nil")
		}
		if IsNotFound(err) {
			t.Errorf("Expected a transient error, got %v", err)
		}
	})

	t.Run("cancelled context aborts the request", func(t *testing.T) {
		block := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-block:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(func() {
			close(block)
			srv.Close()
		})
		client := NewFinanceClient(srv.URL, 0, 1)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := client.QueryFiveDay(ctx, "SCHD")
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Expected context.DeadlineExceeded, got %v", err)
		}
	})
}

func TestFinanceClient_QueryRange(t *testing.T) {
	var seen string
	srv := newTestServer(t, http.StatusOK, chartBody, &seen)
	client := NewFinanceClient(srv.URL, 0, 1)

	start := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	resp, err := client.QueryRange(context.Background(), "SCHD", start, end)
	if err != nil {
		t.Fatalf("QueryRange() returned unexpected error: %v", err)
	}
	if !strings.Contains(seen, "events=div") || !strings.Contains(seen, "period1=1710460800") {
		t.Errorf("Unexpected request URL %s", seen)
	}

	dividends, err := ParseDividends(resp)
	if err != nil {
		t.Fatalf("ParseDividends() returned unexpected error: %v", err)
	}
	if len(dividends) != 2 {
		t.Fatalf("Expected 2 dividends, got %d", len(dividends))
	}
	if dividends[0].Amount != 0.2488 || dividends[1].Amount != 0.2645 {
		t.Errorf("Expected dividends oldest first, got %+v", dividends)
	}
}

func TestParseDividends(t *testing.T) {
	t.Run("no events yields empty slice", func(t *testing.T) {
		resp := Response{Raw: []byte(`{"chart":{"result":[{"meta":{"symbol":"VTI"}}]}}`)}

		dividends, err := ParseDividends(resp)
		if err != nil {
			t.Fatalf("ParseDividends() returned unexpected error: %v", err)
		}
		if len(dividends) != 0 {
			t.Errorf("Expected 0 dividends, got %d", len(dividends))
		}
	})

	t.Run("malformed event is an error", func(t *testing.T) {
		resp := Response{Raw: []byte(`{"chart":{"result":[{"events":{"dividends":{"1":{"date":1}}}}]}}`)}

		if _, err := ParseDividends(resp); err == nil {
			t.Error("Expected error for event without amount, got nil")
		}
	})
}

func TestParseChart(t *testing.T) {
	t.Run("empty result", func(t *testing.T) {
		if _, err := ParseChart(Response{}); err == nil {
			t.Error("Expected error, got nil")
		}
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		var resp Response
		body := `{"chart":{"result":[{"meta":{"symbol":"VTI"},"timestamp":[1,2],"indicators":{"quote":[{"close":[1.0]}]}}]}}`
		if err := json.Unmarshal([]byte(body), &resp); err != nil {
			t.Fatalf("Failed to decode fixture: %v", err)
		}

		if _, err := ParseChart(resp); err == nil {
			t.Error("Expected error for mismatched lengths, got nil")
		}
	})
}
