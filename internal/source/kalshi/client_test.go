package kalshi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/marketlens/marketdata/internal/source"
)

func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("https://api.example.com", nil)
		if c.baseURL != "https://api.example.com" {
			t.Errorf("baseURL = %q, want %q", c.baseURL, "https://api.example.com")
		}
		if c.maxRetries != 2 {
			t.Errorf("maxRetries = %d, want 2", c.maxRetries)
		}
		if c.retryBackoff != time.Second {
			t.Errorf("retryBackoff = %v, want 1s", c.retryBackoff)
		}
	})

	t.Run("with options", func(t *testing.T) {
		c := NewClient("https://api.example.com", nil,
			WithTimeout(5*time.Second),
			WithRetries(4, 2*time.Second),
		)
		if c.httpClient.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want 5s", c.httpClient.Timeout)
		}
		if c.maxRetries != 4 {
			t.Errorf("maxRetries = %d, want 4", c.maxRetries)
		}
	})
}

func TestGetMarkets(t *testing.T) {
	t.Run("single page", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/markets" {
				t.Errorf("path = %q, want /markets", r.URL.Path)
			}
			if got := r.URL.Query().Get("status"); got != "open" {
				t.Errorf("status = %q, want open", got)
			}
			json.NewEncoder(w).Encode(marketsResponse{
				Markets: []apiMarket{{Ticker: "KXTEST-26", Title: "Test market"}},
			})
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		resp, err := c.getMarkets(context.Background(), marketsOptions{Limit: 100, Status: "open"})
		if err != nil {
			t.Fatalf("getMarkets() error = %v", err)
		}
		if len(resp.Markets) != 1 {
			t.Fatalf("len(Markets) = %d, want 1", len(resp.Markets))
		}
		if resp.Markets[0].Ticker != "KXTEST-26" {
			t.Errorf("Ticker = %q, want KXTEST-26", resp.Markets[0].Ticker)
		}
	})

	t.Run("pagination by cursor", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch calls.Add(1) {
			case 1:
				if got := r.URL.Query().Get("cursor"); got != "" {
					t.Errorf("first call cursor = %q, want empty", got)
				}
				json.NewEncoder(w).Encode(marketsResponse{
					Markets: []apiMarket{{Ticker: "A", Title: "a"}, {Ticker: "B", Title: "b"}},
					Cursor:  "next-page",
				})
			case 2:
				if got := r.URL.Query().Get("cursor"); got != "next-page" {
					t.Errorf("second call cursor = %q, want next-page", got)
				}
				json.NewEncoder(w).Encode(marketsResponse{
					Markets: []apiMarket{{Ticker: "C", Title: "c"}},
				})
			default:
				t.Error("unexpected third call")
			}
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		markets, err := c.getAllMarkets(context.Background(), "open", 2)
		if err != nil {
			t.Fatalf("getAllMarkets() error = %v", err)
		}
		if len(markets) != 3 {
			t.Errorf("len(markets) = %d, want 3", len(markets))
		}
	})
}

func TestDoRequestErrors(t *testing.T) {
	t.Run("retries on 500", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(marketsResponse{Markets: []apiMarket{{Ticker: "A", Title: "a"}}})
		}))
		defer server.Close()

		c := NewClient(server.URL, nil, WithRetries(3, time.Millisecond))
		if _, err := c.getMarkets(context.Background(), marketsOptions{}); err != nil {
			t.Fatalf("getMarkets() error = %v", err)
		}
		if calls.Load() != 3 {
			t.Errorf("calls = %d, want 3", calls.Load())
		}
	})

	t.Run("no retry on 400", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		c := NewClient(server.URL, nil, WithRetries(3, time.Millisecond))
		_, err := c.getMarkets(context.Background(), marketsOptions{})
		if err == nil {
			t.Fatal("expected error")
		}
		if calls.Load() != 1 {
			t.Errorf("calls = %d, want 1", calls.Load())
		}
	})

	t.Run("retries exhausted", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		c := NewClient(server.URL, nil, WithRetries(1, time.Millisecond))
		_, err := c.getMarkets(context.Background(), marketsOptions{})
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("401 is auth error, never retried", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		c := NewClient(server.URL, nil, WithRetries(3, time.Millisecond))
		_, err := c.getMarkets(context.Background(), marketsOptions{})
		if err == nil {
			t.Fatal("expected error")
		}
		if !source.IsAuth(err) {
			t.Errorf("IsAuth(%v) = false, want true", err)
		}
		if calls.Load() != 1 {
			t.Errorf("calls = %d, want 1", calls.Load())
		}
	})

	t.Run("connection refused is network error", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", nil, WithRetries(0, time.Millisecond))
		_, err := c.getMarkets(context.Background(), marketsOptions{})
		if err == nil {
			t.Fatal("expected error")
		}
		if !source.IsNetwork(err) {
			t.Errorf("IsNetwork(%v) = false, want true", err)
		}
	})

	t.Run("invalid json is data shape error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		_, err := c.getMarkets(context.Background(), marketsOptions{})
		if err == nil {
			t.Fatal("expected error")
		}
		if !source.IsDataShape(err) {
			t.Errorf("IsDataShape(%v) = false, want true", err)
		}
	})
}

func TestSignedRequestHeaders(t *testing.T) {
	creds := &Credentials{KeyID: "header-test", PrivateKey: generateTestKey(t)}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("KALSHI-ACCESS-KEY"); got != "header-test" {
			t.Errorf("KALSHI-ACCESS-KEY = %q, want header-test", got)
		}
		if r.Header.Get("KALSHI-ACCESS-TIMESTAMP") == "" {
			t.Error("KALSHI-ACCESS-TIMESTAMP missing")
		}
		if r.Header.Get("KALSHI-ACCESS-SIGNATURE") == "" {
			t.Error("KALSHI-ACCESS-SIGNATURE missing")
		}
		json.NewEncoder(w).Encode(marketsResponse{})
	}))
	defer server.Close()

	c := NewClient(server.URL, creds)
	if _, err := c.getMarkets(context.Background(), marketsOptions{Limit: 1}); err != nil {
		t.Fatalf("getMarkets() error = %v", err)
	}
}

func TestGetCandlesticks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wantPath := "/series/KXSERIES/markets/KXSERIES-26/candlesticks"
		if r.URL.Path != wantPath {
			t.Errorf("path = %q, want %q", r.URL.Path, wantPath)
		}
		q := r.URL.Query()
		if got := q.Get("period_interval"); got != "60" {
			t.Errorf("period_interval = %q, want 60", got)
		}
		if got := q.Get("start_ts"); got != "1700000000" {
			t.Errorf("start_ts = %q, want 1700000000", got)
		}
		if got := q.Get("end_ts"); got != "1700003600" {
			t.Errorf("end_ts = %q, want 1700003600", got)
		}
		json.NewEncoder(w).Encode(candlesticksResponse{
			Candlesticks: []apiCandle{{
				EndPeriodTS: 1700003600,
				YesBid:      quoteBand{Close: 40},
				YesAsk:      quoteBand{Close: 42},
				Volume:      10,
			}},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)
	candles, err := c.getCandlesticks(context.Background(), "KXSERIES", "KXSERIES-26", 60, 1700000000, 1700003600)
	if err != nil {
		t.Fatalf("getCandlesticks() error = %v", err)
	}
	if len(candles) != 1 {
		t.Fatalf("len(candles) = %d, want 1", len(candles))
	}
	if candles[0].YesBid.Close != 40 {
		t.Errorf("YesBid.Close = %v, want 40", candles[0].YesBid.Close)
	}
}
