package polymarket

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/marketlens/marketdata/internal/model"
)

func TestAdapterDiscover(t *testing.T) {
	t.Run("filters applied", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[
				{"id": "1", "question": "keeps", "active": true, "closed": false, "volumeClob": 5000, "clobTokenIds": ["t1", "t2"]},
				{"id": "2", "question": "below volume floor", "active": true, "closed": false, "volumeClob": 10, "clobTokenIds": ["t3"]},
				{"id": "3", "question": "closed", "active": true, "closed": true, "volumeClob": 5000, "clobTokenIds": ["t4"]},
				{"id": "4", "question": "no tokens", "active": true, "closed": false, "volumeClob": 5000, "clobTokenIds": []},
				{"id": "", "question": "malformed"}
			]`))
		}))
		defer server.Close()

		a := NewAdapter(NewClient(server.URL, server.URL), AdapterConfig{}, nil)
		res, err := a.Discover(context.Background())
		if err != nil {
			t.Fatalf("Discover() error = %v", err)
		}
		if len(res.Markets) != 1 {
			t.Fatalf("len(Markets) = %d, want 1", len(res.Markets))
		}
		if res.Markets[0].Ticker != "1" {
			t.Errorf("Ticker = %q, want 1", res.Markets[0].Ticker)
		}
		if res.Skipped != 1 {
			t.Errorf("Skipped = %d, want 1", res.Skipped)
		}
	})

	t.Run("stops at max markets", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Always a full page of qualifying markets.
			offset := r.URL.Query().Get("offset")
			fmt.Fprintf(w, `[
				{"id": "%s-a", "question": "a", "active": true, "closed": false, "volumeClob": 5000, "clobTokenIds": ["t"]},
				{"id": "%s-b", "question": "b", "active": true, "closed": false, "volumeClob": 5000, "clobTokenIds": ["t"]}
			]`, offset, offset)
		}))
		defer server.Close()

		a := NewAdapter(NewClient(server.URL, server.URL), AdapterConfig{PageLimit: 2, MaxMarkets: 5}, nil)
		res, err := a.Discover(context.Background())
		if err != nil {
			t.Fatalf("Discover() error = %v", err)
		}
		if len(res.Markets) != 5 {
			t.Errorf("len(Markets) = %d, want 5", len(res.Markets))
		}
	})

	t.Run("stops on short page", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("offset") != "0" {
				t.Error("unexpected second page request")
			}
			w.Write([]byte(`[{"id": "1", "question": "only", "active": true, "closed": false, "volumeClob": 5000, "clobTokenIds": ["t"]}]`))
		}))
		defer server.Close()

		a := NewAdapter(NewClient(server.URL, server.URL), AdapterConfig{PageLimit: 100}, nil)
		res, err := a.Discover(context.Background())
		if err != nil {
			t.Fatalf("Discover() error = %v", err)
		}
		if len(res.Markets) != 1 {
			t.Errorf("len(Markets) = %d, want 1", len(res.Markets))
		}
	})
}

func TestAdapterFetchTicks(t *testing.T) {
	t.Run("uses first token id", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("market"); got != "yes-token" {
				t.Errorf("market = %q, want yes-token", got)
			}
			w.Write([]byte(`{"history": [{"t": 1700000000, "p": 0.3}]}`))
		}))
		defer server.Close()

		a := NewAdapter(NewClient(server.URL, server.URL), AdapterConfig{}, nil)
		desc := model.MarketDescriptor{Ticker: "1", TokenIDs: []string{"yes-token", "no-token"}}

		ticks, err := a.FetchTicks(context.Background(), desc, time.Unix(1700000000, 0), time.Unix(1700003600, 0))
		if err != nil {
			t.Fatalf("FetchTicks() error = %v", err)
		}
		if len(ticks) != 1 {
			t.Fatalf("len(ticks) = %d, want 1", len(ticks))
		}
		tick, ok := ticks[0].(model.TradeTick)
		if !ok {
			t.Fatalf("tick type = %T, want model.TradeTick", ticks[0])
		}
		if tick.Price != 0.3 {
			t.Errorf("Price = %v, want 0.3", tick.Price)
		}
	})

	t.Run("no token ids yields empty series", func(t *testing.T) {
		a := NewAdapter(NewClient("http://example.com", "http://example.com"), AdapterConfig{}, nil)
		ticks, err := a.FetchTicks(context.Background(), model.MarketDescriptor{Ticker: "1"}, time.Now().Add(-time.Hour), time.Now())
		if err != nil {
			t.Fatalf("FetchTicks() error = %v", err)
		}
		if ticks != nil {
			t.Errorf("ticks = %v, want nil", ticks)
		}
	})
}
