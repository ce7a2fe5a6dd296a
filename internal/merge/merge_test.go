package merge

import (
	"context"
	"testing"
	"time"

	"github.com/marketlens/marketdata/internal/model"
	"github.com/marketlens/marketdata/internal/store/memory"
)

func point(ts int64, price float64) model.PricePoint {
	return model.PricePoint{Timestamp: time.Unix(ts, 0).UTC(), Price: price}
}

func TestUpsertMarket(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	eng := New(s, nil)

	open := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	desc := model.MarketDescriptor{
		Ticker:    "T",
		Title:     "Test market",
		Category:  "Politics",
		Status:    "open",
		LastPrice: 0.37,
		OpenTime:  &open,
	}

	created, err := eng.UpsertMarket(ctx, desc)
	if err != nil {
		t.Fatalf("UpsertMarket() error = %v", err)
	}
	if !created {
		t.Error("created = false, want true")
	}

	m, err := s.GetMarket(ctx, "T")
	if err != nil {
		t.Fatalf("GetMarket() error = %v", err)
	}
	if m.CurrentPrice != 0.37 {
		t.Errorf("CurrentPrice = %v, want listing snapshot 0.37", m.CurrentPrice)
	}
	if m.OpenTime == nil || !m.OpenTime.Equal(open) {
		t.Errorf("OpenTime = %v, want %v", m.OpenTime, open)
	}

	created, err = eng.UpsertMarket(ctx, desc)
	if err != nil {
		t.Fatalf("UpsertMarket() error = %v", err)
	}
	if created {
		t.Error("created = true on second upsert, want false")
	}
}

func TestMergePoints(t *testing.T) {
	ctx := context.Background()

	t.Run("current price follows freshest point", func(t *testing.T) {
		s := memory.New()
		eng := New(s, nil)
		eng.UpsertMarket(ctx, model.MarketDescriptor{Ticker: "T", Title: "t", LastPrice: 0.5})

		inserted, err := eng.MergePoints(ctx, "T", []model.PricePoint{
			point(300, 0.30), point(100, 0.20), point(200, 0.50),
		})
		if err != nil {
			t.Fatalf("MergePoints() error = %v", err)
		}
		if inserted != 3 {
			t.Errorf("inserted = %d, want 3", inserted)
		}

		m, _ := s.GetMarket(ctx, "T")
		if m.CurrentPrice != 0.30 {
			t.Errorf("CurrentPrice = %v, want 0.30 (max timestamp)", m.CurrentPrice)
		}
	})

	t.Run("idempotent re-merge", func(t *testing.T) {
		s := memory.New()
		eng := New(s, nil)
		eng.UpsertMarket(ctx, model.MarketDescriptor{Ticker: "T", Title: "t"})

		batch := []model.PricePoint{point(100, 0.1), point(200, 0.2)}
		if _, err := eng.MergePoints(ctx, "T", batch); err != nil {
			t.Fatalf("MergePoints() error = %v", err)
		}
		inserted, err := eng.MergePoints(ctx, "T", batch)
		if err != nil {
			t.Fatalf("MergePoints() error = %v", err)
		}
		if inserted != 0 {
			t.Errorf("inserted = %d, want 0 on re-merge", inserted)
		}
	})

	t.Run("empty batch with no history", func(t *testing.T) {
		s := memory.New()
		eng := New(s, nil)
		eng.UpsertMarket(ctx, model.MarketDescriptor{Ticker: "T", Title: "t", LastPrice: 0.4})

		inserted, err := eng.MergePoints(ctx, "T", nil)
		if err != nil {
			t.Fatalf("MergePoints() error = %v", err)
		}
		if inserted != 0 {
			t.Errorf("inserted = %d, want 0", inserted)
		}

		// The listing snapshot survives until points exist.
		m, _ := s.GetMarket(ctx, "T")
		if m.CurrentPrice != 0.4 {
			t.Errorf("CurrentPrice = %v, want 0.4", m.CurrentPrice)
		}
	})

	t.Run("empty batch refreshes from stored history", func(t *testing.T) {
		s := memory.New()
		eng := New(s, nil)
		eng.UpsertMarket(ctx, model.MarketDescriptor{Ticker: "T", Title: "t"})
		eng.MergePoints(ctx, "T", []model.PricePoint{point(100, 0.8)})

		if _, err := eng.MergePoints(ctx, "T", nil); err != nil {
			t.Fatalf("MergePoints() error = %v", err)
		}
		m, _ := s.GetMarket(ctx, "T")
		if m.CurrentPrice != 0.8 {
			t.Errorf("CurrentPrice = %v, want 0.8", m.CurrentPrice)
		}
	})
}
