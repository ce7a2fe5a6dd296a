package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketlens/marketdata/internal/model"
	"github.com/marketlens/marketdata/internal/store"
)

// querier is the query surface shared by pgxpool.Pool and pgx.Tx, letting
// one Store implementation serve both the pooled and transactional views.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store implements store.Store on PostgreSQL.
type Store struct {
	db   querier
	pool *pgxpool.Pool // nil in the transactional view
}

var _ store.Store = (*Store)(nil)

// New creates a Store over a connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{db: pool, pool: pool}
}

// UpsertMarket creates or updates a market. Ticker and created_at are never
// touched on conflict; current_price is only overwritten by a non-zero
// incoming value so a listing without a price snapshot cannot clobber the
// price derived from merged points.
func (s *Store) UpsertMarket(ctx context.Context, m *model.Market) (bool, error) {
	// xmax = 0 distinguishes a fresh insert from a conflict-update.
	row := s.db.QueryRow(ctx, `
		INSERT INTO markets (
			ticker, title, subtitle, category, status, current_price,
			volume_24h, liquidity, open_time, close_time, expiration_time, tags
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (ticker) DO UPDATE SET
			title           = EXCLUDED.title,
			subtitle        = EXCLUDED.subtitle,
			category        = EXCLUDED.category,
			status          = EXCLUDED.status,
			current_price   = CASE WHEN EXCLUDED.current_price <> 0
			                       THEN EXCLUDED.current_price
			                       ELSE markets.current_price END,
			volume_24h      = EXCLUDED.volume_24h,
			liquidity       = EXCLUDED.liquidity,
			open_time       = EXCLUDED.open_time,
			close_time      = EXCLUDED.close_time,
			expiration_time = EXCLUDED.expiration_time,
			tags            = EXCLUDED.tags,
			updated_at      = now()
		RETURNING (xmax = 0)
	`, m.Ticker, m.Title, m.Subtitle, m.Category, m.Status, m.CurrentPrice,
		m.Volume24h, m.Liquidity, m.OpenTime, m.CloseTime, m.ExpirationTime, tagsOrEmpty(m.Tags))

	var created bool
	if err := row.Scan(&created); err != nil {
		return false, fmt.Errorf("upsert market %s: %w", m.Ticker, err)
	}
	return created, nil
}

// GetMarket returns the stored market.
func (s *Store) GetMarket(ctx context.Context, ticker string) (*model.Market, error) {
	row := s.db.QueryRow(ctx, `
		SELECT ticker, title, subtitle, category, status, current_price,
		       volume_24h, liquidity, open_time, close_time, expiration_time,
		       tags, created_at, updated_at
		FROM markets
		WHERE ticker = $1
	`, ticker)

	var m model.Market
	err := row.Scan(
		&m.Ticker, &m.Title, &m.Subtitle, &m.Category, &m.Status, &m.CurrentPrice,
		&m.Volume24h, &m.Liquidity, &m.OpenTime, &m.CloseTime, &m.ExpirationTime,
		&m.Tags, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get market %s: %w", ticker, err)
	}
	return &m, nil
}

// InsertPoints batch-inserts points with ON CONFLICT DO NOTHING, counting
// how many were new. Existing points are left untouched.
func (s *Store) InsertPoints(ctx context.Context, ticker string, points []model.PricePoint) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, p := range points {
		batch.Queue(`
			INSERT INTO price_points (ticker, ts, price, volume)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (ticker, ts) DO NOTHING
		`, ticker, p.Timestamp.UTC(), p.Price, p.Volume)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range points {
		ct, err := results.Exec()
		if err != nil {
			return 0, fmt.Errorf("insert points %s: %w", ticker, err)
		}
		if ct.RowsAffected() > 0 {
			inserted++
		}
	}

	return inserted, nil
}

// LatestPoint returns the max-timestamp point for the market.
func (s *Store) LatestPoint(ctx context.Context, ticker string) (*model.PricePoint, error) {
	row := s.db.QueryRow(ctx, `
		SELECT ts, price, volume
		FROM price_points
		WHERE ticker = $1
		ORDER BY ts DESC
		LIMIT 1
	`, ticker)

	var p model.PricePoint
	if err := row.Scan(&p.Timestamp, &p.Price, &p.Volume); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("latest point %s: %w", ticker, err)
	}
	return &p, nil
}

// ReadPointsSince returns points with ts >= since, ascending.
func (s *Store) ReadPointsSince(ctx context.Context, ticker string, since time.Time) ([]model.PricePoint, error) {
	rows, err := s.db.Query(ctx, `
		SELECT ts, price, volume
		FROM price_points
		WHERE ticker = $1 AND ts >= $2
		ORDER BY ts ASC
	`, ticker, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("read points %s: %w", ticker, err)
	}
	defer rows.Close()

	var points []model.PricePoint
	for rows.Next() {
		var p model.PricePoint
		if err := rows.Scan(&p.Timestamp, &p.Price, &p.Volume); err != nil {
			return nil, fmt.Errorf("scan point %s: %w", ticker, err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read points %s: %w", ticker, err)
	}

	return points, nil
}

// SetCurrentPrice updates the market's served current price.
func (s *Store) SetCurrentPrice(ctx context.Context, ticker string, price float64) error {
	ct, err := s.db.Exec(ctx, `
		UPDATE markets SET current_price = $2, updated_at = now()
		WHERE ticker = $1
	`, ticker, price)
	if err != nil {
		return fmt.Errorf("set current price %s: %w", ticker, err)
	}
	if ct.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// UpsertChangeWindow inserts or replaces the (ticker, window_days) row.
func (s *Store) UpsertChangeWindow(ctx context.Context, cw *model.ChangeWindow) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO change_windows (
			ticker, window_days, price_change, min_price, max_price,
			change_percentage, calculated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ticker, window_days) DO UPDATE SET
			price_change      = EXCLUDED.price_change,
			min_price         = EXCLUDED.min_price,
			max_price         = EXCLUDED.max_price,
			change_percentage = EXCLUDED.change_percentage,
			calculated_at     = EXCLUDED.calculated_at
	`, cw.Ticker, cw.WindowDays, cw.PriceChange, cw.MinPrice, cw.MaxPrice,
		cw.ChangePercentage, cw.CalculatedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert change window %s/%d: %w", cw.Ticker, cw.WindowDays, err)
	}
	return nil
}

// GetChangeWindow returns the stored row.
func (s *Store) GetChangeWindow(ctx context.Context, ticker string, windowDays int) (*model.ChangeWindow, error) {
	row := s.db.QueryRow(ctx, `
		SELECT ticker, window_days, price_change, min_price, max_price,
		       change_percentage, calculated_at
		FROM change_windows
		WHERE ticker = $1 AND window_days = $2
	`, ticker, windowDays)

	var cw model.ChangeWindow
	err := row.Scan(&cw.Ticker, &cw.WindowDays, &cw.PriceChange, &cw.MinPrice,
		&cw.MaxPrice, &cw.ChangePercentage, &cw.CalculatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get change window %s/%d: %w", ticker, windowDays, err)
	}
	return &cw, nil
}

// InTx runs fn inside a transaction. The transactional view passes InTx
// calls through, so nested use joins the enclosing transaction.
func (s *Store) InTx(ctx context.Context, fn func(store.Store) error) error {
	if s.pool == nil {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Store{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Ping verifies the pool is reachable. The transactional view reports
// healthy by construction.
func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
