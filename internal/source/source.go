// Package source defines the adapter contract a venue integration must
// satisfy, plus the error taxonomy shared by all venues.
package source

import (
	"context"
	"time"

	"github.com/marketlens/marketdata/internal/model"
)

// DiscoverResult is the outcome of one market discovery pass. Individual bad
// records never fail discovery; they are filtered out and counted.
type DiscoverResult struct {
	Markets []model.MarketDescriptor
	Skipped int // Malformed records dropped
}

// Adapter talks to one external venue. Implementations produce canonical
// market descriptors and raw ticks; nothing venue-shaped escapes them.
type Adapter interface {
	// Name identifies the venue in logs and summaries.
	Name() string

	// Probe performs a cheap connectivity check before a cycle touches the
	// venue. A signing or credential problem surfaces as an auth error.
	Probe(ctx context.Context) error

	// Discover lists the markets the pipeline should process this cycle.
	Discover(ctx context.Context) (*DiscoverResult, error)

	// FetchTicks returns the raw price observations for desc within
	// [from, to]. An empty result is not an error: newly listed markets
	// have no tradable history yet.
	FetchTicks(ctx context.Context, desc model.MarketDescriptor, from, to time.Time) ([]model.RawTick, error)

	// MaxSpan is the widest time range one FetchTicks call may cover.
	MaxSpan() time.Duration

	// PageCap is the maximum tick count one FetchTicks call can return. A
	// shorter page signals the venue has no earlier history.
	PageCap() int
}
