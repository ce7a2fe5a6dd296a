package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/marketlens/marketdata/internal/source"
)

// getMarkets fetches one Gamma listing page. The endpoint returns either a
// bare array or an object wrapping a "markets" array; both are normalized
// to one shape here.
func (c *Client) getMarkets(ctx context.Context, limit, offset int) ([]gammaMarket, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))
	query.Set("active", "true")
	query.Set("closed", "false")

	body, err := c.getGamma(ctx, "/markets", query)
	if err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}

	return decodeListing(body)
}

// decodeListing normalizes the listing's heterogeneous response shapes.
func decodeListing(body []byte) ([]gammaMarket, error) {
	var bare []gammaMarket
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}

	var wrapped struct {
		Markets []gammaMarket `json:"markets"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Markets != nil {
		return wrapped.Markets, nil
	}

	// A single object is treated as a one-element listing.
	var single gammaMarket
	if err := json.Unmarshal(body, &single); err == nil && single.ID != "" {
		return []gammaMarket{single}, nil
	}

	return nil, source.DataShapeError(venueName, fmt.Errorf("unrecognized listing payload"))
}

// getPriceHistory fetches CLOB observations for one token id within
// [startTS, endTS] (unix seconds).
func (c *Client) getPriceHistory(ctx context.Context, tokenID string, startTS, endTS int64) ([]historyPoint, error) {
	query := url.Values{}
	query.Set("market", tokenID)
	query.Set("startTs", strconv.FormatInt(startTS, 10))
	query.Set("endTs", strconv.FormatInt(endTS, 10))

	var resp historyResponse
	if err := c.getClob(ctx, "/prices-history", query, &resp); err != nil {
		return nil, fmt.Errorf("get price history %s: %w", tokenID, err)
	}

	return resp.History, nil
}
