package kalshi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// maxPageLimit is the venue's maximum markets-per-page.
const maxPageLimit = 1000

// getMarkets fetches one page of markets.
func (c *Client) getMarkets(ctx context.Context, opts marketsOptions) (*marketsResponse, error) {
	query := url.Values{}

	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}

	var resp marketsResponse
	if err := c.get(ctx, "/markets", query, &resp); err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}

	return &resp, nil
}

// getAllMarkets pages through all markets with the given status by cursor.
func (c *Client) getAllMarkets(ctx context.Context, status string, pageLimit int) ([]apiMarket, error) {
	if pageLimit <= 0 || pageLimit > maxPageLimit {
		pageLimit = maxPageLimit
	}

	var all []apiMarket
	opts := marketsOptions{Limit: pageLimit, Status: status}

	for {
		resp, err := c.getMarkets(ctx, opts)
		if err != nil {
			return nil, err
		}

		all = append(all, resp.Markets...)

		if resp.Cursor == "" {
			break
		}
		opts.Cursor = resp.Cursor
	}

	return all, nil
}

// getMarket fetches a single market by ticker.
func (c *Client) getMarket(ctx context.Context, ticker string) (*apiMarket, error) {
	var resp singleMarketResponse
	if err := c.get(ctx, "/markets/"+ticker, nil, &resp); err != nil {
		return nil, fmt.Errorf("get market %s: %w", ticker, err)
	}
	return &resp.Market, nil
}

// getCandlesticks fetches fixed-width candles for one market within
// [startTS, endTS]. The venue bounds each call to candleCap buckets.
func (c *Client) getCandlesticks(ctx context.Context, seriesTicker, ticker string, periodMinutes int, startTS, endTS int64) ([]apiCandle, error) {
	query := url.Values{}
	query.Set("period_interval", strconv.Itoa(periodMinutes))
	query.Set("start_ts", strconv.FormatInt(startTS, 10))
	query.Set("end_ts", strconv.FormatInt(endTS, 10))

	path := "/series/" + seriesTicker + "/markets/" + ticker + "/candlesticks"

	var resp candlesticksResponse
	if err := c.get(ctx, path, query, &resp); err != nil {
		return nil, fmt.Errorf("get candlesticks %s: %w", ticker, err)
	}

	return resp.Candlesticks, nil
}
