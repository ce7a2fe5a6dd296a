package kalshi

// marketsResponse from GET /markets
type marketsResponse struct {
	Markets []apiMarket `json:"markets"`
	Cursor  string      `json:"cursor"`
}

// singleMarketResponse from GET /markets/{ticker}
type singleMarketResponse struct {
	Market apiMarket `json:"market"`
}

// apiMarket is one market as the venue reports it.
type apiMarket struct {
	Ticker       string   `json:"ticker"`
	EventTicker  string   `json:"event_ticker"`
	SeriesTicker string   `json:"series_ticker"`
	Title        string   `json:"title"`
	Subtitle     string   `json:"subtitle"`
	Category     string   `json:"category"`
	Status       string   `json:"status"`
	Tags         []string `json:"tags"`

	// Prices in cents
	YesBid    int `json:"yes_bid"`
	YesAsk    int `json:"yes_ask"`
	LastPrice int `json:"last_price"`

	// Volume and liquidity
	Volume    int64 `json:"volume"`
	Volume24h int64 `json:"volume_24h"`
	Liquidity int64 `json:"liquidity"`

	// Timestamps (ISO 8601)
	OpenTime       string `json:"open_time"`
	CloseTime      string `json:"close_time"`
	ExpirationTime string `json:"expiration_time"`
}

// candlesticksResponse from GET /series/{series}/markets/{ticker}/candlesticks
type candlesticksResponse struct {
	Candlesticks []apiCandle `json:"candlesticks"`
}

// apiCandle is one fixed-width OHLC-style bucket.
type apiCandle struct {
	EndPeriodTS int64     `json:"end_period_ts"` // unix seconds
	YesBid      quoteBand `json:"yes_bid"`
	YesAsk      quoteBand `json:"yes_ask"`
	Volume      int64     `json:"volume"`
}

// quoteBand carries the open/high/low/close quotes of one side. Only the
// close participates in normalization.
type quoteBand struct {
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// marketsOptions configures a markets listing request.
type marketsOptions struct {
	Limit  int
	Cursor string
	Status string
}
