package model

// RawTick is a source-native price observation prior to normalization. The
// set of variants is closed: Candle for the signed polling venue, TradeTick
// for the hybrid REST venue.
type RawTick interface {
	rawTick()
}

// Candle is a time-bucketed bid/ask quote aggregate on the venue's 0-100
// cent scale. The bucket is identified by its end timestamp.
type Candle struct {
	EndPeriodTS int64   // Bucket end, unix seconds
	YesBidClose float64 // Closing YES bid, cents
	YesAskClose float64 // Closing YES ask, cents
	Volume      int64   // Contracts traded in the bucket
}

func (Candle) rawTick() {}

// TradeTick is a single timestamped last-trade observation with the price
// already on the 0-1 probability scale. The venue does not report volume at
// this granularity.
type TradeTick struct {
	Timestamp int64   // Unix seconds; milliseconds tolerated (values > 1e12)
	Price     float64 // Probability in [0, 1]
}

func (TradeTick) rawTick() {}
