// Package model defines the canonical data types shared across the
// ingestion pipeline.
//
// Conventions:
//   - Prices: float64 probabilities in [0.0, 1.0]
//   - Timestamps: time.Time in UTC
//   - IDs: source-specific ticker strings (venue symbol or venue-internal id)
//
// Venue payloads never cross this boundary untyped: adapters convert to
// MarketDescriptor and the closed RawTick variant set, and the normalizer
// converts RawTick to PricePoint.
package model
