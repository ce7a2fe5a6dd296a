package model

import "time"

// CycleSummary reports one ingestion pass. A non-zero Failed count does not
// imply process-level failure; only a whole-cycle abort does.
type CycleSummary struct {
	RunID     string // Unique id for the cycle, stamped on every log record
	StartedAt time.Time
	Duration  time.Duration

	Discovered int // Markets returned by discovery across all venues
	Created    int // Markets seen for the first time
	Updated    int // Markets refreshed
	Skipped    int // Markets skipped after exhausting bounded network retries
	Failed     int // Markets whose pipeline failed at a later stage

	PointsMerged   int // New points inserted (duplicates excluded)
	TicksDropped   int // Raw ticks rejected by normalization
	RecordsSkipped int // Malformed listing records dropped during discovery
}
