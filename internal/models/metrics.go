package models

import "time"

// SystemMetrics is a lightweight aggregate for the dashboard's system
// status endpoint, distinct from the full Prometheus exposition.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	SheetCallCount           uint64    `json:"sheet_call_count"`
	AverageSheetCallMs       float64   `json:"average_sheet_call_ms"`
	SheetErrorCount          uint64    `json:"sheet_error_count"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
