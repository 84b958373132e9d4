package models

import "time"

// SystemMetrics is an aggregated runtime snapshot for the status endpoint.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"avg_request_ms"`
	DocumentsIngested        uint64    `json:"documentos_ingresados"`
	IngestionsRejected       uint64    `json:"ingestas_rechazadas"`
	ComprobantesRendered     uint64    `json:"comprobantes_generados"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"avg_db_query_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
