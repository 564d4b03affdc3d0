package models

import "time"

// EntityDocumentCount is the number of documents transitively owned by an
// entity through its departments' programs.
type EntityDocumentCount struct {
	EntityID   int    `db:"entity_id" json:"entityId"`
	EntityName string `db:"entity_name" json:"entityName"`
	Count      int    `db:"count" json:"count"`
}

// DocumentDownloadCount pairs a document with its tracked download counter.
type DocumentDownloadCount struct {
	DocumentID int    `json:"documentId"`
	Title      string `json:"title"`
	Downloads  int64  `json:"downloads"`
}

// MetricsSnapshot is a lightweight aggregate of runtime metrics.
type MetricsSnapshot struct {
	RequestCount     uint64  `json:"requestCount"`
	AvgLatencyMillis float64 `json:"avgLatencyMillis"`
	CacheHits        uint64  `json:"cacheHits"`
	CacheMisses      uint64  `json:"cacheMisses"`
	CacheHitRatio    float64 `json:"cacheHitRatio"`
	Goroutines       int     `json:"goroutines"`
}

// StatsSummary is the dashboard payload of the /stats endpoint.
type StatsSummary struct {
	TotalDocuments     int                     `json:"totalDocuments"`
	TotalDownloads     int64                   `json:"totalDownloads"`
	UniqueVisitors     int64                   `json:"uniqueVisitors"`
	DocumentsPerEntity []EntityDocumentCount   `json:"documentsPerEntity"`
	TopDownloaded      []DocumentDownloadCount `json:"topDownloaded"`
	GeneratedAt        time.Time               `json:"generatedAt"`
}
