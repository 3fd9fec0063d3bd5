package models

// JobResponse is the response for POST /api/v1/jobs and /api/v1/jobs/preview.
type JobResponse struct {
	// Success mirrors ScrapingResult.Success: false only when the job
	// failed before its first page.
	Success bool `json:"success"`

	// JobID identifies the run in logs and webhook events.
	JobID string `json:"job_id"`

	// Data is the normalized product list (kind "products").
	Data []ScrapedProduct `json:"data"`

	// Slides is the normalized promo banner list (kind "slides").
	Slides []Slide `json:"slides,omitempty"`

	// TotalItems is len(Data)+len(Slides).
	TotalItems int `json:"total_items"`

	// PagesScraped counts pages actually visited.
	PagesScraped int `json:"pages_scraped"`

	// Errors accumulates non-fatal page-level failures.
	Errors []string `json:"errors,omitempty"`

	// ExecutionMs is the wall-clock duration of the whole job.
	ExecutionMs int64 `json:"execution_ms"`

	// CacheStatus is "hit" or "miss" for preview runs, empty otherwise.
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Browser string `json:"browser"` // "remote" or "local"
	Version string `json:"version"`
}

// HistoryResponse is the response for GET /api/v1/products/:fingerprint/history.
type HistoryResponse struct {
	Fingerprint string          `json:"fingerprint"`
	Snapshots   []PriceSnapshot `json:"snapshots"`
}
