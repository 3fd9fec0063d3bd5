package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Modzmart2112/Tracker-sub001/cache"
	"github.com/Modzmart2112/Tracker-sub001/models"
	"github.com/Modzmart2112/Tracker-sub001/scraper"
	"github.com/Modzmart2112/Tracker-sub001/store"
)

// previewCacheMaxAgeMs is how long a preview result stays servable from
// cache. Previews exist for config iteration in a UI; five minutes keeps
// repeat edits cheap without hiding site changes for long.
const previewCacheMaxAgeMs = 5 * 60 * 1000

// Jobs returns a handler for POST /api/v1/jobs.
//
// Flow:
//  1. Bind & validate the scrape configuration.
//  2. Run the full job through the orchestrator.
//  3. Record price snapshots for successful runs.
//  4. Hand the result off to the webhook consumer (async, fire and forget).
func Jobs(orch *scraper.Orchestrator, snapshots store.SnapshotStore, notifier *store.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, ok := bindConfig(c)
		if !ok {
			return
		}

		jobID := uuid.NewString()
		result := orch.Run(c.Request.Context(), *cfg)

		resp := toJobResponse(jobID, result)
		if !result.Success {
			resp.Error = firstErrorDetail(result.Errors)
			notifier.SendAsync(jobEvent(store.EventJobFailed, jobID, result))
			c.JSON(statusForCode(resp.Error.Code), resp)
			return
		}

		snapshots.Record(result.Data)
		notifier.SendAsync(jobEvent(store.EventJobCompleted, jobID, result))

		c.JSON(http.StatusOK, resp)
	}
}

// jobEvent shapes a terminal scrape result into the webhook payload.
func jobEvent(eventType, jobID string, result *models.ScrapingResult) *store.JobEvent {
	return &store.JobEvent{
		Type:         eventType,
		JobID:        jobID,
		OccurredAt:   time.Now().Unix(),
		Products:     result.Data,
		Slides:       result.Slides,
		TotalItems:   result.TotalItems,
		PagesScraped: result.PagesScraped,
		Errors:       result.Errors,
	}
}

// Preview returns a handler for POST /api/v1/jobs/preview.
//
// Previews are forced to a single page and at most 10 items, and recent
// results are served from cache keyed by the full configuration.
func Preview(orch *scraper.Orchestrator, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, ok := bindConfig(c)
		if !ok {
			return
		}

		previewCfg := cfg.PreviewOverride()
		cacheKey := cache.Key(&previewCfg)

		if cc != nil {
			if cached, hit := cc.Get(cacheKey, previewCacheMaxAgeMs); hit {
				resp := toJobResponse(uuid.NewString(), cached)
				resp.CacheStatus = "hit"
				c.JSON(http.StatusOK, resp)
				return
			}
		}

		result := orch.Preview(c.Request.Context(), *cfg)
		resp := toJobResponse(uuid.NewString(), result)

		if !result.Success {
			resp.Error = firstErrorDetail(result.Errors)
			c.JSON(statusForCode(resp.Error.Code), resp)
			return
		}

		if cc != nil {
			cc.Set(cacheKey, result)
			resp.CacheStatus = "miss"
		}
		c.JSON(http.StatusOK, resp)
	}
}

// History returns a handler for GET /api/v1/products/:fingerprint/history.
func History(snapshots store.SnapshotStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		fingerprint := c.Param("fingerprint")
		history := snapshots.History(fingerprint)
		if history == nil {
			c.JSON(http.StatusNotFound, models.JobResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInternal,
					Message: "no price history for fingerprint " + fingerprint,
				},
			})
			return
		}
		c.JSON(http.StatusOK, models.HistoryResponse{
			Fingerprint: fingerprint,
			Snapshots:   history,
		})
	}
}

// bindConfig parses and validates the request body, writing the error
// response itself on failure.
func bindConfig(c *gin.Context) (*models.ScrapingConfig, bool) {
	var cfg models.ScrapingConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, models.JobResponse{
			Success: false,
			Error: &models.ErrorDetail{
				Code:    models.ErrCodeInvalidConfig,
				Message: err.Error(),
			},
		})
		return nil, false
	}

	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		scrapeErr, ok := err.(*models.ScrapeError)
		if !ok {
			scrapeErr = models.NewScrapeError(models.ErrCodeInvalidConfig, err.Error(), err)
		}
		c.JSON(http.StatusBadRequest, models.JobResponse{
			Success: false,
			Error:   scrapeErr.ToDetail(),
		})
		return nil, false
	}
	return &cfg, true
}

func toJobResponse(jobID string, result *models.ScrapingResult) *models.JobResponse {
	return &models.JobResponse{
		Success:      result.Success,
		JobID:        jobID,
		Data:         result.Data,
		Slides:       result.Slides,
		TotalItems:   result.TotalItems,
		PagesScraped: result.PagesScraped,
		Errors:       result.Errors,
		ExecutionMs:  result.ExecutionMs,
	}
}

// firstErrorDetail recovers a typed error detail from the accumulated error
// strings. Typed errors stringify as "CODE: message"; anything else maps to
// INTERNAL_ERROR.
func firstErrorDetail(errs []string) *models.ErrorDetail {
	if len(errs) == 0 {
		return &models.ErrorDetail{Code: models.ErrCodeInternal, Message: "job failed"}
	}

	first := errs[0]
	if code, msg, found := strings.Cut(first, ": "); found && isKnownCode(code) {
		return &models.ErrorDetail{Code: code, Message: msg}
	}
	return &models.ErrorDetail{Code: models.ErrCodeInternal, Message: first}
}

func isKnownCode(code string) bool {
	switch code {
	case models.ErrCodeTimeout, models.ErrCodeNavigation, models.ErrCodeBrowserUnavailable,
		models.ErrCodeInvalidConfig, models.ErrCodeRateLimited, models.ErrCodeUnauthorized,
		models.ErrCodeInternal:
		return true
	}
	return false
}

// statusForCode translates error codes to HTTP status codes.
func statusForCode(code string) int {
	switch code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeBrowserUnavailable:
		return http.StatusServiceUnavailable // 503
	case models.ErrCodeInvalidConfig:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
