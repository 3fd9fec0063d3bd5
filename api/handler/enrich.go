package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Modzmart2112/Tracker-sub001/enrich"
	"github.com/Modzmart2112/Tracker-sub001/models"
)

type enrichRequest struct {
	Title string `json:"title" binding:"required"`
}

type matchRequest struct {
	A models.ScrapedProduct `json:"a" binding:"required"`
	B models.ScrapedProduct `json:"b" binding:"required"`
}

// Enrich returns a handler for POST /api/v1/products/enrich.
// Requires enrichment credentials; there is no heuristic fallback for
// brand/model/category extraction beyond what normalization already did.
func Enrich(client *enrich.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req enrichRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": &models.ErrorDetail{
				Code:    models.ErrCodeInvalidConfig,
				Message: err.Error(),
			}})
			return
		}

		if !client.Enabled() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": &models.ErrorDetail{
				Code:    models.ErrCodeEnrichFailure,
				Message: "enrichment is not configured",
			}})
			return
		}

		result, err := client.EnrichTitle(c.Request.Context(), req.Title)
		if err != nil {
			respondEnrichError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// Match returns a handler for POST /api/v1/products/match.
// Falls back to SimHash title comparison when enrichment is not configured
// or the upstream call fails.
func Match(client *enrich.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req matchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": &models.ErrorDetail{
				Code:    models.ErrCodeInvalidConfig,
				Message: err.Error(),
			}})
			return
		}

		if client.Enabled() {
			result, err := client.MatchProducts(c.Request.Context(), &req.A, &req.B)
			if err == nil {
				c.JSON(http.StatusOK, result)
				return
			}
			// Auth and quota problems are the caller's to fix; only
			// transient upstream failures degrade to the local matcher.
			if scrapeErr, ok := err.(*models.ScrapeError); ok &&
				(scrapeErr.Code == models.ErrCodeEnrichAuthFailure || scrapeErr.Code == models.ErrCodeEnrichRateLimited) {
				respondEnrichError(c, err)
				return
			}
		}

		c.JSON(http.StatusOK, enrich.MatchProductsFallback(&req.A, &req.B))
	}
}

func respondEnrichError(c *gin.Context, err error) {
	scrapeErr, ok := err.(*models.ScrapeError)
	if !ok {
		scrapeErr = models.NewScrapeError(models.ErrCodeEnrichFailure, err.Error(), err)
	}

	status := http.StatusBadGateway
	switch scrapeErr.Code {
	case models.ErrCodeEnrichAuthFailure:
		status = http.StatusUnauthorized
	case models.ErrCodeEnrichRateLimited:
		status = http.StatusTooManyRequests
	}
	c.JSON(status, gin.H{"error": scrapeErr.ToDetail()})
}
