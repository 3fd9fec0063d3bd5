package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Modzmart2112/Tracker-sub001/models"
)

// Auth guards the job endpoints with static API keys, accepted either as
// X-API-Key or as a bearer token. Keys are compared by SHA-256 digest in
// constant time. An empty key list disables the check entirely so local
// development needs no credentials.
func Auth(apiKeys []string) gin.HandlerFunc {
	digests := keyDigests(apiKeys)
	if len(digests) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := requestKey(c.GetHeader("X-API-Key"), c.GetHeader("Authorization"))
		if key == "" {
			abortUnauthorized(c, "missing API key: provide X-API-Key or Authorization: Bearer <key>")
			return
		}
		if !digestMatch(digests, key) {
			abortUnauthorized(c, "invalid API key")
			return
		}
		c.Set("api_key", key)
		c.Next()
	}
}

func keyDigests(keys []string) [][sha256.Size]byte {
	digests := make([][sha256.Size]byte, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			digests = append(digests, sha256.Sum256([]byte(k)))
		}
	}
	return digests
}

func digestMatch(digests [][sha256.Size]byte, key string) bool {
	d := sha256.Sum256([]byte(key))
	for i := range digests {
		if subtle.ConstantTimeCompare(d[:], digests[i][:]) == 1 {
			return true
		}
	}
	return false
}

// requestKey picks the credential out of the request headers, X-API-Key
// winning over the Authorization header when both are present.
func requestKey(apiKeyHeader, authHeader string) string {
	if apiKeyHeader != "" {
		return apiKeyHeader
	}
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return token
	}
	return ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.JobResponse{
		Success: false,
		Error: &models.ErrorDetail{
			Code:    models.ErrCodeUnauthorized,
			Message: msg,
		},
	})
}
