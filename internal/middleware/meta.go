package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursedesk-api/pkg/middleware/requestid"
)

const (
	metaKey      = "response_meta"
	metaStartKey = "response_meta_start"
	cacheHitKey  = "cache_hit"
)

// WithResponseMeta starts collecting envelope metadata for the request.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(metaKey, map[string]interface{}{})
		c.Set(metaStartKey, time.Now())
		c.Next()
	}
}

// SetMeta records one metadata value for the current response.
func SetMeta(c *gin.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	stored, _ := c.Get(metaKey)
	meta, ok := stored.(map[string]interface{})
	if !ok {
		meta = map[string]interface{}{}
		c.Set(metaKey, meta)
	}
	meta[key] = value
}

// SetCacheHit records whether the response was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, cacheHitKey, hit)
}

// ExtractMeta snapshots the collected metadata, adding the request id and elapsed time.
// It returns nil when nothing was recorded.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	stored, _ := c.Get(metaKey)
	recorded, _ := stored.(map[string]interface{})
	if len(recorded) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(recorded)+2)
	for k, v := range recorded {
		out[k] = v
	}
	if id := requestid.Value(c); id != "" {
		out["request_id"] = id
	}
	if start := c.GetTime(metaStartKey); !start.IsZero() {
		out["processing_time_ms"] = time.Since(start).Milliseconds()
	}
	return out
}
