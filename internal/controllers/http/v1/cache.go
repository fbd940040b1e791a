package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type CacheStatsResponse struct {
	CacheType       string `json:"cacheType" example:"memory"`
	CacheTTL        string `json:"cacheTTL" example:"5 minutes (300 seconds)"`
	TTLSeconds      int64  `json:"ttlSeconds" example:"300"`
	Size            int    `json:"size" example:"8"`
	HitCount        int64  `json:"hitCount" example:"12"`
	MissCount       int64  `json:"missCount" example:"8"`
	ReadErrorCount  int64  `json:"readErrorCount" example:"0"`
	WriteErrorCount int64  `json:"writeErrorCount" example:"0"`
	HitRate         string `json:"hitRate" example:"60.00%"`
}

type CacheClearResponse struct {
	Message string `json:"message" example:"Cache cleared successfully"`
	Removed int    `json:"removed" example:"8"`
}

// GetCacheStats godoc
// @Summary Snapshot cache statistics
// @Description Hit and miss counters of the snapshot cache and the entry count of the current session.
// @Tags Cache
// @Produce json
// @Success 200 {object} CacheStatsResponse "Successful response"
// @Router /api/cache/stats [get]
func (r *routes) handleCacheStats(c *fiber.Ctx) error {
	sess, err := r.sessions.Get(c)
	if err != nil {
		return r.sessionFailed(c, err)
	}
	defer r.saveSession(sess)

	snapshots := r.service.Cache(sess.ID())

	size, err := snapshots.Len(c.UserContext())
	if err != nil {
		r.l.Warning("failed to count cache entries", map[string]any{"session": sess.ID(), "err": err.Error()})
	}

	stats := r.service.Stats()
	ttl := snapshots.TTL()

	return c.JSON(CacheStatsResponse{
		CacheType:       r.cacheDriver,
		CacheTTL:        fmt.Sprintf("%g minutes (%d seconds)", ttl.Minutes(), int64(ttl.Seconds())),
		TTLSeconds:      int64(ttl.Seconds()),
		Size:            size,
		HitCount:        stats.Hits,
		MissCount:       stats.Misses,
		ReadErrorCount:  stats.ReadErrors,
		WriteErrorCount: stats.WriteErrors,
		HitRate:         fmt.Sprintf("%.2f%%", stats.HitRate*100),
	})
}

// ClearCache godoc
// @Summary Clear the session cache
// @Description Drops every cached snapshot of the current session.
// @Tags Cache
// @Produce json
// @Success 200 {object} CacheClearResponse "Successful response"
// @Failure 500 {object} ErrorResponse "Cache could not be cleared"
// @Router /api/cache/clear [post]
func (r *routes) handleCacheClear(c *fiber.Ctx) error {
	sess, err := r.sessions.Get(c)
	if err != nil {
		return r.sessionFailed(c, err)
	}
	defer r.saveSession(sess)

	removed, err := r.service.Cache(sess.ID()).Clear(c.UserContext())
	if err != nil {
		r.l.Error(err, map[string]any{"session": sess.ID()})
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Failed to clear cache",
		})
	}

	return c.JSON(CacheClearResponse{
		Message: "Cache cleared successfully",
		Removed: removed,
	})
}
