package endpoint

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// Metrics returns a handler exposing process runtime counters: goroutine
// count, heap usage, and GC activity. Each request pays one ReadMemStats, so
// this endpoint is meant for operational spot checks, not high-frequency
// scraping.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)

		c.JSON(http.StatusOK, gin.H{
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"goroutines": runtime.NumGoroutine(),
			"heap": gin.H{
				"alloc_bytes":       ms.HeapAlloc,
				"sys_bytes":         ms.Sys,
				"objects":           ms.HeapObjects,
				"total_alloc_bytes": ms.TotalAlloc,
			},
			"gc": gin.H{
				"runs":              ms.NumGC,
				"pause_total_ms":    time.Duration(ms.PauseTotalNs).Milliseconds(),
				"next_target_bytes": ms.NextGC,
			},
		})
	}
}
