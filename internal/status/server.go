// Package status exposes the collector's ops HTTP surface: liveness,
// readiness, Prometheus metrics and the most recent snapshot.
package status

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/solacq/solacq/internal/collector"
)

// NewRouter builds the gin engine. This is a reporting surface only,
// not a historical query API.
func NewRouter(c *collector.Collector) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})

	engine.GET("/readiness", func(ctx *gin.Context) {
		if c.Ready() {
			ctx.JSON(http.StatusOK, "ok")
		} else {
			ctx.JSON(http.StatusNotFound, "ng")
		}
	})

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	engine.GET("/snapshot", func(ctx *gin.Context) {
		snap, meterSnap := c.Latest()
		if snap == nil && meterSnap == nil {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "no snapshot collected yet"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{
			"installation": snap,
			"meter":        meterSnap,
		})
	})

	return engine
}
