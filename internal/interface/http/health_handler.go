package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthPingTimeout = 2 * time.Second

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "pong",
		"timestamp": time.Now().Unix(),
	})
}

// handleHealth 資料庫無法連線時回 503，讓負載平衡器把節點摘掉。
func (s *Server) handleHealth(c *gin.Context) {
	status := http.StatusOK
	dbStatus := "using_memory"
	if s.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()
		dbStatus = "ok"
		if err := s.db.PingContext(ctx); err != nil {
			dbStatus = "error: " + err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	health := "ok"
	if status != http.StatusOK {
		health = "degraded"
	}
	c.JSON(status, gin.H{
		"success":     status == http.StatusOK,
		"health":      health,
		"db":          dbStatus,
		"data_source": s.dataSource,
		"tracing":     s.tracer.Enabled(),
		"digest":      s.digest != nil,
		"time":        time.Now().UTC().Format(time.RFC3339),
	})
}
