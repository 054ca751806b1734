package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	Cache       string `json:"cache"`
	Storage     string `json:"storage"`
	Environment string `json:"environment"`
}

func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:      "ok",
		Database:    h.probe(ctx, "database", h.checks.Database),
		Cache:       h.probe(ctx, "cache", h.checks.Cache),
		Storage:     h.probe(ctx, "storage", h.checks.Storage),
		Environment: h.environment,
	}

	status := http.StatusOK
	if resp.Database == "error" {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	} else if resp.Cache == "error" || resp.Storage == "error" {
		resp.Status = "degraded"
	}

	c.JSON(status, resp)
}

func (h HandlerSet) probe(ctx context.Context, name string, ping Pinger) string {
	if ping == nil {
		return "disabled"
	}
	if err := ping(ctx); err != nil {
		h.log.Error().Err(err).Str("dependency", name).Msg("health check failed")
		return "error"
	}
	return "ok"
}
