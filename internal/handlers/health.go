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

	resp := healthResponse{Status: "ok", Database: "ok", Cache: "ok", Storage: "ok", Environment: h.cfg.Environment}

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			resp.Database = "error"
			h.log.Error().Err(err).Msg("database ping failed")
		}
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx).Err(); err != nil {
			resp.Cache = "error"
			h.log.Error().Err(err).Msg("redis ping failed")
		}
	}

	if h.store != nil {
		if ok, err := h.store.BucketExists(ctx); err != nil || !ok {
			resp.Storage = "error"
			h.log.Error().Err(err).Bool("bucket_exists", ok).Msg("bucket check failed")
		}
	}

	status := http.StatusOK
	if resp.Database != "ok" || resp.Cache != "ok" || resp.Storage != "ok" {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
