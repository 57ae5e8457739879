package handler

import (
	"context"
	"net/http"
	"time"

	"seedcounter/internal/config"
	"seedcounter/internal/logger"
)

const aliveTimeout = 3 * time.Second

// PoolStatus reports the state of the processing workers.
type PoolStatus interface {
	Workers() int
	QueueLength() int
	DetectorsAlive(ctx context.Context) error
}

// ViewerCounter reports how many live viewers are connected.
type ViewerCounter interface {
	GetClientCount() int
}

// HealthHandler reports worker, queue, detector and viewer status. It answers
// 503 when the detectors cannot be reached.
func HealthHandler(pool PoolStatus, viewers ViewerCounter, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), aliveTimeout)
		defer cancel()

		body := map[string]interface{}{
			"status":          "ok",
			"workers":         pool.Workers(),
			"queueLength":     pool.QueueLength(),
			"detectorBackend": cfg.DetectorBackend,
			"detectorsAlive":  true,
			"viewers":         viewers.GetClientCount(),
		}

		status := http.StatusOK
		if err := pool.DetectorsAlive(ctx); err != nil {
			logger.Warning("Health check: %v", err)
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["detectorsAlive"] = false
			body["detectorError"] = err.Error()
		}

		writeJSON(w, status, body, logger)
	}
}
