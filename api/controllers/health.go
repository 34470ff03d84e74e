package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/coverline/coverline-backend/api/responses"
	"github.com/coverline/coverline-backend/pkg/config"
	"github.com/coverline/coverline-backend/pkg/db"
	"github.com/coverline/coverline-backend/pkg/logger"
	"github.com/coverline/coverline-backend/pkg/redis"
	"github.com/coverline/coverline-backend/pkg/storage/gcs"
)

const readyCheckTimeout = 5 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Coverline-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports per-dependency health. Any failing dependency flips the
// endpoint to 503 so the load balancer stops routing here.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, gcsP gcs.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Coverline-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true
		check := func(name string, ping func(context.Context) error) {
			if ping == nil {
				checks[name] = "not configured"
				return
			}
			if err := ping(ctx); err != nil {
				checks[name] = "unavailable"
				healthy = false
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"dependency": name,
						"error":      err.Error(),
					}), "health.ready.dependency_failed")
				}
				return
			}
			checks[name] = "ok"
		}

		if dbP != nil {
			check("database", dbP.Ping)
		} else {
			check("database", nil)
		}
		if redisP != nil {
			check("redis", redisP.Ping)
		} else {
			check("redis", nil)
		}
		if gcsP != nil {
			check("gcs", gcsP.Ping)
		} else {
			check("gcs", nil)
		}

		status := http.StatusOK
		overall := "ready"
		if !healthy {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}
		responses.WriteSuccessStatus(w, status, map[string]any{
			"status": overall,
			"checks": checks,
		})
	}
}
