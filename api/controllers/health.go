package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/adepa-commerce/storefront-backend/api/responses"
	"github.com/adepa-commerce/storefront-backend/pkg/config"
	"github.com/adepa-commerce/storefront-backend/pkg/db"
	pkgerrors "github.com/adepa-commerce/storefront-backend/pkg/errors"
	"github.com/adepa-commerce/storefront-backend/pkg/logger"
	"github.com/adepa-commerce/storefront-backend/pkg/redis"
)

const readyCheckTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and the session store before reporting ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := map[string]string{"database": "skipped", "redis": "skipped"}
		healthy := true

		if dbP != nil {
			checks["database"] = "up"
			if err := dbP.Ping(ctx); err != nil {
				checks["database"] = "down"
				healthy = false
				if logg != nil {
					logg.Warn(ctx, "database health check failed")
				}
			}
		}
		if redisP != nil {
			checks["redis"] = "up"
			if err := redisP.Ping(ctx); err != nil {
				checks["redis"] = "down"
				healthy = false
				if logg != nil {
					logg.Warn(ctx, "redis health check failed")
				}
			}
		}

		if !healthy {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
