package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/b4platform/b4-backend/api/responses"
	"github.com/b4platform/b4-backend/pkg/bigquery"
	"github.com/b4platform/b4-backend/pkg/config"
	"github.com/b4platform/b4-backend/pkg/db"
	pkgerrors "github.com/b4platform/b4-backend/pkg/errors"
	"github.com/b4platform/b4-backend/pkg/logger"
	"github.com/b4platform/b4-backend/pkg/redis"
	"github.com/b4platform/b4-backend/pkg/storage/gcs"
)

const readyCheckTimeout = 3 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-B4-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every backing dependency before reporting ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, gcsP gcs.Pinger, bqP bigquery.Pinger) http.HandlerFunc {
	type check struct {
		name   string
		pinger interface {
			Ping(ctx context.Context) error
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-B4-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := []check{
			{name: "postgres", pinger: dbP},
			{name: "redis", pinger: redisP},
			{name: "gcs", pinger: gcsP},
			{name: "bigquery", pinger: bqP},
		}

		status := map[string]string{}
		for _, c := range checks {
			if c.pinger == nil {
				status[c.name] = "skipped"
				continue
			}
			if err := c.pinger.Ping(ctx); err != nil {
				status[c.name] = "down"
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, c.name+" unavailable"))
				return
			}
			status[c.name] = "up"
		}

		status["status"] = "ready"
		responses.WriteSuccess(w, status)
	}
}
