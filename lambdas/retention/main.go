package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"ojttracker.com/ojttracker/config"
	"ojttracker.com/ojttracker/core"
	"ojttracker.com/ojttracker/infrastructure/devops"
	"ojttracker.com/ojttracker/logging"
	ojt "ojttracker.com/ojttracker/ojt/core"
	"ojttracker.com/ojttracker/ojt/store"
	"ojttracker.com/ojttracker/utils"
)

// RetentionEvent is the scheduled or manual invocation payload. Zero values
// fall back to configuration.
type RetentionEvent struct {
	Databases []string `json:"databases"`
	DryRun    *bool    `json:"dryRun"`
	Days      int      `json:"days"`
	Env       string   `json:"env"`
}

type job struct {
	driver string
	dsn    string
	days   int
	dryRun bool
	loc    *time.Location
}

func resolve(ctx context.Context, cfg *config.Config, ev RetentionEvent) (job, error) {
	j := job{
		driver: cfg.DB.Driver,
		dsn:    cfg.DB.DSN,
		days:   cfg.Retention.Days,
		dryRun: cfg.Retention.DryRun,
		loc:    utils.LoadLocation(cfg.Timezone),
	}
	if j.driver == "inmem" {
		return job{}, fmt.Errorf("retention needs a real database driver")
	}
	if ev.Days > 0 {
		j.days = ev.Days
	}
	if ev.DryRun != nil {
		j.dryRun = *ev.DryRun
	}

	env := ev.Env
	if env == "" && cfg.DB.TenantsFromSSM {
		env = cfg.DB.SSMEnv
	}
	if env != "" {
		dsn, err := devops.ResolveDSN(ctx, j.driver, env)
		if err != nil {
			return job{}, fmt.Errorf("failed to load databases from SSM: %w", err)
		}
		j.dsn = dsn
	}
	return j, nil
}

func HandleRequest(ctx context.Context, ev RetentionEvent) (map[string]ojt.RetentionResult, error) {
	eventJSON, _ := json.Marshal(ev)
	slog.InfoContext(ctx, "retention event", "event", string(eventJSON))

	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}
	j, err := resolve(ctx, cfg, ev)
	if err != nil {
		return nil, err
	}

	dm, err := core.New(core.Options{Driver: j.driver, DSN: j.dsn, MaxConnections: 2, LogLevel: core.LogLevelError})
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dm.Close()

	results, err := store.PurgeTenants(ctx, dm, ev.Databases, time.Now(), j.loc, j.days, j.dryRun)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "retention finished", "tenants", len(results), "days", j.days, "dryRun", j.dryRun)
	return results, nil
}

func main() {
	logging.Setup(logging.Options{Env: "lambda"})
	lambda.Start(HandleRequest)
}
