package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"ojttracker.com/ojttracker/config"
	"ojttracker.com/ojttracker/core"
	"ojttracker.com/ojttracker/infrastructure/communication"
	"ojttracker.com/ojttracker/ojt/store"
	"ojttracker.com/ojttracker/utils"
)

// startRetention schedules the purge of old attendance records across every
// tenant. It returns nil when no schedule is configured.
func startRetention(cfg *config.Config, loc *time.Location, slack *communication.Slack) (*cron.Cron, error) {
	if cfg.Retention.Cron == "" || cfg.Retention.Days <= 0 {
		return nil, nil
	}

	c := cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(cfg.Retention.Cron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		dm, err := core.Default()
		if err != nil {
			slog.ErrorContext(ctx, "retention skipped", "error", err)
			return
		}
		results, err := store.PurgeTenants(ctx, dm, nil, time.Now(), loc, cfg.Retention.Days, cfg.Retention.DryRun)
		if err != nil {
			slog.ErrorContext(ctx, "retention failed", "error", err)
			slack.Notify(true, fmt.Sprintf("retention failed: %v", err))
			return
		}

		tenants := make([]string, 0, len(results))
		for name := range results {
			tenants = append(tenants, name)
		}
		sort.Strings(tenants)
		lines := utils.Map(tenants, func(name string) string {
			r := results[name]
			return fmt.Sprintf("%s: %d before %s", name, r.Deleted, r.Cutoff.Format(utils.DateLayout))
		})
		slog.InfoContext(ctx, "retention finished", "tenants", len(results), "dryRun", cfg.Retention.DryRun)
		slack.Notify(false, fmt.Sprintf("retention (dry run: %t)\n%s", cfg.Retention.DryRun, strings.Join(lines, "\n")))
	})
	if err != nil {
		return nil, fmt.Errorf("schedule retention %q: %w", cfg.Retention.Cron, err)
	}

	slog.Info("retention scheduled", "cron", cfg.Retention.Cron, "days", cfg.Retention.Days, "dryRun", cfg.Retention.DryRun)
	c.Start()
	return c, nil
}
