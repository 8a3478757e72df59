package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"ojttracker.com/ojttracker/core"
	ojt "ojttracker.com/ojttracker/ojt/core"
)

// PurgeTenants applies the retention cutoff to every tenant schema, or only
// to databases when it is non-empty. A failing tenant is logged and skipped.
func PurgeTenants(ctx context.Context, dm *core.DatabaseManager, databases []string, now time.Time, loc *time.Location, days int, dryRun bool) (map[string]ojt.RetentionResult, error) {
	targets := databases
	if len(targets) == 0 {
		var err error
		if targets, err = dm.GetAllDatabases(ctx); err != nil {
			return nil, fmt.Errorf("failed to get all databases: %w", err)
		}
	}

	results := make(map[string]ojt.RetentionResult, len(targets))
	for _, name := range targets {
		err := dm.Exec(ctx, name, func(db *gorm.DB) error {
			if !db.Migrator().HasTable(TableAttendance) {
				return nil
			}
			result, err := ojt.PurgeBefore(ctx, New(db), now, loc, days, dryRun)
			if err != nil {
				return err
			}
			results[name] = result
			return nil
		})
		if err != nil {
			slog.ErrorContext(ctx, "retention failed", "tenant", name, "error", err)
			continue
		}
	}
	return results, nil
}
