package core

import (
	"context"
	"fmt"
	"time"

	"ojttracker.com/ojttracker/utils"
)

type RetentionResult struct {
	Cutoff  time.Time `json:"cutoff"`
	Deleted int64     `json:"deleted"`
	DryRun  bool      `json:"dryRun"`
}

// PurgeBefore removes records whose day is more than days before now. With
// dryRun the matching rows are only counted.
func PurgeBefore(ctx context.Context, store AttendanceStore, now time.Time, loc *time.Location, days int, dryRun bool) (RetentionResult, error) {
	if days <= 0 {
		return RetentionResult{}, fmt.Errorf("retention days must be positive, got %d", days)
	}
	cutoff := utils.DayOf(now, loc).AddDate(0, 0, -days)
	n, err := store.DeleteBefore(ctx, cutoff, dryRun)
	if err != nil {
		return RetentionResult{}, fmt.Errorf("purge before %s: %w", cutoff.Format(utils.DateLayout), err)
	}
	return RetentionResult{Cutoff: cutoff, Deleted: n, DryRun: dryRun}, nil
}
