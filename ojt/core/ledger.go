package core

import (
	"context"
	"fmt"
	"math"
	"time"

	"ojttracker.com/ojttracker/ojt/model"
	"ojttracker.com/ojttracker/utils"
)

// Ledger records clock events and keeps the derived columns of each daily
// record current. Authorization and the approval gate are the caller's job.
type Ledger struct {
	store AttendanceStore
	now   func() time.Time
	loc   *time.Location
}

func NewLedger(store AttendanceStore, now func() time.Time, loc *time.Location) *Ledger {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = utils.ManilaTZ
	}
	return &Ledger{store: store, now: now, loc: loc}
}

func (l *Ledger) Location() *time.Location {
	return l.loc
}

func (l *Ledger) Now() time.Time {
	return l.now()
}

type ClockEvent struct {
	StudentID string
	Action    model.Action
	Image     *string
	ShiftType model.ShiftType
	// Schedule enables undertime and status; nil leaves them at their defaults.
	Schedule *ShiftSchedule
}

// OvernightWindow bounds how long after a graveyard eveningIn the matching
// eveningOut may arrive on the next calendar day.
const OvernightWindow = 16 * time.Hour

// RecordClockEvent stamps the action with the ledger clock on today's record.
// Repeating an action overwrites the earlier timestamp and image. A graveyard
// eveningOut after midnight closes the previous day's open evening pair.
func (l *Ledger) RecordClockEvent(ctx context.Context, ev ClockEvent) (*model.AttendanceRecord, error) {
	if !ev.Action.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, ev.Action)
	}
	shift := ev.ShiftType
	if shift == "" {
		shift = model.ShiftRegular
	}

	at := l.now()
	day := utils.DayOf(at, l.loc)
	if ev.Action == model.EveningOut {
		carried, err := l.openNightBefore(ctx, ev.StudentID, day, at)
		if err != nil {
			return nil, fmt.Errorf("record %s for student %s: %w", ev.Action, ev.StudentID, err)
		}
		if carried {
			day = day.AddDate(0, 0, -1)
		}
	}

	rec, err := l.store.UpsertClockField(ctx, ClockWrite{
		StudentID: ev.StudentID,
		Day:       day,
		Action:    ev.Action,
		At:        at,
		Image:     ev.Image,
		ShiftType: shift,
	}, l.derive(ev.Schedule))
	if err != nil {
		return nil, fmt.Errorf("record %s for student %s: %w", ev.Action, ev.StudentID, err)
	}
	return rec, nil
}

// UpdateRecordFields applies an administrative correction and recomputes the
// derived columns. schedule may be nil.
func (l *Ledger) UpdateRecordFields(ctx context.Context, id string, patch model.RecordPatch, schedule *ShiftSchedule) (*model.AttendanceRecord, error) {
	for _, a := range patch.Clear {
		if !a.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAction, a)
		}
	}
	for a := range patch.Times {
		if !a.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAction, a)
		}
	}
	for a := range patch.Images {
		if !a.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAction, a)
		}
	}
	if patch.ShiftType != nil && *patch.ShiftType != model.ShiftRegular && *patch.ShiftType != model.ShiftGraveyard {
		return nil, fmt.Errorf("%w: %q", ErrInvalidShift, *patch.ShiftType)
	}

	rec, err := l.store.UpdateFields(ctx, id, patch, l.now(), l.derive(schedule))
	if err != nil {
		return nil, fmt.Errorf("update record %s: %w", id, err)
	}
	return rec, nil
}

// openNightBefore reports whether an eveningOut at `at` belongs to the
// previous day's graveyard record: that record has an open evening pair
// started within OvernightWindow, and today has no evening of its own.
func (l *Ledger) openNightBefore(ctx context.Context, studentID string, today, at time.Time) (bool, error) {
	yesterday := today.AddDate(0, 0, -1)
	records, err := l.store.FindForPeriod(ctx, model.PeriodQuery{
		StudentID: studentID,
		From:      yesterday,
		To:        today.AddDate(0, 0, 1),
	})
	if err != nil {
		return false, err
	}

	var open bool
	for i := range records {
		r := &records[i]
		switch {
		case r.Date.Equal(today):
			if r.EveningIn != nil {
				return false, nil
			}
		case r.Date.Equal(yesterday):
			open = r.ShiftType == model.ShiftGraveyard &&
				r.EveningIn != nil && r.EveningOut == nil &&
				at.Sub(*r.EveningIn) <= OvernightWindow
		}
	}
	return open, nil
}

func (l *Ledger) Find(ctx context.Context, id string) (*model.AttendanceRecord, error) {
	return l.store.FindByID(ctx, id)
}

// GetRecordsForPeriod returns records ordered by day. from and to are calendar
// days in the ledger location, both inclusive.
func (l *Ledger) GetRecordsForPeriod(ctx context.Context, studentID string, from, to time.Time) ([]model.AttendanceRecord, error) {
	q := model.PeriodQuery{
		StudentID: studentID,
		From:      utils.DayOf(from, l.loc),
		To:        utils.DayOf(to, l.loc).AddDate(0, 0, 1),
	}
	records, err := l.store.FindForPeriod(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find records for period: %w", err)
	}
	return records, nil
}

// GetRecordsForStudents is GetRecordsForPeriod over a set of students. An
// empty set matches nobody.
func (l *Ledger) GetRecordsForStudents(ctx context.Context, studentIDs []string, from, to time.Time) ([]model.AttendanceRecord, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	q := model.PeriodQuery{
		StudentIDs: studentIDs,
		From:       utils.DayOf(from, l.loc),
		To:         utils.DayOf(to, l.loc).AddDate(0, 0, 1),
	}
	records, err := l.store.FindForPeriod(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find records for students: %w", err)
	}
	return records, nil
}

func (l *Ledger) derive(schedule *ShiftSchedule) DeriveFunc {
	return func(r *model.AttendanceRecord) {
		r.TotalHours = TotalHours(r)
		if schedule == nil {
			return
		}
		eval := schedule.Evaluate(r, l.loc, l.now())
		r.UndertimeMinutes = eval.UndertimeMinutes
		r.Status = eval.Status
	}
}

// TotalHours sums the complete pairs in minutes and converts to hours rounded
// to two decimals. An out earlier than its in subtracts.
func TotalHours(r *model.AttendanceRecord) float64 {
	var minutes float64
	for _, p := range r.Pairs() {
		if !p.Complete() {
			continue
		}
		minutes += p.Out.Sub(*p.In).Minutes()
	}
	return math.Round(minutes/60*100) / 100
}
