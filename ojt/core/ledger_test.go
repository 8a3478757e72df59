package core_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ojt "ojttracker.com/ojttracker/ojt/core"
	"ojttracker.com/ojttracker/ojt/model"
	"ojttracker.com/ojttracker/ojt/store/inmem"
	"ojttracker.com/ojttracker/utils"
)

// fakeClock hands out whatever time the test last set.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

var manila = utils.ManilaTZ

func at(day, hour, minute int) time.Time {
	return time.Date(2025, 3, day, hour, minute, 0, 0, manila)
}

func newLedger(start time.Time) (*ojt.Ledger, *inmem.Store, *fakeClock) {
	st := inmem.New()
	clock := &fakeClock{t: start}
	return ojt.NewLedger(st, clock.Now, manila), st, clock
}

func clockAction(t *testing.T, l *ojt.Ledger, clock *fakeClock, when time.Time, action model.Action) *model.AttendanceRecord {
	t.Helper()
	clock.Set(when)
	rec, err := l.RecordClockEvent(context.Background(), ojt.ClockEvent{
		StudentID: "S",
		Action:    action,
		Image:     utils.Ptr("proof-" + string(action)),
		ShiftType: model.ShiftRegular,
	})
	require.NoError(t, err)
	return rec
}

func TestFullDayScenario(t *testing.T) {
	l, st, clock := newLedger(at(3, 8, 0))

	rec := clockAction(t, l, clock, at(3, 8, 0), model.MorningIn)
	assert.Equal(t, 0.0, rec.TotalHours)
	assert.Equal(t, 1, st.Len())

	rec = clockAction(t, l, clock, at(3, 12, 0), model.MorningOut)
	assert.Equal(t, 4.0, rec.TotalHours)

	clockAction(t, l, clock, at(3, 13, 0), model.AfternoonIn)
	rec = clockAction(t, l, clock, at(3, 17, 5), model.AfternoonOut)
	assert.Equal(t, 8.08, rec.TotalHours)
	assert.Equal(t, 1, st.Len())

	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), rec.Date)
	assert.Equal(t, model.ShiftRegular, rec.ShiftType)
	require.NotNil(t, rec.AfternoonOutImage)
	assert.Equal(t, "proof-afternoonOut", *rec.AfternoonOutImage)
}

func TestRepeatedActionOverwrites(t *testing.T) {
	l, st, clock := newLedger(at(3, 8, 0))

	clockAction(t, l, clock, at(3, 8, 0), model.MorningIn)
	clock.Set(at(3, 8, 30))
	rec, err := l.RecordClockEvent(context.Background(), ojt.ClockEvent{
		StudentID: "S",
		Action:    model.MorningIn,
		Image:     utils.Ptr("second photo"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, st.Len())
	require.NotNil(t, rec.MorningIn)
	assert.True(t, rec.MorningIn.Equal(at(3, 8, 30)))
	assert.Equal(t, "second photo", *rec.MorningInImage)

	stored, err := l.Find(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.True(t, stored.MorningIn.Equal(at(3, 8, 30)))
}

func TestUnknownActionIsRejectedWithoutMutation(t *testing.T) {
	l, st, clock := newLedger(at(3, 8, 0))
	first := clockAction(t, l, clock, at(3, 8, 0), model.MorningIn)

	for _, action := range []model.Action{"", "lunchIn", "MorningIn", "morning_in"} {
		_, err := l.RecordClockEvent(context.Background(), ojt.ClockEvent{StudentID: "S", Action: action})
		assert.ErrorIs(t, err, ojt.ErrInvalidAction, "action %q", action)
	}

	_, err := l.RecordClockEvent(context.Background(), ojt.ClockEvent{StudentID: "T", Action: "nap"})
	assert.ErrorIs(t, err, ojt.ErrInvalidAction)

	assert.Equal(t, 1, st.Len())
	stored, err := l.Find(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.UpdatedAt, stored.UpdatedAt)
	assert.Nil(t, stored.MorningOut)
}

func TestTotalHours(t *testing.T) {
	ts := func(h, m int) *time.Time { return utils.Ptr(at(3, h, m)) }

	tests := []struct {
		name   string
		record model.AttendanceRecord
		want   float64
	}{
		{"no pairs", model.AttendanceRecord{}, 0},
		{"only in", model.AttendanceRecord{MorningIn: ts(8, 0)}, 0},
		{"only out", model.AttendanceRecord{AfternoonOut: ts(17, 0)}, 0},
		{"morning pair", model.AttendanceRecord{MorningIn: ts(8, 0), MorningOut: ts(12, 0)}, 4},
		{"two pairs no evening", model.AttendanceRecord{
			MorningIn: ts(8, 0), MorningOut: ts(12, 0),
			AfternoonIn: ts(13, 0), AfternoonOut: ts(17, 0),
		}, 8},
		{"rounds to two decimals", model.AttendanceRecord{MorningIn: ts(8, 0), MorningOut: ts(8, 20)}, 0.33},
		{"three minutes", model.AttendanceRecord{MorningIn: ts(8, 0), MorningOut: ts(8, 3)}, 0.05},
		{"out before in is negative", model.AttendanceRecord{MorningIn: ts(12, 0), MorningOut: ts(8, 0)}, -4},
		{"evening across midnight", model.AttendanceRecord{
			EveningIn:  utils.Ptr(at(3, 22, 0)),
			EveningOut: utils.Ptr(at(4, 6, 0)),
		}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ojt.TotalHours(&tt.record))
		})
	}
}

func TestDifferentDaysCreateSeparateRecords(t *testing.T) {
	l, st, clock := newLedger(at(3, 8, 0))

	a := clockAction(t, l, clock, at(3, 23, 59), model.EveningIn)
	b := clockAction(t, l, clock, at(4, 0, 1), model.EveningOut)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, st.Len())
	assert.Equal(t, 0.0, b.TotalHours)
}

func TestGraveyardEveningOutClosesPreviousNight(t *testing.T) {
	l, st, clock := newLedger(at(3, 22, 0))
	schedule := ojt.ScheduleFromConfig(ojt.GraveyardConfig)
	record := func(studentID string, when time.Time, action model.Action) *model.AttendanceRecord {
		t.Helper()
		clock.Set(when)
		rec, err := l.RecordClockEvent(context.Background(), ojt.ClockEvent{
			StudentID: studentID,
			Action:    action,
			ShiftType: model.ShiftGraveyard,
			Schedule:  schedule,
		})
		require.NoError(t, err)
		return rec
	}

	in := record("G", at(3, 22, 0), model.EveningIn)
	out := record("G", at(4, 6, 0), model.EveningOut)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), out.Date)
	assert.Equal(t, 8.0, out.TotalHours)
	assert.Equal(t, 0, out.UndertimeMinutes)
	assert.Equal(t, model.StatusPresent, out.Status)

	// the next night opens its own record and closes it the morning after
	next := record("G", at(4, 22, 5), model.EveningIn)
	assert.NotEqual(t, in.ID, next.ID)
	closed := record("G", at(5, 6, 0), model.EveningOut)
	assert.Equal(t, next.ID, closed.ID)
	assert.Equal(t, 2, st.Len())

	// a late arrival after midnight belongs to that day, not the night before
	record("H", at(6, 22, 0), model.EveningIn)
	late := record("H", at(7, 0, 40), model.EveningIn)
	own := record("H", at(7, 6, 0), model.EveningOut)
	assert.Equal(t, late.ID, own.ID)

	// nothing to close past the overnight window
	record("K", at(10, 22, 0), model.EveningIn)
	stray := record("K", at(11, 15, 0), model.EveningOut)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), stray.Date)
}

func TestDayBoundaryFollowsLocation(t *testing.T) {
	// 16:30 UTC on the 3rd is 00:30 on the 4th in Manila
	l, _, clock := newLedger(time.Time{})
	rec := clockAction(t, l, clock, time.Date(2025, 3, 3, 16, 30, 0, 0, time.UTC), model.MorningIn)

	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), rec.Date)
}

func TestConcurrentActionsKeepEveryField(t *testing.T) {
	l, st, _ := newLedger(at(3, 12, 0))

	var wg sync.WaitGroup
	for _, action := range model.Actions {
		wg.Add(1)
		go func(a model.Action) {
			defer wg.Done()
			_, err := l.RecordClockEvent(context.Background(), ojt.ClockEvent{StudentID: "S", Action: a})
			assert.NoError(t, err)
		}(action)
	}
	wg.Wait()

	assert.Equal(t, 1, st.Len())
	records, err := l.GetRecordsForPeriod(context.Background(), "S", at(3, 0, 0), at(3, 0, 0))
	require.NoError(t, err)
	require.Len(t, records, 1)
	for _, p := range records[0].Pairs() {
		assert.True(t, p.Complete(), p.Name)
	}
}

func TestGetRecordsForPeriod(t *testing.T) {
	l, _, clock := newLedger(at(1, 8, 0))
	for d := 1; d <= 5; d++ {
		clockAction(t, l, clock, at(d, 8, 0), model.MorningIn)
	}
	clock.Set(at(2, 8, 0))
	_, err := l.RecordClockEvent(context.Background(), ojt.ClockEvent{StudentID: "T", Action: model.MorningIn})
	require.NoError(t, err)

	records, err := l.GetRecordsForPeriod(context.Background(), "S", at(2, 0, 0), at(4, 0, 0))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 2, records[0].Date.Day())
	assert.Equal(t, 4, records[2].Date.Day())

	all, err := l.GetRecordsForPeriod(context.Background(), "", at(2, 0, 0), at(2, 0, 0))
	require.NoError(t, err)
	assert.Len(t, all, 2)

	some, err := l.GetRecordsForStudents(context.Background(), []string{"T"}, at(1, 0, 0), at(5, 0, 0))
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "T", some[0].StudentID)

	none, err := l.GetRecordsForStudents(context.Background(), nil, at(1, 0, 0), at(5, 0, 0))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateRecordFields(t *testing.T) {
	l, _, clock := newLedger(at(3, 8, 0))
	clockAction(t, l, clock, at(3, 8, 0), model.MorningIn)
	rec := clockAction(t, l, clock, at(3, 12, 0), model.MorningOut)
	require.Equal(t, 4.0, rec.TotalHours)

	clock.Set(at(5, 9, 15))
	updated, err := l.UpdateRecordFields(context.Background(), rec.ID, model.RecordPatch{
		Times: map[model.Action]time.Time{
			model.AfternoonIn:  at(3, 13, 0),
			model.AfternoonOut: at(3, 15, 30),
		},
		Clear:   []model.Action{model.MorningOut},
		Remarks: utils.Ptr("forgot to clock out"),
	}, nil)
	require.NoError(t, err)

	assert.Nil(t, updated.MorningOut)
	assert.Nil(t, updated.MorningOutImage)
	assert.Equal(t, 2.5, updated.TotalHours)
	assert.Equal(t, "forgot to clock out", *updated.Remarks)
	assert.True(t, at(5, 9, 15).Equal(updated.UpdatedAt))
}

func TestUpdateRecordFieldsErrors(t *testing.T) {
	l, _, clock := newLedger(at(3, 8, 0))
	rec := clockAction(t, l, clock, at(3, 8, 0), model.MorningIn)

	_, err := l.UpdateRecordFields(context.Background(), "missing", model.RecordPatch{}, nil)
	assert.True(t, errors.Is(err, ojt.ErrRecordNotFound))

	_, err = l.UpdateRecordFields(context.Background(), rec.ID, model.RecordPatch{Clear: []model.Action{"lunchOut"}}, nil)
	assert.ErrorIs(t, err, ojt.ErrInvalidAction)

	bad := model.ShiftType("night")
	_, err = l.UpdateRecordFields(context.Background(), rec.ID, model.RecordPatch{ShiftType: &bad}, nil)
	assert.ErrorIs(t, err, ojt.ErrInvalidShift)
}

func TestScheduleDrivesUndertimeAndStatus(t *testing.T) {
	l, _, clock := newLedger(at(3, 8, 0))
	schedule := ojt.ScheduleFromConfig(ojt.RegularConfig)

	record := func(when time.Time, a model.Action) *model.AttendanceRecord {
		clock.Set(when)
		rec, err := l.RecordClockEvent(context.Background(), ojt.ClockEvent{StudentID: "S", Action: a, Schedule: schedule})
		require.NoError(t, err)
		return rec
	}

	rec := record(at(3, 8, 30), model.MorningIn)
	assert.Equal(t, model.StatusLate, rec.Status)
	assert.Equal(t, 30, rec.UndertimeMinutes)

	rec = record(at(3, 12, 0), model.MorningOut)
	assert.Equal(t, model.StatusLate, rec.Status)
	assert.Equal(t, 30, rec.UndertimeMinutes)

	// afternoon never attended; by 17:00 it is due and owed in full
	clock.Set(at(3, 17, 0))
	rec = record(at(3, 17, 0), model.EveningIn)
	assert.Equal(t, model.StatusHalfDay, rec.Status)
	assert.Equal(t, 30+240, rec.UndertimeMinutes)
}
