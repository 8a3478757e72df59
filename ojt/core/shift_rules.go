package core

import (
	"fmt"
	"strings"
	"time"

	"ojttracker.com/ojttracker/ojt/model"
)

const (
	StartEarlyThreshold  = 15 * time.Minute
	StartLateThreshold   = 10 * time.Minute
	FinishEarlyThreshold = 10 * time.Minute
	FinishLateThreshold  = 15 * time.Minute
)

// Segment is one scheduled in/out window, e.g. morning 08:00-12:00.
type Segment struct {
	Name  string
	Start string
	End   string
}

type ShiftSchedule struct {
	Segments []Segment
}

var (
	RegularConfig = model.ShiftConfig{
		MorningStart:   "08:00",
		MorningEnd:     "12:00",
		AfternoonStart: "13:00",
		AfternoonEnd:   "17:00",
		Description:    "Regular 8:00 AM - 5:00 PM",
	}
	GraveyardConfig = model.ShiftConfig{
		EveningStart: "22:00",
		EveningEnd:   "06:00",
		Description:  "Graveyard 10:00 PM - 6:00 AM",
	}
)

func DefaultShiftConfig(t model.StudentShiftType) model.ShiftConfig {
	if t == model.StudentShiftGraveyard {
		return GraveyardConfig
	}
	return RegularConfig
}

func ScheduleFromConfig(c model.ShiftConfig) *ShiftSchedule {
	s := &ShiftSchedule{}
	add := func(name, start, end string) {
		if start != "" && end != "" {
			s.Segments = append(s.Segments, Segment{Name: name, Start: start, End: end})
		}
	}
	add(model.SegmentMorning, c.MorningStart, c.MorningEnd)
	add(model.SegmentAfternoon, c.AfternoonStart, c.AfternoonEnd)
	add(model.SegmentEvening, c.EveningStart, c.EveningEnd)
	return s
}

// OfficialHours lists the segments as "08:00-12:00, 13:00-17:00".
func (s *ShiftSchedule) OfficialHours() string {
	parts := make([]string, 0, len(s.Segments))
	for _, seg := range s.Segments {
		parts = append(parts, seg.Start+"-"+seg.End)
	}
	return strings.Join(parts, ", ")
}

// ResolveSchedule uses the student's own shift config when present and the
// defaults of their shift type otherwise.
func ResolveSchedule(s *model.Student) *ShiftSchedule {
	cfg := s.ShiftConfig.Data()
	if cfg.Empty() {
		cfg = DefaultShiftConfig(s.ShiftType)
	}
	return ScheduleFromConfig(cfg)
}

// ValidateShiftConfig checks every non-empty boundary parses as HH:mm and that
// start and end come together.
func ValidateShiftConfig(c model.ShiftConfig) error {
	pairs := [][3]string{
		{model.SegmentMorning, c.MorningStart, c.MorningEnd},
		{model.SegmentAfternoon, c.AfternoonStart, c.AfternoonEnd},
		{model.SegmentEvening, c.EveningStart, c.EveningEnd},
	}
	for _, p := range pairs {
		if (p[1] == "") != (p[2] == "") {
			return fmt.Errorf("%w: %s needs both start and end", ErrInvalidShift, p[0])
		}
		for _, v := range p[1:] {
			if v == "" {
				continue
			}
			if _, err := ParseTimeOnDate(time.Time{}, v); err != nil {
				return fmt.Errorf("%w: %s time %q", ErrInvalidShift, p[0], v)
			}
		}
	}
	return nil
}

type Evaluation struct {
	UndertimeMinutes int
	Status           model.AttendanceStatus
	LateMinutes      int
}

// Evaluate measures the record against the schedule as of asOf. Segments that
// have not ended yet only count once they are complete.
func (s *ShiftSchedule) Evaluate(r *model.AttendanceRecord, loc *time.Location, asOf time.Time) Evaluation {
	base := time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), 0, 0, 0, 0, loc)
	pairs := map[string]model.Pair{}
	for _, p := range r.Pairs() {
		pairs[p.Name] = p
	}

	var undertime, late time.Duration
	var due, attended, missed int
	for _, seg := range s.Segments {
		start, err := ParseTimeOnDate(base, seg.Start)
		if err != nil {
			continue
		}
		end, err := ParseTimeOnDate(base, seg.End)
		if err != nil {
			continue
		}
		// overnight segment, e.g. 22:00-06:00
		if !end.After(start) {
			end = end.Add(24 * time.Hour)
		}

		p := pairs[seg.Name]
		var lateness time.Duration
		if p.In != nil {
			if d := ApplyStartRule(*p.In, start).Sub(start); d > 0 {
				lateness = d
				late += d
			}
		}

		isDue := !asOf.Before(end)
		switch {
		case p.Complete():
			undertime += lateness
			if d := end.Sub(ApplyFinishRule(*p.Out, end)); d > 0 {
				undertime += d
			}
		case isDue:
			// the whole window is owed
			undertime += end.Sub(start)
		default:
			undertime += lateness
		}

		if !isDue {
			continue
		}
		due++
		if p.In != nil {
			attended++
		} else {
			missed++
		}
	}

	eval := Evaluation{
		UndertimeMinutes: int(undertime / time.Minute),
		LateMinutes:      int(late / time.Minute),
		Status:           model.StatusPresent,
	}
	switch {
	case due > 0 && attended == 0:
		eval.Status = model.StatusAbsent
	case missed > 0:
		eval.Status = model.StatusHalfDay
	case late > 0:
		eval.Status = model.StatusLate
	}
	return eval
}

// ApplyStartRule snaps an arrival within [defined-15m, defined+10m] to defined.
func ApplyStartRule(actual, defined time.Time) time.Time {
	diff := actual.Sub(defined)
	if diff >= -StartEarlyThreshold && diff <= StartLateThreshold {
		return defined
	}
	return actual
}

// ApplyFinishRule snaps a departure within [defined-10m, defined+15m] to defined.
func ApplyFinishRule(actual, defined time.Time) time.Time {
	diff := actual.Sub(defined)
	if diff >= -FinishEarlyThreshold && diff <= FinishLateThreshold {
		return defined
	}
	return actual
}

// ParseTimeOnDate combines a base date with a time string (e.g. "08:00")
func ParseTimeOnDate(baseDate time.Time, timeStr string) (time.Time, error) {
	t, err := time.Parse("15:04", timeStr)
	if err != nil {
		t, err = time.Parse("15:04:05", timeStr)
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(baseDate.Year(), baseDate.Month(), baseDate.Day(), t.Hour(), t.Minute(), t.Second(), 0, baseDate.Location()), nil
}
