package model

import (
	"time"
)

type Action string

const (
	MorningIn    Action = "morningIn"
	MorningOut   Action = "morningOut"
	AfternoonIn  Action = "afternoonIn"
	AfternoonOut Action = "afternoonOut"
	EveningIn    Action = "eveningIn"
	EveningOut   Action = "eveningOut"
)

var Actions = []Action{MorningIn, MorningOut, AfternoonIn, AfternoonOut, EveningIn, EveningOut}

func (a Action) Valid() bool {
	_, ok := actionColumns[a]
	return ok
}

var actionColumns = map[Action]string{
	MorningIn:    "morning_in",
	MorningOut:   "morning_out",
	AfternoonIn:  "afternoon_in",
	AfternoonOut: "afternoon_out",
	EveningIn:    "evening_in",
	EveningOut:   "evening_out",
}

// Column is the timestamp column written by the action, e.g. "morning_in".
// The proof image lives in Column()+"_image".
func (a Action) Column() string {
	return actionColumns[a]
}

func (a Action) ImageColumn() string {
	return actionColumns[a] + "_image"
}

type ShiftType string

const (
	ShiftRegular   ShiftType = "regular"
	ShiftGraveyard ShiftType = "graveyard"
)

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLate    AttendanceStatus = "late"
	StatusHalfDay AttendanceStatus = "half_day"
)

type AttendanceRecord struct {
	ID        string    `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	StudentID string    `gorm:"column:student_id;type:varchar(36);not null;uniqueIndex:ux_attendance_student_date,priority:1" json:"studentId"`
	Date      time.Time `gorm:"column:date;type:date;not null;uniqueIndex:ux_attendance_student_date,priority:2;index" json:"date"`

	MorningIn    *time.Time `gorm:"column:morning_in" json:"morningIn"`
	MorningOut   *time.Time `gorm:"column:morning_out" json:"morningOut"`
	AfternoonIn  *time.Time `gorm:"column:afternoon_in" json:"afternoonIn"`
	AfternoonOut *time.Time `gorm:"column:afternoon_out" json:"afternoonOut"`
	EveningIn    *time.Time `gorm:"column:evening_in" json:"eveningIn"`
	EveningOut   *time.Time `gorm:"column:evening_out" json:"eveningOut"`

	MorningInImage    *string `gorm:"column:morning_in_image" json:"morningInImage"`
	MorningOutImage   *string `gorm:"column:morning_out_image" json:"morningOutImage"`
	AfternoonInImage  *string `gorm:"column:afternoon_in_image" json:"afternoonInImage"`
	AfternoonOutImage *string `gorm:"column:afternoon_out_image" json:"afternoonOutImage"`
	EveningInImage    *string `gorm:"column:evening_in_image" json:"eveningInImage"`
	EveningOutImage   *string `gorm:"column:evening_out_image" json:"eveningOutImage"`

	ShiftType        ShiftType        `gorm:"column:shift_type;type:varchar(20);not null;default:regular" json:"shiftType"`
	TotalHours       float64          `gorm:"column:total_hours;type:decimal(10,2);not null;default:0" json:"totalHours"`
	UndertimeMinutes int              `gorm:"column:undertime_minutes;not null;default:0" json:"undertimeMinutes"`
	Status           AttendanceStatus `gorm:"column:status;type:varchar(20);not null;default:present" json:"status"`
	Remarks          *string          `gorm:"column:remarks;type:text" json:"remarks"`

	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// Field returns pointers to the timestamp and image slots written by the action.
func (r *AttendanceRecord) Field(a Action) (**time.Time, **string) {
	switch a {
	case MorningIn:
		return &r.MorningIn, &r.MorningInImage
	case MorningOut:
		return &r.MorningOut, &r.MorningOutImage
	case AfternoonIn:
		return &r.AfternoonIn, &r.AfternoonInImage
	case AfternoonOut:
		return &r.AfternoonOut, &r.AfternoonOutImage
	case EveningIn:
		return &r.EveningIn, &r.EveningInImage
	case EveningOut:
		return &r.EveningOut, &r.EveningOutImage
	}
	return nil, nil
}

// Pair is one in/out segment of the day.
type Pair struct {
	Name string
	In   *time.Time
	Out  *time.Time
}

func (p Pair) Complete() bool {
	return p.In != nil && p.Out != nil
}

func (r *AttendanceRecord) Pairs() []Pair {
	return []Pair{
		{Name: SegmentMorning, In: r.MorningIn, Out: r.MorningOut},
		{Name: SegmentAfternoon, In: r.AfternoonIn, Out: r.AfternoonOut},
		{Name: SegmentEvening, In: r.EveningIn, Out: r.EveningOut},
	}
}

// RecordPatch is a partial correction of a record. Nil pointers leave the
// column untouched, Clear lists actions whose timestamp and image are reset.
type RecordPatch struct {
	Times     map[Action]time.Time
	Images    map[Action]string
	Clear     []Action
	ShiftType *ShiftType
	Remarks   *string
}

func (p RecordPatch) Apply(r *AttendanceRecord) {
	for _, a := range p.Clear {
		ts, img := r.Field(a)
		if ts == nil {
			continue
		}
		*ts = nil
		*img = nil
	}
	for a, t := range p.Times {
		ts, _ := r.Field(a)
		if ts == nil {
			continue
		}
		v := t
		*ts = &v
	}
	for a, image := range p.Images {
		_, img := r.Field(a)
		if img == nil {
			continue
		}
		v := image
		*img = &v
	}
	if p.ShiftType != nil {
		r.ShiftType = *p.ShiftType
	}
	if p.Remarks != nil {
		r.Remarks = p.Remarks
	}
}

// PeriodQuery selects records whose day falls in [From, To). Empty StudentID
// means every student.
type PeriodQuery struct {
	StudentID  string
	StudentIDs []string
	From       time.Time
	To         time.Time
}
