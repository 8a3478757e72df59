package model

import (
	"time"

	"gorm.io/datatypes"
)

type StudentShiftType string

const (
	StudentShiftRegular      StudentShiftType = "regular"
	StudentShiftRegularSplit StudentShiftType = "regular-split"
	StudentShiftGraveyard    StudentShiftType = "graveyard"
	StudentShiftCustom       StudentShiftType = "custom"
)

func (s StudentShiftType) Valid() bool {
	switch s {
	case StudentShiftRegular, StudentShiftRegularSplit, StudentShiftGraveyard, StudentShiftCustom:
		return true
	}
	return false
}

// RecordShift is the shift stamped on attendance records created for this student.
func (s StudentShiftType) RecordShift() ShiftType {
	if s == StudentShiftGraveyard {
		return ShiftGraveyard
	}
	return ShiftRegular
}

const (
	SegmentMorning   = "morning"
	SegmentAfternoon = "afternoon"
	SegmentEvening   = "evening"
)

// ShiftConfig holds HH:mm boundaries. Empty pairs are not scheduled.
type ShiftConfig struct {
	MorningStart   string `json:"morningStart,omitempty"`
	MorningEnd     string `json:"morningEnd,omitempty"`
	AfternoonStart string `json:"afternoonStart,omitempty"`
	AfternoonEnd   string `json:"afternoonEnd,omitempty"`
	EveningStart   string `json:"eveningStart,omitempty"`
	EveningEnd     string `json:"eveningEnd,omitempty"`
	Description    string `json:"description,omitempty"`
}

func (c ShiftConfig) Empty() bool {
	return c.MorningStart == "" && c.AfternoonStart == "" && c.EveningStart == ""
}

type Student struct {
	ID                string                          `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	UserEmail         string                          `gorm:"column:user_email;type:varchar(255);index" json:"userEmail"`
	StudentNumber     string                          `gorm:"column:student_number;type:varchar(50);uniqueIndex" json:"studentNumber"`
	FirstName         string                          `gorm:"column:first_name;type:varchar(100)" json:"firstName"`
	LastName          string                          `gorm:"column:last_name;type:varchar(100)" json:"lastName"`
	MiddleName        *string                         `gorm:"column:middle_name;type:varchar(100)" json:"middleName"`
	Department        string                          `gorm:"column:department;type:varchar(100);index" json:"department"`
	HostEstablishment *string                         `gorm:"column:host_establishment;type:varchar(255)" json:"hostEstablishment"`
	OjtAdvisorID      *string                         `gorm:"column:ojt_advisor_id;type:varchar(36)" json:"ojtAdvisorId"`
	ShiftType         StudentShiftType                `gorm:"column:shift_type;type:varchar(20);not null;default:regular" json:"shiftType"`
	ShiftConfig       datatypes.JSONType[ShiftConfig] `gorm:"column:shift_config" json:"shiftConfig"`
	IsAccepted        bool                            `gorm:"column:is_accepted;not null;default:false" json:"isAccepted"`
	IsActive          bool                            `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CreatedAt         time.Time                       `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt         time.Time                       `gorm:"column:updated_at" json:"updatedAt"`
}

func (Student) TableName() string {
	return "students"
}

func (s *Student) FullName() string {
	name := s.LastName + ", " + s.FirstName
	if s.MiddleName != nil && *s.MiddleName != "" {
		name += " " + (*s.MiddleName)[:1] + "."
	}
	return name
}

// CanClock reports whether the approval gate lets the student record attendance.
func (s *Student) CanClock() bool {
	return s.IsAccepted && s.IsActive
}

type StudentFilter struct {
	Department string
	AdvisorID  string
	Accepted   *bool
	Active     *bool
	Limit      int
	Offset     int
}
