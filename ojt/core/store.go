package core

import (
	"context"
	"time"

	"ojttracker.com/ojttracker/ojt/model"
)

// DeriveFunc recomputes the derived columns of a record after a mutation.
type DeriveFunc func(r *model.AttendanceRecord)

// ClockWrite sets one action slot on the (StudentID, Day) record, creating the
// record with ShiftType when it does not exist yet.
type ClockWrite struct {
	StudentID string
	Day       time.Time
	Action    model.Action
	At        time.Time
	Image     *string
	ShiftType model.ShiftType
}

// AttendanceStore persists ledger rows. Implementations must make UpsertClockField
// atomic per (student, day): concurrent writes to different actions of the same
// day must all survive, and at most one row exists per key.
type AttendanceStore interface {
	UpsertClockField(ctx context.Context, w ClockWrite, derive DeriveFunc) (*model.AttendanceRecord, error)
	// UpdateFields applies patch to the record and stamps it updated at at.
	UpdateFields(ctx context.Context, id string, patch model.RecordPatch, at time.Time, derive DeriveFunc) (*model.AttendanceRecord, error)
	FindByID(ctx context.Context, id string) (*model.AttendanceRecord, error)
	FindForPeriod(ctx context.Context, q model.PeriodQuery) ([]model.AttendanceRecord, error)
	DeleteBefore(ctx context.Context, cutoff time.Time, dryRun bool) (int64, error)
}

type StudentStore interface {
	FindStudent(ctx context.Context, id string) (*model.Student, error)
	FindStudentByEmail(ctx context.Context, email string) (*model.Student, error)
	FindStudentByNumber(ctx context.Context, studentNumber string) (*model.Student, error)
	ListStudents(ctx context.Context, f model.StudentFilter) ([]model.Student, int64, error)
	// CreateStudent fails with ErrAlreadyRegistered when the id or student
	// number is taken.
	CreateStudent(ctx context.Context, s *model.Student) error
	SaveStudent(ctx context.Context, s *model.Student) error
}

type ScheduleStore interface {
	CreateScheduleRequest(ctx context.Context, r *model.ScheduleChangeRequest) error
	FindScheduleRequest(ctx context.Context, id string) (*model.ScheduleChangeRequest, error)
	SaveScheduleRequest(ctx context.Context, r *model.ScheduleChangeRequest) error
	ListScheduleRequests(ctx context.Context, f model.ScheduleRequestFilter) ([]model.ScheduleChangeRequest, error)
}

type AnnouncementStore interface {
	CreateAnnouncement(ctx context.Context, a *model.Announcement) error
	FindAnnouncement(ctx context.Context, id string) (*model.Announcement, error)
	SaveAnnouncement(ctx context.Context, a *model.Announcement) error
	DeleteAnnouncement(ctx context.Context, id string) error
	ListAnnouncements(ctx context.Context, f model.AnnouncementFilter) ([]model.Announcement, error)
}
