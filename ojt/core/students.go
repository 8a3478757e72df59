package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"ojttracker.com/ojttracker/ojt/model"
)

// ProfileCache is a best-effort read-through cache for student profiles.
type ProfileCache interface {
	Load(ctx context.Context, key string, dst any) bool
	Store(ctx context.Context, key string, v any)
	Delete(ctx context.Context, key string)
}

type ApprovalNotifier interface {
	StudentApproved(ctx context.Context, s *model.Student) error
}

// Registry owns student registration state for one tenant.
type Registry struct {
	Students StudentStore
	Cache    ProfileCache
	Notifier ApprovalNotifier
	// Tenant namespaces cache keys.
	Tenant string
	Now    func() time.Time
}

func (r *Registry) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Registry) cacheKey(id string) string {
	return fmt.Sprintf("ojt:%s:student:%s", r.Tenant, id)
}

// Profile loads a student, consulting the cache first.
func (r *Registry) Profile(ctx context.Context, id string) (*model.Student, error) {
	if r.Cache != nil {
		var cached model.Student
		if r.Cache.Load(ctx, r.cacheKey(id), &cached) {
			return &cached, nil
		}
	}
	s, err := r.Students.FindStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Cache != nil {
		r.Cache.Store(ctx, r.cacheKey(id), s)
	}
	return s, nil
}

func (r *Registry) Invalidate(ctx context.Context, id string) {
	if r.Cache != nil {
		r.Cache.Delete(ctx, r.cacheKey(id))
	}
}

// ClockingStudent resolves the student behind an identity and applies the
// approval gate. studentID wins over email when both are present.
func (r *Registry) ClockingStudent(ctx context.Context, studentID, email string) (*model.Student, error) {
	var (
		s   *model.Student
		err error
	)
	switch {
	case studentID != "":
		s, err = r.Profile(ctx, studentID)
	case email != "":
		s, err = r.Students.FindStudentByEmail(ctx, email)
	default:
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	if !s.CanClock() {
		return nil, ErrNotApproved
	}
	return s, nil
}

// Registration is a student's own sign-up. StudentID may carry an id the
// identity provider already assigned.
type Registration struct {
	StudentID         string
	Email             string
	StudentNumber     string
	FirstName         string
	LastName          string
	MiddleName        *string
	Department        string
	HostEstablishment *string
	ShiftType         model.StudentShiftType
	ShiftConfig       *model.ShiftConfig
}

// Register creates a pending student. The approval gate keeps the student
// from clocking until ApproveStudent.
func (r *Registry) Register(ctx context.Context, in Registration) (*model.Student, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.StudentNumber = strings.TrimSpace(in.StudentNumber)
	if in.Email == "" || in.StudentNumber == "" || in.Department == "" {
		return nil, fmt.Errorf("%w: email, student number and department are required", ErrInvalidRegistration)
	}

	if in.ShiftType == "" {
		in.ShiftType = model.StudentShiftRegular
	}
	if !in.ShiftType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidShift, in.ShiftType)
	}
	var cfg model.ShiftConfig
	if in.ShiftConfig != nil && !in.ShiftConfig.Empty() {
		if err := ValidateShiftConfig(*in.ShiftConfig); err != nil {
			return nil, err
		}
		cfg = *in.ShiftConfig
	} else if in.ShiftType == model.StudentShiftCustom {
		return nil, fmt.Errorf("%w: custom shift needs a config", ErrInvalidShift)
	}

	if _, err := r.Students.FindStudentByEmail(ctx, in.Email); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, in.Email)
	} else if !errors.Is(err, ErrStudentNotFound) {
		return nil, err
	}
	if _, err := r.Students.FindStudentByNumber(ctx, in.StudentNumber); err == nil {
		return nil, fmt.Errorf("%w: student number %s", ErrAlreadyRegistered, in.StudentNumber)
	} else if !errors.Is(err, ErrStudentNotFound) {
		return nil, err
	}

	id := in.StudentID
	if id == "" {
		id = uuid.NewString()
	}
	now := r.now()
	s := &model.Student{
		ID:                id,
		UserEmail:         in.Email,
		StudentNumber:     in.StudentNumber,
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		MiddleName:        in.MiddleName,
		Department:        in.Department,
		HostEstablishment: in.HostEstablishment,
		ShiftType:         in.ShiftType,
		ShiftConfig:       datatypes.NewJSONType(cfg),
		IsAccepted:        false,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := r.Students.CreateStudent(ctx, s); err != nil {
		return nil, fmt.Errorf("register student %s: %w", in.StudentNumber, err)
	}
	slog.InfoContext(ctx, "student registered", "studentId", s.ID, "department", s.Department, "tenant", r.Tenant)
	return s, nil
}

func (r *Registry) ListStudents(ctx context.Context, f model.StudentFilter) ([]model.Student, int64, error) {
	return r.Students.ListStudents(ctx, f)
}

// ApproveStudent accepts a pending registration. A failed notification is
// logged and does not undo the approval.
func (r *Registry) ApproveStudent(ctx context.Context, id string, advisorID *string) (*model.Student, error) {
	s, err := r.Students.FindStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	wasAccepted := s.IsAccepted
	s.IsAccepted = true
	if advisorID != nil && *advisorID != "" {
		s.OjtAdvisorID = advisorID
	}
	if err := r.Students.SaveStudent(ctx, s); err != nil {
		return nil, fmt.Errorf("approve student %s: %w", id, err)
	}
	r.Invalidate(ctx, id)

	if !wasAccepted && r.Notifier != nil {
		if err := r.Notifier.StudentApproved(ctx, s); err != nil {
			slog.ErrorContext(ctx, "approval notification failed", "studentId", id, "error", err)
		}
	}
	return s, nil
}

// IsNotFound reports whether err is any of the lookup misses.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStudentNotFound) || errors.Is(err, ErrRecordNotFound) ||
		errors.Is(err, ErrRequestNotFound) || errors.Is(err, ErrAnnouncementNotFound)
}
