package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"ojttracker.com/ojttracker/ojt/model"
)

type Scheduler struct {
	Requests ScheduleStore
	Registry *Registry
	Now      func() time.Time
}

func (s *Scheduler) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

type ScheduleRequestInput struct {
	StudentID       string
	RequestedType   model.StudentShiftType
	RequestedConfig *model.ShiftConfig
	Reason          string
}

func (s *Scheduler) CreateScheduleRequest(ctx context.Context, in ScheduleRequestInput) (*model.ScheduleChangeRequest, error) {
	if !in.RequestedType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidShift, in.RequestedType)
	}
	cfg := DefaultShiftConfig(in.RequestedType)
	if in.RequestedConfig != nil && !in.RequestedConfig.Empty() {
		if err := ValidateShiftConfig(*in.RequestedConfig); err != nil {
			return nil, err
		}
		cfg = *in.RequestedConfig
	} else if in.RequestedType == model.StudentShiftCustom {
		return nil, fmt.Errorf("%w: custom shift needs a config", ErrInvalidShift)
	}

	student, err := s.Registry.Students.FindStudent(ctx, in.StudentID)
	if err != nil {
		return nil, err
	}

	req := &model.ScheduleChangeRequest{
		ID:                   uuid.NewString(),
		StudentID:            student.ID,
		DepartmentID:         student.Department,
		CurrentShiftType:     student.ShiftType,
		RequestedShiftType:   in.RequestedType,
		RequestedShiftConfig: datatypes.NewJSONType(cfg),
		Reason:               in.Reason,
		Status:               model.RequestPending,
		RequestedAt:          s.now(),
	}
	if err := s.Requests.CreateScheduleRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("create schedule request: %w", err)
	}
	return req, nil
}

// ReviewScheduleRequest approves or rejects a request. Approval copies the
// requested shift onto the student.
func (s *Scheduler) ReviewScheduleRequest(ctx context.Context, id string, status model.RequestStatus, comments *string, reviewer string) (*model.ScheduleChangeRequest, error) {
	if status != model.RequestApproved && status != model.RequestRejected {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	req, err := s.Requests.FindScheduleRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != model.RequestPending {
		return nil, fmt.Errorf("%w: request already %s", ErrInvalidStatus, req.Status)
	}

	if status == model.RequestApproved {
		student, err := s.Registry.Students.FindStudent(ctx, req.StudentID)
		if err != nil {
			return nil, err
		}
		student.ShiftType = req.RequestedShiftType
		student.ShiftConfig = req.RequestedShiftConfig
		if err := s.Registry.Students.SaveStudent(ctx, student); err != nil {
			return nil, fmt.Errorf("apply schedule to student %s: %w", student.ID, err)
		}
		s.Registry.Invalidate(ctx, student.ID)
	}

	reviewedAt := s.now()
	req.Status = status
	req.ReviewedAt = &reviewedAt
	req.ReviewedBy = &reviewer
	req.Comments = comments
	if err := s.Requests.SaveScheduleRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("save schedule request %s: %w", id, err)
	}
	return req, nil
}

func (s *Scheduler) ListScheduleRequests(ctx context.Context, f model.ScheduleRequestFilter) ([]model.ScheduleChangeRequest, error) {
	if f.Status != "" && f.Status != model.RequestPending && f.Status != model.RequestApproved && f.Status != model.RequestRejected {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, f.Status)
	}
	return s.Requests.ListScheduleRequests(ctx, f)
}
