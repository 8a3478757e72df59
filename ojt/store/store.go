// Package store persists the OJT ledger, students and schedule requests with gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	ojt "ojttracker.com/ojttracker/ojt/core"
	"ojttracker.com/ojttracker/ojt/model"
	"ojttracker.com/ojttracker/utils"
)

var (
	_ ojt.AttendanceStore   = (*Store)(nil)
	_ ojt.StudentStore      = (*Store)(nil)
	_ ojt.ScheduleStore     = (*Store)(nil)
	_ ojt.AnnouncementStore = (*Store)(nil)
)

const TableAttendance = "attendance_records"

// Store wraps a tenant-bound *gorm.DB.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Student{}, &model.AttendanceRecord{}, &model.ScheduleChangeRequest{}, &model.Announcement{})
}

func day(t time.Time) string {
	return t.Format(utils.DateLayout)
}

// UpsertClockField inserts the day's row or, on the (student_id, date) unique
// key, sets only the action's columns. The row is then re-read under a lock so
// the derived columns are computed from every field written so far.
func (s *Store) UpsertClockField(ctx context.Context, w ojt.ClockWrite, derive ojt.DeriveFunc) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	db := s.db.Session(&gorm.Session{NowFunc: func() time.Time { return w.At }})
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := model.AttendanceRecord{
			ID:        uuid.NewString(),
			StudentID: w.StudentID,
			Date:      w.Day,
			ShiftType: w.ShiftType,
			Status:    model.StatusPresent,
			CreatedAt: w.At,
			UpdatedAt: w.At,
		}
		at := w.At
		ts, img := row.Field(w.Action)
		*ts = &at
		*img = w.Image

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{w.Action.Column(), w.Action.ImageColumn(), "updated_at"}),
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("upsert %s: %w", w.Action.Column(), err)
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("student_id = ? AND date = ?", w.StudentID, day(w.Day)).
			Take(&rec).Error; err != nil {
			return fmt.Errorf("reload record: %w", err)
		}

		derive(&rec)
		return tx.Model(&rec).Select("total_hours", "undertime_minutes", "status").Updates(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) UpdateFields(ctx context.Context, id string, patch model.RecordPatch, at time.Time, derive ojt.DeriveFunc) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	db := s.db.Session(&gorm.Session{NowFunc: func() time.Time { return at }})
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ojt.ErrRecordNotFound
			}
			return err
		}
		patch.Apply(&rec)
		derive(&rec)
		return tx.Save(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ojt.ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (s *Store) FindForPeriod(ctx context.Context, q model.PeriodQuery) ([]model.AttendanceRecord, error) {
	query := s.db.WithContext(ctx).Model(&model.AttendanceRecord{})
	if !q.From.IsZero() {
		query = query.Where("date >= ?", day(q.From))
	}
	if !q.To.IsZero() {
		query = query.Where("date < ?", day(q.To))
	}
	if q.StudentID != "" {
		query = query.Where("student_id = ?", q.StudentID)
	}
	if len(q.StudentIDs) > 0 {
		query = query.Where("student_id IN ?", q.StudentIDs)
	}

	var records []model.AttendanceRecord
	if err := query.Order("date ASC").Order("student_id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time, dryRun bool) (int64, error) {
	query := s.db.WithContext(ctx).Where("date < ?", day(cutoff))
	if dryRun {
		var n int64
		err := query.Model(&model.AttendanceRecord{}).Count(&n).Error
		return n, err
	}
	result := query.Delete(&model.AttendanceRecord{})
	return result.RowsAffected, result.Error
}

func (s *Store) FindStudent(ctx context.Context, id string) (*model.Student, error) {
	var st model.Student
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ojt.ErrStudentNotFound
		}
		return nil, err
	}
	return &st, nil
}

func (s *Store) FindStudentByEmail(ctx context.Context, email string) (*model.Student, error) {
	var st model.Student
	if err := s.db.WithContext(ctx).Where("user_email = ?", email).Order("created_at").Take(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ojt.ErrStudentNotFound
		}
		return nil, err
	}
	return &st, nil
}

func (s *Store) FindStudentByNumber(ctx context.Context, studentNumber string) (*model.Student, error) {
	var st model.Student
	if err := s.db.WithContext(ctx).Where("student_number = ?", studentNumber).Take(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ojt.ErrStudentNotFound
		}
		return nil, err
	}
	return &st, nil
}

func (s *Store) ListStudents(ctx context.Context, f model.StudentFilter) ([]model.Student, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Student{})
	if f.Department != "" {
		query = query.Where("department = ?", f.Department)
	}
	if f.AdvisorID != "" {
		query = query.Where("ojt_advisor_id = ?", f.AdvisorID)
	}
	if f.Accepted != nil {
		query = query.Where("is_accepted = ?", *f.Accepted)
	}
	if f.Active != nil {
		query = query.Where("is_active = ?", *f.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 1000
	}
	var students []model.Student
	if err := query.Order("last_name ASC").Order("first_name ASC").
		Limit(limit).Offset(f.Offset).Find(&students).Error; err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (s *Store) CreateStudent(ctx context.Context, st *model.Student) error {
	if err := s.db.WithContext(ctx).Create(st).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ojt.ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

func (s *Store) SaveStudent(ctx context.Context, st *model.Student) error {
	return s.db.WithContext(ctx).Save(st).Error
}

// UpsertStudents imports a roster keyed by student number. Approval and shift
// settings of students that already exist are left alone.
func (s *Store) UpsertStudents(ctx context.Context, students []model.Student) error {
	if len(students) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_number"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_email", "first_name", "last_name", "middle_name", "department", "host_establishment", "updated_at",
		}),
	}).CreateInBatches(students, 100).Error
}

func (s *Store) CreateScheduleRequest(ctx context.Context, r *model.ScheduleChangeRequest) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *Store) FindScheduleRequest(ctx context.Context, id string) (*model.ScheduleChangeRequest, error) {
	var r model.ScheduleChangeRequest
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ojt.ErrRequestNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *Store) SaveScheduleRequest(ctx context.Context, r *model.ScheduleChangeRequest) error {
	return s.db.WithContext(ctx).Save(r).Error
}

func (s *Store) ListScheduleRequests(ctx context.Context, f model.ScheduleRequestFilter) ([]model.ScheduleChangeRequest, error) {
	query := s.db.WithContext(ctx).Model(&model.ScheduleChangeRequest{})
	if f.StudentID != "" {
		query = query.Where("student_id = ?", f.StudentID)
	}
	if f.DepartmentID != "" {
		query = query.Where("department_id = ?", f.DepartmentID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}

	var requests []model.ScheduleChangeRequest
	if err := query.Order("requested_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *Store) CreateAnnouncement(ctx context.Context, a *model.Announcement) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *Store) FindAnnouncement(ctx context.Context, id string) (*model.Announcement, error) {
	var a model.Announcement
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ojt.ErrAnnouncementNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *Store) SaveAnnouncement(ctx context.Context, a *model.Announcement) error {
	return s.db.WithContext(ctx).Save(a).Error
}

func (s *Store) DeleteAnnouncement(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Announcement{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ojt.ErrAnnouncementNotFound
	}
	return nil
}

func (s *Store) ListAnnouncements(ctx context.Context, f model.AnnouncementFilter) ([]model.Announcement, error) {
	query := s.db.WithContext(ctx).Model(&model.Announcement{})
	switch {
	case f.Audience == nil:
	case *f.Audience == "":
		query = query.Where("is_for_all = ?", true)
	default:
		query = query.Where("is_for_all = ? OR department = ?", true, *f.Audience)
	}
	if f.Active != nil {
		query = query.Where("is_active = ?", *f.Active)
	}

	var announcements []model.Announcement
	if err := query.Order("created_at DESC").Find(&announcements).Error; err != nil {
		return nil, err
	}
	return announcements, nil
}
