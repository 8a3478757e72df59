// Package inmem is a process-local store with the same semantics as the gorm
// store. It backs tests and the "inmem" database driver.
package inmem

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

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

type Store struct {
	mu       sync.Mutex
	records  map[string]*model.AttendanceRecord
	byDay    map[string]string
	students map[string]*model.Student
	requests map[string]*model.ScheduleChangeRequest
	notices  map[string]*model.Announcement
}

func New() *Store {
	return &Store{
		records:  map[string]*model.AttendanceRecord{},
		byDay:    map[string]string{},
		students: map[string]*model.Student{},
		requests: map[string]*model.ScheduleChangeRequest{},
		notices:  map[string]*model.Announcement{},
	}
}

func dayKey(studentID string, day time.Time) string {
	return studentID + "|" + day.Format(utils.DateLayout)
}

func (s *Store) UpsertClockField(_ context.Context, w ojt.ClockWrite, derive ojt.DeriveFunc) (*model.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey(w.StudentID, w.Day)
	rec, ok := s.records[s.byDay[key]]
	if !ok {
		rec = &model.AttendanceRecord{
			ID:        uuid.NewString(),
			StudentID: w.StudentID,
			Date:      w.Day,
			ShiftType: w.ShiftType,
			Status:    model.StatusPresent,
			CreatedAt: w.At,
		}
		s.records[rec.ID] = rec
		s.byDay[key] = rec.ID
	}

	at := w.At
	ts, img := rec.Field(w.Action)
	*ts = &at
	*img = w.Image
	rec.UpdatedAt = w.At
	derive(rec)

	out := *rec
	return &out, nil
}

func (s *Store) UpdateFields(_ context.Context, id string, patch model.RecordPatch, at time.Time, derive ojt.DeriveFunc) (*model.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ojt.ErrRecordNotFound
	}
	patch.Apply(rec)
	derive(rec)
	rec.UpdatedAt = at

	out := *rec
	return &out, nil
}

func (s *Store) FindByID(_ context.Context, id string) (*model.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ojt.ErrRecordNotFound
	}
	out := *rec
	return &out, nil
}

func (s *Store) FindForPeriod(_ context.Context, q model.PeriodQuery) ([]model.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.AttendanceRecord
	for _, rec := range s.records {
		if q.StudentID != "" && rec.StudentID != q.StudentID {
			continue
		}
		if len(q.StudentIDs) > 0 && !utils.Contains(q.StudentIDs, rec.StudentID) {
			continue
		}
		if !q.From.IsZero() && rec.Date.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && !rec.Date.Before(q.To) {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StudentID < out[j].StudentID
	})
	return out, nil
}

func (s *Store) DeleteBefore(_ context.Context, cutoff time.Time, dryRun bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, rec := range s.records {
		if !rec.Date.Before(cutoff) {
			continue
		}
		n++
		if !dryRun {
			delete(s.records, id)
			delete(s.byDay, dayKey(rec.StudentID, rec.Date))
		}
	}
	return n, nil
}

func (s *Store) FindStudent(_ context.Context, id string) (*model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.students[id]
	if !ok {
		return nil, ojt.ErrStudentNotFound
	}
	out := *st
	return &out, nil
}

func (s *Store) FindStudentByEmail(_ context.Context, email string) (*model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.students {
		if strings.EqualFold(st.UserEmail, email) {
			out := *st
			return &out, nil
		}
	}
	return nil, ojt.ErrStudentNotFound
}

func (s *Store) FindStudentByNumber(_ context.Context, studentNumber string) (*model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.students {
		if st.StudentNumber == studentNumber {
			out := *st
			return &out, nil
		}
	}
	return nil, ojt.ErrStudentNotFound
}

func (s *Store) ListStudents(_ context.Context, f model.StudentFilter) ([]model.Student, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Student
	for _, st := range s.students {
		if f.Department != "" && st.Department != f.Department {
			continue
		}
		if f.AdvisorID != "" && utils.Deref(st.OjtAdvisorID) != f.AdvisorID {
			continue
		}
		if f.Accepted != nil && st.IsAccepted != *f.Accepted {
			continue
		}
		if f.Active != nil && st.IsActive != *f.Active {
			continue
		}
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})

	total := int64(len(out))
	if f.Offset > 0 {
		out = out[min(f.Offset, len(out)):]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (s *Store) CreateStudent(_ context.Context, st *model.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.students[st.ID]; ok {
		return ojt.ErrAlreadyRegistered
	}
	for _, other := range s.students {
		if other.StudentNumber == st.StudentNumber {
			return ojt.ErrAlreadyRegistered
		}
	}
	cp := *st
	s.students[st.ID] = &cp
	return nil
}

func (s *Store) SaveStudent(_ context.Context, st *model.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *st
	s.students[st.ID] = &cp
	return nil
}

func (s *Store) CreateScheduleRequest(_ context.Context, r *model.ScheduleChangeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *r
	s.requests[r.ID] = &cp
	return nil
}

func (s *Store) FindScheduleRequest(_ context.Context, id string) (*model.ScheduleChangeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, ojt.ErrRequestNotFound
	}
	out := *r
	return &out, nil
}

func (s *Store) SaveScheduleRequest(_ context.Context, r *model.ScheduleChangeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[r.ID]; !ok {
		return ojt.ErrRequestNotFound
	}
	cp := *r
	s.requests[r.ID] = &cp
	return nil
}

func (s *Store) ListScheduleRequests(_ context.Context, f model.ScheduleRequestFilter) ([]model.ScheduleChangeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.ScheduleChangeRequest
	for _, r := range s.requests {
		if f.StudentID != "" && r.StudentID != f.StudentID {
			continue
		}
		if f.DepartmentID != "" && r.DepartmentID != f.DepartmentID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RequestedAt.After(out[j].RequestedAt)
	})
	return out, nil
}

func (s *Store) CreateAnnouncement(_ context.Context, a *model.Announcement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *a
	s.notices[a.ID] = &cp
	return nil
}

func (s *Store) FindAnnouncement(_ context.Context, id string) (*model.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.notices[id]
	if !ok {
		return nil, ojt.ErrAnnouncementNotFound
	}
	out := *a
	return &out, nil
}

func (s *Store) SaveAnnouncement(_ context.Context, a *model.Announcement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notices[a.ID]; !ok {
		return ojt.ErrAnnouncementNotFound
	}
	cp := *a
	s.notices[a.ID] = &cp
	return nil
}

func (s *Store) DeleteAnnouncement(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notices[id]; !ok {
		return ojt.ErrAnnouncementNotFound
	}
	delete(s.notices, id)
	return nil
}

func (s *Store) ListAnnouncements(_ context.Context, f model.AnnouncementFilter) ([]model.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Announcement
	for _, a := range s.notices {
		if f.Audience != nil && !a.Visible(*f.Audience) {
			continue
		}
		if f.Active != nil && a.IsActive != *f.Active {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Len reports how many attendance records are stored.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
