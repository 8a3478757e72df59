package common

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ojttracker.com/ojttracker/ojt/model"
	"ojttracker.com/ojttracker/security"
	"ojttracker.com/ojttracker/utils"
)

var ErrForbidden = errors.New("forbidden")

// Scope is the set of students a caller may read. All means no restriction.
type Scope struct {
	All        bool
	StudentIDs []string
}

// StudentID returns the single student of the scope, or "".
func (s Scope) StudentID() string {
	if len(s.StudentIDs) == 1 {
		return s.StudentIDs[0]
	}
	return ""
}

// DepartmentOf returns the department a department user is bound to. A
// department identity without one may see nothing.
func DepartmentOf(id *security.IdentityClaims) (string, error) {
	if id.Department == "" {
		return "", ErrForbidden
	}
	return id.Department, nil
}

// OwnStudent resolves the student record behind a student identity.
func OwnStudent(ctx context.Context, t *Tenant, id *security.IdentityClaims) (*model.Student, error) {
	if id.StudentID != "" {
		return t.Registry.Profile(ctx, id.StudentID)
	}
	return t.Store.FindStudentByEmail(ctx, id.Email)
}

// ResolveScope narrows requested (optional student id) to what the caller
// may see. Students see themselves, departments their own students.
func ResolveScope(ctx context.Context, t *Tenant, id *security.IdentityClaims, requested string) (Scope, error) {
	switch id.Role {
	case security.RoleStudent:
		s, err := OwnStudent(ctx, t, id)
		if err != nil {
			return Scope{}, err
		}
		if requested != "" && requested != s.ID {
			return Scope{}, ErrForbidden
		}
		return Scope{StudentIDs: []string{s.ID}}, nil

	case security.RoleDepartment:
		department, err := DepartmentOf(id)
		if err != nil {
			return Scope{}, err
		}
		if requested != "" {
			s, err := t.Registry.Profile(ctx, requested)
			if err != nil {
				return Scope{}, err
			}
			if s.Department != department {
				return Scope{}, ErrForbidden
			}
			return Scope{StudentIDs: []string{s.ID}}, nil
		}
		students, _, err := t.Registry.ListStudents(ctx, model.StudentFilter{Department: department})
		if err != nil {
			return Scope{}, err
		}
		ids := utils.Map(students, func(s model.Student) string { return s.ID })
		return Scope{StudentIDs: ids}, nil
	}

	if requested != "" {
		return Scope{StudentIDs: []string{requested}}, nil
	}
	return Scope{All: true}, nil
}

// ParsePeriod reads date, month/year or startDate/endDate from the query.
// Both bounds are inclusive days. The current month is the default.
func ParsePeriod(c *gin.Context, loc *time.Location, now time.Time) (time.Time, time.Time, error) {
	if date := c.Query("date"); date != "" {
		d, err := utils.ParseDateIn(date, loc)
		return d, d, err
	}

	if start, end := c.Query("startDate"), c.Query("endDate"); start != "" || end != "" {
		if start == "" || end == "" {
			return time.Time{}, time.Time{}, errors.New("startDate and endDate must be given together")
		}
		from, err := utils.ParseDateIn(start, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to, err := utils.ParseDateIn(end, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, errors.New("endDate is before startDate")
		}
		return from, to, nil
	}

	year, month, err := ParseMonth(c, now.In(loc))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	from, next := utils.MonthRange(year, month, loc)
	return from, next.AddDate(0, 0, -1), nil
}

// ParseMonth reads month (1-12) and year, defaulting to the month of now.
func ParseMonth(c *gin.Context, now time.Time) (int, time.Month, error) {
	year, month := now.Year(), now.Month()
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1900 {
			return 0, 0, fmt.Errorf("invalid year %q", v)
		}
		year = y
	}
	if v := c.Query("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, fmt.Errorf("invalid month %q", v)
		}
		month = time.Month(m)
	}
	return year, month, nil
}

// Records loads the scope's records for the inclusive period.
func Records(ctx context.Context, t *Tenant, scope Scope, from, to time.Time) ([]model.AttendanceRecord, error) {
	if scope.All {
		return t.Ledger.GetRecordsForPeriod(ctx, "", from, to)
	}
	return t.Ledger.GetRecordsForStudents(ctx, scope.StudentIDs, from, to)
}
