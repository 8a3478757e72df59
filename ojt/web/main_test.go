package main

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ojt "ojttracker.com/ojttracker/ojt/core"
	"ojttracker.com/ojttracker/ojt/model"
	"ojttracker.com/ojttracker/ojt/report"
	"ojttracker.com/ojttracker/ojt/store/inmem"
	"ojttracker.com/ojttracker/ojt/web/common"
	"ojttracker.com/ojttracker/security"
	"ojttracker.com/ojttracker/utils"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

var (
	juan    = security.Identity{UserID: "u-1", Email: "juan@example.net", Role: security.RoleStudent, StudentID: "s-1"}
	maria   = security.Identity{UserID: "u-2", Email: "maria@example.net", Role: security.RoleStudent}
	ccsDept = security.Identity{UserID: "u-10", Email: "ccs@example.net", Role: security.RoleDepartment, Department: "CCS"}
	cbaDept = security.Identity{UserID: "u-11", Email: "cba@example.net", Role: security.RoleDepartment, Department: "CBA"}
	admin   = security.Identity{UserID: "u-20", Email: "admin@example.net", Role: security.RoleAdmin}
	root    = security.Identity{UserID: "u-30", Email: "root@example.net", Role: security.RoleSuperAdmin}
)

type recordingNotifier struct {
	mu       sync.Mutex
	approved []string
}

func (n *recordingNotifier) StudentApproved(_ context.Context, s *model.Student) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approved = append(n.approved, s.ID)
	return nil
}

type fixture struct {
	router   *gin.Engine
	mem      *inmem.Store
	notifier *recordingNotifier
	now      time.Time
}

func at(day, hour, minute int) time.Time {
	return time.Date(2025, 3, day, hour, minute, 0, 0, utils.ManilaTZ)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{mem: inmem.New(), notifier: &recordingNotifier{}, now: at(3, 8, 0)}
	base := &common.Handler{
		Mem:           f.mem,
		Now:           func() time.Time { return f.now },
		Loc:           utils.ManilaTZ,
		Notifier:      f.notifier,
		RetentionDays: 365,
	}
	f.router = NewRouter(base, testSecret)

	ctx := context.Background()
	for _, s := range []model.Student{
		{ID: "s-1", UserEmail: juan.Email, StudentNumber: "2021-0001", FirstName: "Juan", LastName: "Cruz", Department: "CCS", ShiftType: model.StudentShiftRegular, IsAccepted: true, IsActive: true},
		{ID: "s-2", UserEmail: maria.Email, StudentNumber: "2021-0002", FirstName: "Maria", LastName: "Santos", Department: "CCS", ShiftType: model.StudentShiftRegular, IsActive: true},
		{ID: "s-3", UserEmail: "pedro@example.net", StudentNumber: "2021-0003", FirstName: "Pedro", LastName: "Reyes", Department: "CBA", ShiftType: model.StudentShiftRegular, IsAccepted: true, IsActive: true},
	} {
		require.NoError(t, f.mem.SaveStudent(ctx, &s))
	}
	return f
}

func token(t *testing.T, id security.Identity) string {
	t.Helper()
	tok, err := security.CreateIdentityToken(id, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func (f *fixture) send(t *testing.T, req *http.Request, id *security.Identity) *httptest.ResponseRecorder {
	t.Helper()
	if id != nil {
		req.Header.Set("Authorization", "Bearer "+token(t, *id))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) do(t *testing.T, method, path string, id *security.Identity, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return f.send(t, req, id)
}

func (f *fixture) clock(t *testing.T, id security.Identity, action string, when time.Time) *httptest.ResponseRecorder {
	t.Helper()
	f.now = when
	return f.do(t, http.MethodPost, "/api/ojt/v1/attendance/clock", &id, gin.H{"action": action})
}

type envelope[T any] struct {
	Data       T      `json:"data"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Pagination struct {
		Total int64 `json:"total"`
		Limit int   `json:"limit"`
	} `json:"pagination"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var out envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestPing(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/ping", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pong")
}

func TestClockFullDay(t *testing.T) {
	f := newFixture(t)

	rec := f.clock(t, juan, "morningIn", at(3, 8, 0))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode[ClockResponseView](t, rec).Data
	assert.True(t, first.ServerTime.Equal(at(3, 8, 0)))
	require.NotNil(t, first.Record.MorningIn)
	assert.True(t, first.Record.MorningIn.Equal(at(3, 8, 0)))
	assert.Equal(t, model.ShiftRegular, first.Record.ShiftType)

	f.clock(t, juan, "morningOut", at(3, 12, 0))
	f.clock(t, juan, "afternoonIn", at(3, 13, 0))
	rec = f.clock(t, juan, "afternoonOut", at(3, 17, 5))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	last := decode[ClockResponseView](t, rec).Data
	assert.Equal(t, first.Record.ID, last.Record.ID)
	assert.Equal(t, 8.08, last.Record.TotalHours)
	assert.Equal(t, model.StatusPresent, last.Record.Status)
	assert.Equal(t, 0, last.Record.UndertimeMinutes)
	assert.Equal(t, 1, f.mem.Len())
}

// ClockResponseView mirrors the clock response for decoding.
type ClockResponseView struct {
	Record     model.AttendanceRecord `json:"record"`
	ServerTime time.Time              `json:"serverTime"`
}

func TestClockRejections(t *testing.T) {
	f := newFixture(t)

	rec := f.clock(t, juan, "lunchIn", at(3, 8, 0))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid action", decode[any](t, rec).Message)

	rec = f.clock(t, maria, "morningIn", at(3, 8, 0))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "account pending approval", decode[any](t, rec).Message)

	rec = f.clock(t, admin, "morningIn", at(3, 8, 0))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/ojt/v1/attendance/clock", nil, gin.H{"action": "morningIn"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/ojt/v1/attendance/clock", &juan, gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	failed := decode[any](t, rec)
	assert.Equal(t, "Field 'action' is required", failed.Message)
	assert.Equal(t, http.StatusBadRequest, failed.Code)

	assert.Equal(t, 0, f.mem.Len())
}

func TestClockWithUploadedPhoto(t *testing.T) {
	f := newFixture(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("action", "morningIn"))
	part, err := w.CreateFormFile("photo", "selfie.png")
	require.NoError(t, err)
	_, err = part.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ojt/v1/attendance/clock", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := f.send(t, req, &juan)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode[ClockResponseView](t, rec).Data
	require.NotNil(t, out.Record.MorningInImage)
	assert.Equal(t, "data:image/png;base64,iVBORw==", *out.Record.MorningInImage)

	rec = f.do(t, http.MethodGet, "/api/ojt/v1/attendance/"+out.Record.ID+"/proof/morningIn", &juan, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, rec.Body.Bytes())

	rec = f.do(t, http.MethodGet, "/api/ojt/v1/attendance/"+out.Record.ID+"/proof/morningOut", &juan, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchIsScoped(t *testing.T) {
	f := newFixture(t)
	f.clock(t, juan, "morningIn", at(3, 8, 0))
	pedro := security.Identity{UserID: "u-3", Email: "pedro@example.net", Role: security.RoleStudent, StudentID: "s-3"}
	f.clock(t, pedro, "morningIn", at(3, 8, 5))

	rec := f.do(t, http.MethodGet, "/api/ojt/v1/attendance?date=2025-03-03", &juan, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[[]model.AttendanceRecord](t, rec)
	require.Len(t, mine.Data, 1)
	assert.Equal(t, "s-1", mine.Data[0].StudentID)

	rec = f.do(t, http.MethodGet, "/api/ojt/v1/attendance?date=2025-03-03&studentId=s-3", &juan, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/ojt/v1/attendance?month=3&year=2025", &ccsDept, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ccs := decode[[]model.AttendanceRecord](t, rec)
	require.Len(t, ccs.Data, 1)
	assert.Equal(t, "s-1", ccs.Data[0].StudentID)

	rec = f.do(t, http.MethodGet, "/api/ojt/v1/attendance?studentId=s-1", &cbaDept, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/ojt/v1/attendance?startDate=2025-03-01&endDate=2025-03-31", &admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), decode[[]model.AttendanceRecord](t, rec).Pagination.Total)

	rec = f.do(t, http.MethodGet, "/api/ojt/v1/attendance?date=2025-02-30", &admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/ojt/v1/attendance?date=2025-03-04", &admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(mustRaw(t, rec)))
}

func TestDepartmentWithoutDepartmentSeesNothing(t *testing.T) {
	f := newFixture(t)
	f.clock(t, juan, "morningIn", at(3, 8, 0))

	claims := security.IdentityClaims{
		Identity: security.Identity{UserID: "u-12", Email: "nodept@example.net", Role: security.RoleDepartment},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    security.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	for _, path := range []string{
		"/api/ojt/v1/students",
		"/api/ojt/v1/attendance?date=2025-03-03",
		"/api/ojt/v1/schedule-requests",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rec := f.send(t, req, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func mustRaw(t *testing.T, rec *httptest.ResponseRecorder) json.RawMessage {
	t.Helper()
	return decode[json.RawMessage](t, rec).Data
}

func TestUpdateRecord(t *testing.T) {
	f := newFixture(t)
	f.clock(t, juan, "morningIn", at(3, 8, 0))
	rec := f.clock(t, juan, "morningOut", at(3, 12, 0))
	id := decode[ClockResponseView](t, rec).Data.Record.ID

	f.now = at(3, 18, 0)
	rec = f.do(t, http.MethodPut, "/api/ojt/v1/attendance/"+id, &admin, gin.H{
		"times": gin.H{
			"afternoonIn":  at(3, 13, 0),
			"afternoonOut": at(3, 17, 0),
		},
		"remarks": "device offline",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[model.AttendanceRecord](t, rec).Data
	assert.Equal(t, 8.0, updated.TotalHours)
	assert.Equal(t, "device offline", utils.Deref(updated.Remarks))
	assert.Equal(t, model.StatusPresent, updated.Status)

	rec = f.do(t, http.MethodPut, "/api/ojt/v1/attendance/"+id, &admin, gin.H{"clear": []string{"afternoonOut"}})
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := decode[model.AttendanceRecord](t, rec).Data
	assert.Nil(t, cleared.AfternoonOut)
	assert.Equal(t, 4.0, cleared.TotalHours)
	assert.Equal(t, 240, cleared.UndertimeMinutes)

	rec = f.do(t, http.MethodPut, "/api/ojt/v1/attendance/"+id, &admin, gin.H{"clear": []string{"nap"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/ojt/v1/attendance/missing", &admin, gin.H{"remarks": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/ojt/v1/attendance/"+id, &cbaDept, gin.H{"remarks": "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/ojt/v1/attendance/"+id, &juan, gin.H{"remarks": "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestApproveStudentOpensGate(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/ojt/v1/students?accepted=false&limit=5", &ccsDept, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pending := decode[[]model.Student](t, rec)
	require.Len(t, pending.Data, 1)
	assert.Equal(t, 5, pending.Pagination.Limit)
	assert.Equal(t, "s-2", pending.Data[0].ID)

	rec = f.do(t, http.MethodPut, "/api/ojt/v1/students/s-2/approve", &cbaDept, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/ojt/v1/students/s-2/approve", &ccsDept, gin.H{"advisorId": "u-10"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	approved := decode[model.Student](t, rec).Data
	assert.True(t, approved.IsAccepted)
	assert.Equal(t, "u-10", utils.Deref(approved.OjtAdvisorID))
	assert.Equal(t, []string{"s-2"}, f.notifier.approved)

	rec = f.clock(t, maria, "morningIn", at(3, 8, 0))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/ojt/v1/students/me", &maria, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s-2", decode[model.Student](t, rec).Data.ID)

	rec = f.do(t, http.MethodPut, "/api/ojt/v1/students/missing/approve", &admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterThenApprove(t *testing.T) {
	f := newFixture(t)
	lea := security.Identity{UserID: "u-4", Email: "lea@example.net", Role: security.RoleStudent}

	rec := f.do(t, http.MethodPost, "/api/ojt/v1/students/register", &lea, gin.H{"firstName": "Lea"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := gin.H{
		"studentNumber": "2022-0100",
		"firstName":     "Lea",
		"lastName":      "Garcia",
		"department":    "CCS",
	}
	rec = f.do(t, http.MethodPost, "/api/ojt/v1/students/register", &lea, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	registered := decode[model.Student](t, rec).Data
	assert.False(t, registered.IsAccepted)
	assert.Equal(t, "lea@example.net", registered.UserEmail)

	rec = f.do(t, http.MethodPost, "/api/ojt/v1/students/register", &lea, body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/ojt/v1/students/register", &admin, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.clock(t, lea, "morningIn", at(3, 8, 0))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/ojt/v1/students/"+registered.ID+"/approve", &ccsDept, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.clock(t, lea, "morningIn", at(3, 8, 0))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAnnouncements(t *testing.T) {
	f := newFixture(t)
	pedro := security.Identity{UserID: "u-3", Email: "pedro@example.net", Role: security.RoleStudent, StudentID: "s-3"}

	rec := f.do(t, http.MethodPost, "/api/ojt/v1/announcements", &juan, gin.H{"title": "x", "content": "y", "isForAll": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/ojt/v1/announcements", &ccsDept, gin.H{"title": "Everyone", "content": "y", "isForAll": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	f.now = at(3, 8, 0)
	rec = f.do(t, http.MethodPost, "/api/ojt/v1/announcements", &admin, gin.H{"title": "Campus holiday", "content": "No duty on Friday", "isForAll": true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	holiday := decode[model.Announcement](t, rec).Data

	f.now = at(3, 9, 0)
	rec = f.do(t, http.MethodPost, "/api/ojt/v1/announcements", &ccsDept, gin.H{"title": "CCS orientation", "content": "Room 301", "department": "CBA"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	orientation := decode[model.Announcement](t, rec).Data
	assert.Equal(t, "CCS", orientation.Department)
	assert.Equal(t, "u-10", orientation.PostedBy)

	titles := func(id security.Identity) []string {
		t.Helper()
		rec := f.do(t, http.MethodGet, "/api/ojt/v1/announcements", &id, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return utils.Map(decode[[]model.Announcement](t, rec).Data, func(a model.Announcement) string { return a.Title })
	}
	assert.Equal(t, []string{"CCS orientation", "Campus holiday"}, titles(juan))
	assert.Equal(t, []string{"Campus holiday"}, titles(pedro))
	assert.Equal(t, []string{"Campus holiday"}, titles(cbaDept))

	rec = f.do(t, http.MethodPut, "/api/ojt/v1/announcements/"+holiday.ID, &ccsDept, gin.H{"title": "Mine now"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/ojt/v1/announcements/"+orientation.ID, &ccsDept, gin.H{"isActive": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"Campus holiday"}, titles(juan))

	rec = f.do(t, http.MethodDelete, "/api/ojt/v1/announcements/"+orientation.ID, &cbaDept, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/ojt/v1/announcements/"+orientation.ID, &ccsDept, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/ojt/v1/announcements/"+orientation.ID, &admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScheduleRequestLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/ojt/v1/schedule-requests", &juan, gin.H{
		"requestedShiftType": "graveyard",
		"reason":             "night operations rotation",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	req := decode[model.ScheduleChangeRequest](t, rec).Data
	assert.Equal(t, model.RequestPending, req.Status)
	assert.Equal(t, "s-1", req.StudentID)
	assert.Equal(t, "22:00", req.RequestedShiftConfig.Data().EveningStart)

	rec = f.do(t, http.MethodPost, "/api/ojt/v1/schedule-requests", &juan, gin.H{
		"requestedShiftType": "siesta",
		"reason":             "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/ojt/v1/schedule-requests?status=pending", &ccsDept, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[[]model.ScheduleChangeRequest](t, rec).Pagination.Total)

	rec = f.do(t, http.MethodPut, "/api/ojt/v1/schedule-requests/"+req.ID, &cbaDept, gin.H{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/ojt/v1/schedule-requests/"+req.ID, &ccsDept, gin.H{"status": "approved", "comments": "ok"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reviewed := decode[model.ScheduleChangeRequest](t, rec).Data
	assert.Equal(t, model.RequestApproved, reviewed.Status)
	assert.Equal(t, "u-10", utils.Deref(reviewed.ReviewedBy))

	rec = f.do(t, http.MethodPut, "/api/ojt/v1/schedule-requests/"+req.ID, &ccsDept, gin.H{"status": "rejected"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	student, err := f.mem.FindStudent(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, model.StudentShiftGraveyard, student.ShiftType)

	rec = f.clock(t, juan, "eveningIn", at(3, 22, 0))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.ShiftGraveyard, decode[ClockResponseView](t, rec).Data.Record.ShiftType)
}

func TestReports(t *testing.T) {
	f := newFixture(t)
	f.clock(t, juan, "morningIn", at(3, 8, 0))
	f.clock(t, juan, "morningOut", at(3, 12, 0))

	rec := f.do(t, http.MethodGet, "/api/ojt/v1/reports/dtr?month=3&year=2025", &juan, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dtr := decode[report.DTR](t, rec).Data
	assert.Equal(t, "Cruz, Juan", dtr.Name)
	assert.Equal(t, "08:00-12:00, 13:00-17:00", dtr.OfficialHours)
	require.Len(t, dtr.Rows, 31)
	assert.Equal(t, "08:00 AM", dtr.Rows[2].AMArrival)
	assert.Equal(t, 4.0, dtr.TotalHours)

	rec = f.do(t, http.MethodGet, "/api/ojt/v1/reports/dtr?month=3&year=2025&format=xlsx&studentId=s-1", &admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, xlsxContentTypeForTest, rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "DTR-2021-0001-2025-03.xlsx")

	rec = f.do(t, http.MethodGet, "/api/ojt/v1/reports/dtr?month=3&year=2025", &admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/ojt/v1/reports/dtr?month=13", &juan, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/ojt/v1/reports/attendance.csv?startDate=2025-03-01&endDate=2025-03-31", &admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(report.AttendanceCSVHeader, ","), strings.TrimSpace(lines[0]))
	assert.True(t, strings.HasPrefix(lines[1], "2025-03-03,08:00 AM,12:00 PM"))
}

const xlsxContentTypeForTest = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func TestRetention(t *testing.T) {
	f := newFixture(t)
	f.clock(t, juan, "morningIn", time.Date(2025, 1, 6, 8, 0, 0, 0, utils.ManilaTZ))
	f.clock(t, juan, "morningIn", at(3, 8, 0))
	require.Equal(t, 2, f.mem.Len())

	rec := f.do(t, http.MethodDelete, "/api/ojt/v1/attendance/retention?days=30", &admin, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/ojt/v1/attendance/retention?days=30&dryRun=true", &root, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dry := decode[ojt.RetentionResult](t, rec).Data
	assert.Equal(t, int64(1), dry.Deleted)
	assert.True(t, dry.DryRun)
	assert.Equal(t, 2, f.mem.Len())

	rec = f.do(t, http.MethodDelete, "/api/ojt/v1/attendance/retention?days=30", &root, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[ojt.RetentionResult](t, rec).Data.Deleted)
	assert.Equal(t, 1, f.mem.Len())

	rec = f.do(t, http.MethodDelete, "/api/ojt/v1/attendance/retention?days=-1", &root, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
