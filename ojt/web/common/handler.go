package common

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ojttracker.com/ojttracker/core"
	"ojttracker.com/ojttracker/infrastructure/communication"
	"ojttracker.com/ojttracker/infrastructure/filesystem"
	ojt "ojttracker.com/ojttracker/ojt/core"
	"ojttracker.com/ojttracker/ojt/store"
	"ojttracker.com/ojttracker/utils"
	web "ojttracker.com/ojttracker/web/common"
)

// Store is everything a tenant database offers the OJT services.
type Store interface {
	ojt.AttendanceStore
	ojt.StudentStore
	ojt.ScheduleStore
	ojt.AnnouncementStore
}

// Tenant holds the services bound to one tenant for the life of a request.
type Tenant struct {
	Name      string
	Store     Store
	Ledger    *ojt.Ledger
	Registry  *ojt.Registry
	Scheduler *ojt.Scheduler
	Board     *ojt.Board
}

type Handler struct {
	// Dm is used when set, otherwise the process-wide manager is opened on
	// first use. Mem replaces both with an in-memory store.
	Dm  *core.DatabaseManager
	Mem Store

	Now      func() time.Time
	Loc      *time.Location
	Cache    ojt.ProfileCache
	Notifier ojt.ApprovalNotifier
	Proofs   filesystem.ProofStore
	Slack    *communication.Slack

	RetentionDays int
}

func GetHostname(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func (h *Handler) Location() *time.Location {
	if h.Loc == nil {
		return utils.ManilaTZ
	}
	return h.Loc
}

func (h *Handler) CurrentTime() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

func (h *Handler) tenant(name string, s Store) *Tenant {
	registry := &ojt.Registry{Students: s, Cache: h.Cache, Notifier: h.Notifier, Tenant: name, Now: h.Now}
	return &Tenant{
		Name:      name,
		Store:     s,
		Ledger:    ojt.NewLedger(s, h.Now, h.Location()),
		Registry:  registry,
		Scheduler: &ojt.Scheduler{Requests: s, Registry: registry, Now: h.Now},
		Board:     &ojt.Board{Announcements: s, Now: h.Now},
	}
}

// Exec runs fn against the tenant the request host maps to.
func (h *Handler) Exec(c *gin.Context, fn func(t *Tenant) error) error {
	if h.Mem != nil {
		return fn(h.tenant("local", h.Mem))
	}

	dm := h.Dm
	if dm == nil {
		var err error
		if dm, err = core.Default(); err != nil {
			return fmt.Errorf("open database: %w", err)
		}
	}
	host := GetHostname(c.Request.Host)
	return dm.Exec(c.Request.Context(), host, func(db *gorm.DB) error {
		return fn(h.tenant(dm.Schema(host), store.New(db)))
	})
}

// StatusOf maps service errors to HTTP status codes.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ojt.ErrInvalidAction),
		errors.Is(err, ojt.ErrInvalidStatus),
		errors.Is(err, ojt.ErrInvalidShift),
		errors.Is(err, ojt.ErrInvalidRegistration),
		errors.Is(err, ojt.ErrInvalidAnnouncement):
		return http.StatusBadRequest
	case errors.Is(err, ojt.ErrAlreadyRegistered):
		return http.StatusConflict
	case errors.Is(err, ojt.ErrNotApproved), errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case ojt.IsNotFound(err):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Fail writes the error response. Server errors hide err behind message and
// are logged and posted to Slack.
func (h *Handler) Fail(c *gin.Context, err error, message string) {
	status := StatusOf(err)
	if status < http.StatusInternalServerError {
		c.JSON(status, web.NewErrorResponse(status, err.Error()))
		return
	}

	slog.ErrorContext(c.Request.Context(), message,
		"error", err,
		"method", c.Request.Method,
		"path", c.FullPath(),
		"host", c.Request.Host,
	)
	h.Slack.Notify(true, fmt.Sprintf("%s %s %s: %s: %v", c.Request.Host, c.Request.Method, c.FullPath(), message, err))
	c.JSON(status, web.NewErrorResponse(status, message))
}

func (h *Handler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, web.NewErrorResponse(http.StatusBadRequest, message))
}
