package schedule

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ojt "ojttracker.com/ojttracker/ojt/core"
	"ojttracker.com/ojttracker/ojt/model"
	"ojttracker.com/ojttracker/ojt/web/common"
	"ojttracker.com/ojttracker/security"
	web "ojttracker.com/ojttracker/web/common"
	"ojttracker.com/ojttracker/web/middlewares"
)

type Endpoint struct {
	base *common.Handler
}

func Register(r *gin.RouterGroup, base *common.Handler) {
	endpoint := &Endpoint{base: base}
	staff := middlewares.RequireRole(security.RoleDepartment, security.RoleAdmin, security.RoleSuperAdmin)

	r.GET("/schedule-requests", endpoint.Search)
	r.POST("/schedule-requests", endpoint.Create)
	r.PUT("/schedule-requests/:id", staff, endpoint.Review)
}

// Search lists requests newest first. ?status=, ?studentId= and
// ?departmentId= narrow the list within the caller's scope.
func (ep *Endpoint) Search(c *gin.Context) {
	identity := middlewares.GetIdentity(c)
	filter := model.ScheduleRequestFilter{
		StudentID:    c.Query("studentId"),
		DepartmentID: c.Query("departmentId"),
		Status:       model.RequestStatus(c.Query("status")),
	}
	if identity.Role == security.RoleDepartment {
		department, err := common.DepartmentOf(identity)
		if err != nil {
			ep.base.Fail(c, err, "failed to load schedule requests")
			return
		}
		filter.DepartmentID = department
	}

	requests := []model.ScheduleChangeRequest{}
	err := ep.base.Exec(c, func(t *common.Tenant) error {
		ctx := c.Request.Context()
		if identity.Role == security.RoleStudent {
			s, err := common.OwnStudent(ctx, t, identity)
			if err != nil {
				return err
			}
			filter.StudentID = s.ID
		}
		found, err := t.Scheduler.ListScheduleRequests(ctx, filter)
		if err != nil {
			return err
		}
		if found != nil {
			requests = found
		}
		return nil
	})
	if err != nil {
		ep.base.Fail(c, err, "failed to load schedule requests")
		return
	}
	c.JSON(http.StatusOK, web.NewSearchResponse(requests, int64(len(requests))))
}

type CreateDTO struct {
	StudentID            string             `json:"studentId"`
	RequestedShiftType   string             `json:"requestedShiftType" binding:"required"`
	RequestedShiftConfig *model.ShiftConfig `json:"requestedShiftConfig"`
	Reason               string             `json:"reason" binding:"required,max=1000"`
}

// Create files a request. Students file for themselves, staff on behalf of
// a student given by studentId.
func (ep *Endpoint) Create(c *gin.Context) {
	identity := middlewares.GetIdentity(c)

	var dto CreateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		ep.base.BadRequest(c, web.FormatBindingError(err))
		return
	}

	var req *model.ScheduleChangeRequest
	err := ep.base.Exec(c, func(t *common.Tenant) error {
		ctx := c.Request.Context()
		scope, err := common.ResolveScope(ctx, t, identity, dto.StudentID)
		if err != nil {
			return err
		}
		studentID := scope.StudentID()
		if studentID == "" {
			return ojt.ErrStudentNotFound
		}
		req, err = t.Scheduler.CreateScheduleRequest(ctx, ojt.ScheduleRequestInput{
			StudentID:       studentID,
			RequestedType:   model.StudentShiftType(dto.RequestedShiftType),
			RequestedConfig: dto.RequestedShiftConfig,
			Reason:          dto.Reason,
		})
		return err
	})
	if err != nil {
		ep.base.Fail(c, err, "failed to create schedule request")
		return
	}
	c.JSON(http.StatusCreated, web.NewSuccessResponse(req))
}

type ReviewDTO struct {
	Status   string  `json:"status" binding:"required"`
	Comments *string `json:"comments"`
}

func (ep *Endpoint) Review(c *gin.Context) {
	identity := middlewares.GetIdentity(c)
	id := c.Param("id")

	var dto ReviewDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		ep.base.BadRequest(c, web.FormatBindingError(err))
		return
	}

	var req *model.ScheduleChangeRequest
	err := ep.base.Exec(c, func(t *common.Tenant) error {
		ctx := c.Request.Context()
		existing, err := t.Store.FindScheduleRequest(ctx, id)
		if err != nil {
			return err
		}
		if identity.Role == security.RoleDepartment {
			department, err := common.DepartmentOf(identity)
			if err != nil {
				return err
			}
			if existing.DepartmentID != department {
				return common.ErrForbidden
			}
		}
		req, err = t.Scheduler.ReviewScheduleRequest(ctx, id, model.RequestStatus(dto.Status), dto.Comments, identity.UserID)
		return err
	})
	if err != nil {
		ep.base.Fail(c, err, "failed to review schedule request")
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(req))
}
