package students

import (
	"net/http"
	"strconv"

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

	r.POST("/students/register", middlewares.RequireRole(security.RoleStudent), endpoint.Register)
	r.GET("/students/me", middlewares.RequireRole(security.RoleStudent), endpoint.Me)
	r.GET("/students", staff, endpoint.Search)
	r.PUT("/students/:id/approve", staff, endpoint.Approve)
}

type RegisterDTO struct {
	StudentNumber     string             `json:"studentNumber" binding:"required,max=50"`
	FirstName         string             `json:"firstName" binding:"required,max=100"`
	LastName          string             `json:"lastName" binding:"required,max=100"`
	MiddleName        *string            `json:"middleName" binding:"omitempty,max=100"`
	Department        string             `json:"department" binding:"required,max=100"`
	HostEstablishment *string            `json:"hostEstablishment" binding:"omitempty,max=255"`
	ShiftType         string             `json:"shiftType"`
	ShiftConfig       *model.ShiftConfig `json:"shiftConfig"`
}

// Register creates the caller's student profile, pending approval. The email
// and any student id come from the token.
func (ep *Endpoint) Register(c *gin.Context) {
	identity := middlewares.GetIdentity(c)

	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		ep.base.BadRequest(c, web.FormatBindingError(err))
		return
	}

	var student *model.Student
	err := ep.base.Exec(c, func(t *common.Tenant) error {
		var err error
		student, err = t.Registry.Register(c.Request.Context(), ojt.Registration{
			StudentID:         identity.StudentID,
			Email:             identity.Email,
			StudentNumber:     dto.StudentNumber,
			FirstName:         dto.FirstName,
			LastName:          dto.LastName,
			MiddleName:        dto.MiddleName,
			Department:        dto.Department,
			HostEstablishment: dto.HostEstablishment,
			ShiftType:         model.StudentShiftType(dto.ShiftType),
			ShiftConfig:       dto.ShiftConfig,
		})
		return err
	})
	if err != nil {
		ep.base.Fail(c, err, "failed to register")
		return
	}
	c.JSON(http.StatusCreated, web.NewSuccessResponse(student))
}

func (ep *Endpoint) Me(c *gin.Context) {
	identity := middlewares.GetIdentity(c)

	var student *model.Student
	err := ep.base.Exec(c, func(t *common.Tenant) error {
		var err error
		student, err = common.OwnStudent(c.Request.Context(), t, identity)
		return err
	})
	if err != nil {
		ep.base.Fail(c, err, "failed to load profile")
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(student))
}

func optionalBool(c *gin.Context, key string) (*bool, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Search lists students filtered by ?department=, ?advisorId=, ?accepted=,
// ?active=, ?limit= and ?offset=. Department users only see their department.
func (ep *Endpoint) Search(c *gin.Context) {
	identity := middlewares.GetIdentity(c)

	filter := model.StudentFilter{
		Department: c.Query("department"),
		AdvisorID:  c.Query("advisorId"),
	}
	var err error
	if filter.Accepted, err = optionalBool(c, "accepted"); err != nil {
		ep.base.BadRequest(c, "invalid accepted")
		return
	}
	if filter.Active, err = optionalBool(c, "active"); err != nil {
		ep.base.BadRequest(c, "invalid active")
		return
	}
	if val, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = val
	}
	if val, err := strconv.Atoi(c.Query("offset")); err == nil {
		filter.Offset = val
	}
	if identity.Role == security.RoleDepartment {
		if filter.Department, err = common.DepartmentOf(identity); err != nil {
			ep.base.Fail(c, err, "failed to load students")
			return
		}
	}

	students := []model.Student{}
	var total int64
	err = ep.base.Exec(c, func(t *common.Tenant) error {
		found, n, err := t.Registry.ListStudents(c.Request.Context(), filter)
		if err != nil {
			return err
		}
		if found != nil {
			students = found
		}
		total = n
		return nil
	})
	if err != nil {
		ep.base.Fail(c, err, "failed to load students")
		return
	}
	c.JSON(http.StatusOK, web.NewPagedResponse(students, total, filter.Limit, filter.Offset))
}

type ApproveDTO struct {
	AdvisorID *string `json:"advisorId"`
}

// Approve accepts a pending registration and emails the student.
func (ep *Endpoint) Approve(c *gin.Context) {
	identity := middlewares.GetIdentity(c)
	id := c.Param("id")

	var dto ApproveDTO
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&dto); err != nil {
			ep.base.BadRequest(c, web.FormatBindingError(err))
			return
		}
	}

	var student *model.Student
	err := ep.base.Exec(c, func(t *common.Tenant) error {
		ctx := c.Request.Context()
		if _, err := common.ResolveScope(ctx, t, identity, id); err != nil {
			return err
		}
		var err error
		student, err = t.Registry.ApproveStudent(ctx, id, dto.AdvisorID)
		return err
	})
	if err != nil {
		ep.base.Fail(c, err, "failed to approve student")
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(student))
}
