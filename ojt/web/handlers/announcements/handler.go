package announcements

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	ojt "ojttracker.com/ojttracker/ojt/core"
	"ojttracker.com/ojttracker/ojt/model"
	"ojttracker.com/ojttracker/ojt/web/common"
	"ojttracker.com/ojttracker/security"
	"ojttracker.com/ojttracker/utils"
	web "ojttracker.com/ojttracker/web/common"
	"ojttracker.com/ojttracker/web/middlewares"
)

type Endpoint struct {
	base *common.Handler
}

func Register(r *gin.RouterGroup, base *common.Handler) {
	endpoint := &Endpoint{base: base}
	staff := middlewares.RequireRole(security.RoleDepartment, security.RoleAdmin, security.RoleSuperAdmin)

	r.GET("/announcements", endpoint.Search)
	r.POST("/announcements", staff, endpoint.Create)
	r.PUT("/announcements/:id", staff, endpoint.Update)
	r.DELETE("/announcements/:id", staff, endpoint.Delete)
}

// Search lists announcements newest first. Students get the active ones for
// their department, department users their own plus those for everyone.
// Admins may pass ?department= and ?isActive=.
func (ep *Endpoint) Search(c *gin.Context) {
	identity := middlewares.GetIdentity(c)

	var filter model.AnnouncementFilter
	if v := c.Query("isActive"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			ep.base.BadRequest(c, "invalid isActive")
			return
		}
		filter.Active = &active
	}

	switch identity.Role {
	case security.RoleStudent:
		filter.Active = utils.Ptr(true)
	case security.RoleDepartment:
		department, err := common.DepartmentOf(identity)
		if err != nil {
			ep.base.Fail(c, err, "failed to load announcements")
			return
		}
		filter.Audience = &department
	default:
		if v := c.Query("department"); v != "" {
			filter.Audience = &v
		}
	}

	announcements := []model.Announcement{}
	err := ep.base.Exec(c, func(t *common.Tenant) error {
		ctx := c.Request.Context()
		if identity.Role == security.RoleStudent {
			s, err := common.OwnStudent(ctx, t, identity)
			if err != nil {
				return err
			}
			filter.Audience = &s.Department
		}
		found, err := t.Board.List(ctx, filter)
		if err != nil {
			return err
		}
		if found != nil {
			announcements = found
		}
		return nil
	})
	if err != nil {
		ep.base.Fail(c, err, "failed to load announcements")
		return
	}
	c.JSON(http.StatusOK, web.NewSearchResponse(announcements, int64(len(announcements))))
}

type CreateDTO struct {
	Title      string `json:"title" binding:"required,max=200"`
	Content    string `json:"content" binding:"required,max=5000"`
	Department string `json:"department" binding:"max=100"`
	IsForAll   bool   `json:"isForAll"`
}

// Create posts an announcement. Department users post to their own
// department only.
func (ep *Endpoint) Create(c *gin.Context) {
	identity := middlewares.GetIdentity(c)

	var dto CreateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		ep.base.BadRequest(c, web.FormatBindingError(err))
		return
	}

	in := ojt.AnnouncementInput{
		Title:      dto.Title,
		Content:    dto.Content,
		Department: dto.Department,
		IsForAll:   dto.IsForAll,
		PostedBy:   identity.UserID,
	}
	if identity.Role == security.RoleDepartment {
		department, err := common.DepartmentOf(identity)
		if err == nil && dto.IsForAll {
			err = common.ErrForbidden
		}
		if err != nil {
			ep.base.Fail(c, err, "failed to post announcement")
			return
		}
		in.Department = department
	}

	var created *model.Announcement
	err := ep.base.Exec(c, func(t *common.Tenant) error {
		var err error
		created, err = t.Board.Post(c.Request.Context(), in)
		return err
	})
	if err != nil {
		ep.base.Fail(c, err, "failed to post announcement")
		return
	}
	c.JSON(http.StatusCreated, web.NewSuccessResponse(created))
}

type UpdateDTO struct {
	Title      *string `json:"title" binding:"omitempty,max=200"`
	Content    *string `json:"content" binding:"omitempty,max=5000"`
	Department *string `json:"department" binding:"omitempty,max=100"`
	IsForAll   *bool   `json:"isForAll"`
	IsActive   *bool   `json:"isActive"`
}

// owns fails unless a department user posted a to their own department.
// Other staff may change anything.
func owns(identity *security.IdentityClaims, a *model.Announcement) error {
	if identity.Role != security.RoleDepartment {
		return nil
	}
	department, err := common.DepartmentOf(identity)
	if err != nil {
		return err
	}
	if a.IsForAll || a.Department != department {
		return common.ErrForbidden
	}
	return nil
}

func (ep *Endpoint) Update(c *gin.Context) {
	identity := middlewares.GetIdentity(c)
	id := c.Param("id")

	var dto UpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		ep.base.BadRequest(c, web.FormatBindingError(err))
		return
	}

	var updated *model.Announcement
	err := ep.base.Exec(c, func(t *common.Tenant) error {
		ctx := c.Request.Context()
		existing, err := t.Board.Find(ctx, id)
		if err != nil {
			return err
		}
		if err := owns(identity, existing); err != nil {
			return err
		}
		if identity.Role == security.RoleDepartment &&
			((dto.IsForAll != nil && *dto.IsForAll) || (dto.Department != nil && *dto.Department != existing.Department)) {
			return common.ErrForbidden
		}

		updated, err = t.Board.Update(ctx, id, model.AnnouncementPatch{
			Title:      dto.Title,
			Content:    dto.Content,
			Department: dto.Department,
			IsForAll:   dto.IsForAll,
			IsActive:   dto.IsActive,
		})
		return err
	})
	if err != nil {
		ep.base.Fail(c, err, "failed to update announcement")
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(updated))
}

func (ep *Endpoint) Delete(c *gin.Context) {
	identity := middlewares.GetIdentity(c)
	id := c.Param("id")

	err := ep.base.Exec(c, func(t *common.Tenant) error {
		ctx := c.Request.Context()
		existing, err := t.Board.Find(ctx, id)
		if err != nil {
			return err
		}
		if err := owns(identity, existing); err != nil {
			return err
		}
		return t.Board.Delete(ctx, id)
	})
	if err != nil {
		ep.base.Fail(c, err, "failed to delete announcement")
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(gin.H{"id": id}))
}
