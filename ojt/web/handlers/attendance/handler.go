package attendance

import (
	"github.com/gin-gonic/gin"

	"ojttracker.com/ojttracker/ojt/web/common"
	"ojttracker.com/ojttracker/security"
	"ojttracker.com/ojttracker/web/middlewares"
)

type Endpoint struct {
	base *common.Handler
}

func Register(r *gin.RouterGroup, base *common.Handler) {
	endpoint := &Endpoint{base: base}
	staff := middlewares.RequireRole(security.RoleDepartment, security.RoleAdmin, security.RoleSuperAdmin)

	r.POST("/attendance/clock", middlewares.RequireRole(security.RoleStudent), endpoint.Clock)
	r.GET("/attendance", endpoint.Search)
	r.PUT("/attendance/:id", staff, endpoint.Update)
	r.GET("/attendance/:id/proof/:action", endpoint.Proof)
	r.DELETE("/attendance/retention", middlewares.RequireRole(security.RoleSuperAdmin), endpoint.Purge)
}
