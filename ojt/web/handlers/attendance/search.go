package attendance

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ojttracker.com/ojttracker/ojt/model"
	"ojttracker.com/ojttracker/ojt/web/common"
	web "ojttracker.com/ojttracker/web/common"
	"ojttracker.com/ojttracker/web/middlewares"
)

// Search lists records for ?date=, ?month=&year= or ?startDate=&endDate=,
// optionally narrowed by ?studentId=.
func (ep *Endpoint) Search(c *gin.Context) {
	identity := middlewares.GetIdentity(c)
	from, to, err := common.ParsePeriod(c, ep.base.Location(), ep.base.CurrentTime())
	if err != nil {
		ep.base.BadRequest(c, err.Error())
		return
	}

	records := []model.AttendanceRecord{}
	err = ep.base.Exec(c, func(t *common.Tenant) error {
		ctx := c.Request.Context()
		scope, err := common.ResolveScope(ctx, t, identity, c.Query("studentId"))
		if err != nil {
			return err
		}
		found, err := common.Records(ctx, t, scope, from, to)
		if err != nil {
			return err
		}
		if found != nil {
			records = found
		}
		return nil
	})
	if err != nil {
		ep.base.Fail(c, err, "failed to load attendance")
		return
	}

	c.JSON(http.StatusOK, web.NewSearchResponse(records, int64(len(records))))
}
