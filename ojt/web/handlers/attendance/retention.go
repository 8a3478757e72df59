package attendance

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	ojt "ojttracker.com/ojttracker/ojt/core"
	"ojttracker.com/ojttracker/ojt/web/common"
	"ojttracker.com/ojttracker/utils"
	web "ojttracker.com/ojttracker/web/common"
)

// Purge deletes records older than ?days= (default from configuration).
// ?dryRun=true only counts them.
func (ep *Endpoint) Purge(c *gin.Context) {
	days := ep.base.RetentionDays
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			ep.base.BadRequest(c, fmt.Sprintf("invalid days %q", v))
			return
		}
		days = n
	}
	if days <= 0 {
		ep.base.BadRequest(c, "days is required")
		return
	}
	dryRun, _ := strconv.ParseBool(c.Query("dryRun"))

	var result ojt.RetentionResult
	var tenant string
	err := ep.base.Exec(c, func(t *common.Tenant) error {
		var err error
		tenant = t.Name
		result, err = ojt.PurgeBefore(c.Request.Context(), t.Store, ep.base.CurrentTime(), ep.base.Location(), days, dryRun)
		return err
	})
	if err != nil {
		ep.base.Fail(c, err, "failed to purge attendance")
		return
	}

	ep.base.Slack.Notify(false, fmt.Sprintf("[%s] retention: %d attendance records before %s (dry run: %t)",
		tenant, result.Deleted, result.Cutoff.Format(utils.DateLayout), result.DryRun))
	c.JSON(http.StatusOK, web.NewSuccessResponse(result))
}
