package reports

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	ojt "ojttracker.com/ojttracker/ojt/core"
	"ojttracker.com/ojttracker/ojt/model"
	"ojttracker.com/ojttracker/ojt/report"
	"ojttracker.com/ojttracker/ojt/web/common"
	"ojttracker.com/ojttracker/utils"
	web "ojttracker.com/ojttracker/web/common"
	"ojttracker.com/ojttracker/web/middlewares"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var errStudentRequired = errors.New("studentId is required")

type Endpoint struct {
	base *common.Handler
}

func Register(r *gin.RouterGroup, base *common.Handler) {
	endpoint := &Endpoint{base: base}
	r.GET("/reports/dtr", endpoint.DTR)
	r.GET("/reports/attendance.csv", endpoint.AttendanceCSV)
}

// DTR renders one student's month as the Daily Time Record, JSON by default
// or a workbook with ?format=xlsx.
func (ep *Endpoint) DTR(c *gin.Context) {
	identity := middlewares.GetIdentity(c)
	loc := ep.base.Location()

	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "xlsx" {
		ep.base.BadRequest(c, fmt.Sprintf("unsupported format %q", format))
		return
	}
	year, month, err := common.ParseMonth(c, ep.base.CurrentTime().In(loc))
	if err != nil {
		ep.base.BadRequest(c, err.Error())
		return
	}

	var (
		dtr     report.DTR
		student *model.Student
	)
	err = ep.base.Exec(c, func(t *common.Tenant) error {
		ctx := c.Request.Context()
		scope, err := common.ResolveScope(ctx, t, identity, c.Query("studentId"))
		if err != nil {
			return err
		}
		if scope.StudentID() == "" {
			return errStudentRequired
		}
		if student, err = t.Registry.Profile(ctx, scope.StudentID()); err != nil {
			return err
		}

		from, next := utils.MonthRange(year, month, loc)
		records, err := t.Ledger.GetRecordsForPeriod(ctx, student.ID, from, next.AddDate(0, 0, -1))
		if err != nil {
			return err
		}
		official := ojt.ResolveSchedule(student).OfficialHours()
		dtr = report.BuildDTR(student.FullName(), official, year, month, records, loc)
		return nil
	})
	if errors.Is(err, errStudentRequired) {
		ep.base.BadRequest(c, err.Error())
		return
	}
	if err != nil {
		ep.base.Fail(c, err, "failed to build daily time record")
		return
	}

	if format == "json" {
		c.JSON(http.StatusOK, web.NewSuccessResponse(dtr))
		return
	}

	var buf bytes.Buffer
	if err := report.WriteDTRXLSX(&buf, dtr); err != nil {
		ep.base.Fail(c, err, "failed to render daily time record")
		return
	}
	filename := fmt.Sprintf("DTR-%s-%04d-%02d.xlsx", student.StudentNumber, year, int(month))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// AttendanceCSV exports the caller's visible records for the period.
func (ep *Endpoint) AttendanceCSV(c *gin.Context) {
	identity := middlewares.GetIdentity(c)
	loc := ep.base.Location()

	from, to, err := common.ParsePeriod(c, loc, ep.base.CurrentTime())
	if err != nil {
		ep.base.BadRequest(c, err.Error())
		return
	}

	var records []model.AttendanceRecord
	err = ep.base.Exec(c, func(t *common.Tenant) error {
		ctx := c.Request.Context()
		scope, err := common.ResolveScope(ctx, t, identity, c.Query("studentId"))
		if err != nil {
			return err
		}
		records, err = common.Records(ctx, t, scope, from, to)
		return err
	})
	if err != nil {
		ep.base.Fail(c, err, "failed to export attendance")
		return
	}

	var buf bytes.Buffer
	if err := report.WriteAttendanceCSV(&buf, records, loc); err != nil {
		ep.base.Fail(c, err, "failed to export attendance")
		return
	}
	filename := fmt.Sprintf("attendance-%s-%s.csv", from.Format(utils.DateLayout), to.Format(utils.DateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
