package attendance

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ojt "ojttracker.com/ojttracker/ojt/core"
	"ojttracker.com/ojttracker/ojt/model"
	"ojttracker.com/ojttracker/ojt/web/common"
	web "ojttracker.com/ojttracker/web/common"
	"ojttracker.com/ojttracker/web/middlewares"
)

// RecordUpdateDTO is a partial correction. Keys of Times and Images are
// action names such as "morningIn".
type RecordUpdateDTO struct {
	Times     map[model.Action]time.Time `json:"times"`
	Images    map[model.Action]string    `json:"images"`
	Clear     []model.Action             `json:"clear"`
	ShiftType *model.ShiftType           `json:"shiftType"`
	Remarks   *string                    `json:"remarks"`
}

func (d RecordUpdateDTO) patch() model.RecordPatch {
	return model.RecordPatch{
		Times:     d.Times,
		Images:    d.Images,
		Clear:     d.Clear,
		ShiftType: d.ShiftType,
		Remarks:   d.Remarks,
	}
}

func (ep *Endpoint) Update(c *gin.Context) {
	identity := middlewares.GetIdentity(c)
	id := c.Param("id")

	var dto RecordUpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		ep.base.BadRequest(c, web.FormatBindingError(err))
		return
	}

	var updated *model.AttendanceRecord
	err := ep.base.Exec(c, func(t *common.Tenant) error {
		ctx := c.Request.Context()
		rec, err := t.Ledger.Find(ctx, id)
		if err != nil {
			return err
		}
		if _, err := common.ResolveScope(ctx, t, identity, rec.StudentID); err != nil {
			return err
		}

		var schedule *ojt.ShiftSchedule
		if student, err := t.Registry.Profile(ctx, rec.StudentID); err == nil {
			schedule = ojt.ResolveSchedule(student)
		} else if !ojt.IsNotFound(err) {
			return err
		}

		updated, err = t.Ledger.UpdateRecordFields(ctx, id, dto.patch(), schedule)
		return err
	})
	if err != nil {
		ep.base.Fail(c, err, "failed to update attendance")
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(updated))
}
