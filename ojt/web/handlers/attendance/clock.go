package attendance

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ojttracker.com/ojttracker/infrastructure/filesystem"
	ojt "ojttracker.com/ojttracker/ojt/core"
	"ojttracker.com/ojttracker/ojt/model"
	"ojttracker.com/ojttracker/ojt/web/common"
	"ojttracker.com/ojttracker/utils"
	web "ojttracker.com/ojttracker/web/common"
	"ojttracker.com/ojttracker/web/handlers"
	"ojttracker.com/ojttracker/web/middlewares"
)

type ClockRequest struct {
	Action string  `json:"action" form:"action" binding:"required"`
	Image  *string `json:"image" form:"image"`
}

type ClockResponse struct {
	Record     *model.AttendanceRecord `json:"record"`
	ServerTime time.Time               `json:"serverTime"`
}

// Clock records an action for the calling student at server time. The proof
// photo comes either as a JSON data URL or as the multipart "photo" file.
func (ep *Endpoint) Clock(c *gin.Context) {
	identity := middlewares.GetIdentity(c)

	var upload *handlers.Upload
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		var err error
		if upload, err = handlers.ReadImageUpload(c, "photo"); err != nil {
			ep.base.BadRequest(c, err.Error())
			return
		}
	}

	var req ClockRequest
	if err := c.ShouldBind(&req); err != nil {
		ep.base.BadRequest(c, web.FormatBindingError(err))
		return
	}
	action := model.Action(req.Action)
	if !action.Valid() {
		ep.base.BadRequest(c, ojt.ErrInvalidAction.Error())
		return
	}

	var resp ClockResponse
	err := ep.base.Exec(c, func(t *common.Tenant) error {
		ctx := c.Request.Context()
		student, err := t.Registry.ClockingStudent(ctx, identity.StudentID, identity.Email)
		if err != nil {
			return err
		}

		image, err := ep.storeProof(ctx, t, student.ID, action, req.Image, upload)
		if err != nil {
			return err
		}

		rec, err := t.Ledger.RecordClockEvent(ctx, ojt.ClockEvent{
			StudentID: student.ID,
			Action:    action,
			Image:     image,
			ShiftType: student.ShiftType.RecordShift(),
			Schedule:  ojt.ResolveSchedule(student),
		})
		if err != nil {
			return err
		}

		ts, _ := rec.Field(action)
		resp = ClockResponse{Record: rec, ServerTime: **ts}
		return nil
	})
	if err != nil {
		ep.base.Fail(c, err, "failed to record attendance")
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(resp))
}

// storeProof hands the photo to the proof store and returns the reference to
// keep on the record. Images that are not data URLs are kept verbatim.
func (ep *Endpoint) storeProof(ctx context.Context, t *common.Tenant, studentID string, action model.Action, inline *string, upload *handlers.Upload) (*string, error) {
	var (
		contentType string
		data        []byte
		ext         string
	)
	switch {
	case upload != nil:
		contentType, data, ext = upload.ContentType, upload.Data, upload.Ext()
	case inline != nil && *inline != "":
		ct, d, ok := filesystem.ParseDataURL(*inline)
		if !ok {
			return inline, nil
		}
		contentType, data, ext = ct, d, handlers.ExtensionFor(ct)
	default:
		return nil, nil
	}

	proofs := ep.base.Proofs
	if proofs == nil {
		proofs = filesystem.InlineStore{}
	}
	day := utils.DayOf(t.Ledger.Now(), t.Ledger.Location()).Format(utils.DateLayout)
	key := fmt.Sprintf("%s/%s/%s/%s-%s%s", t.Name, day, studentID, action, uuid.NewString(), ext)
	ref, err := proofs.Put(ctx, key, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("store proof photo: %w", err)
	}
	return &ref, nil
}
