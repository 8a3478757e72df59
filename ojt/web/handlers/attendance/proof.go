package attendance

import (
	"bytes"
	"errors"
	"mime"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"ojttracker.com/ojttracker/infrastructure/filesystem"
	ojt "ojttracker.com/ojttracker/ojt/core"
	"ojttracker.com/ojttracker/ojt/model"
	"ojttracker.com/ojttracker/ojt/web/common"
	web "ojttracker.com/ojttracker/web/common"
	"ojttracker.com/ojttracker/web/middlewares"
)

var errNoProof = errors.New("no proof photo for this action")

// Proof returns the photo stored with one action of a record.
func (ep *Endpoint) Proof(c *gin.Context) {
	identity := middlewares.GetIdentity(c)
	action := model.Action(c.Param("action"))
	if !action.Valid() {
		ep.base.BadRequest(c, ojt.ErrInvalidAction.Error())
		return
	}

	var ref string
	err := ep.base.Exec(c, func(t *common.Tenant) error {
		ctx := c.Request.Context()
		rec, err := t.Ledger.Find(ctx, c.Param("id"))
		if err != nil {
			return err
		}
		if _, err := common.ResolveScope(ctx, t, identity, rec.StudentID); err != nil {
			return err
		}
		_, img := rec.Field(action)
		if *img == nil || **img == "" {
			return errNoProof
		}
		ref = **img
		return nil
	})
	if errors.Is(err, errNoProof) {
		c.JSON(http.StatusNotFound, web.NewErrorResponse(http.StatusNotFound, err.Error()))
		return
	}
	if err != nil {
		ep.base.Fail(c, err, "failed to load proof photo")
		return
	}

	if contentType, data, ok := filesystem.ParseDataURL(ref); ok {
		c.Data(http.StatusOK, contentType, data)
		return
	}

	if _, key, ok := filesystem.ParseS3Ref(ref); ok {
		reader, ok := ep.base.Proofs.(filesystem.ProofReader)
		if !ok {
			c.JSON(http.StatusNotFound, web.NewErrorResponse(http.StatusNotFound, "proof storage is not configured"))
			return
		}
		var buf bytes.Buffer
		if err := reader.Open(c.Request.Context(), ref, &buf); err != nil {
			ep.base.Fail(c, err, "failed to load proof photo")
			return
		}
		contentType := mime.TypeByExtension(path.Ext(key))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Data(http.StatusOK, contentType, buf.Bytes())
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(gin.H{"image": ref}))
}
