package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

const MaxUploadBytes = 10 << 20

var allowedImageExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

var ErrUnsupportedUpload = errors.New("unsupported file type")

type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (u *Upload) Ext() string {
	return strings.ToLower(filepath.Ext(u.Filename))
}

// ExtensionFor is the file extension used when storing an image of contentType.
func ExtensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	return ""
}

// ReadImageUpload reads one image from a multipart form field. It returns nil
// without error when the field is absent.
func ReadImageUpload(c *gin.Context, field string) (*Upload, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes)
	file, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}

	contentType, ok := allowedImageExt[strings.ToLower(filepath.Ext(file.Filename))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedUpload, file.Filename)
	}

	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &Upload{Filename: file.Filename, ContentType: contentType, Data: data}, nil
}
