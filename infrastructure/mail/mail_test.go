package mail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEmailBuffer(t *testing.T) {
	buf, err := BuildEmailBuffer(&EmailInfo{
		From:    "noreply@ojt.example.net",
		To:      []string{"ana.reyes@example.edu", "ojt@example.edu"},
		Subject: "Your OJT registration was approved",
		Text:    "You can now clock in.",
		HTML:    "<p>You can now clock in.</p>",
		Attachments: []Attachment{
			{Filename: "dtr.csv", ContentType: "text/csv", Content: []byte("Date,Total Hours\n")},
		},
	})
	require.NoError(t, err)

	raw := buf.String()
	assert.True(t, strings.HasPrefix(raw, "From: noreply@ojt.example.net\r\n"))
	assert.Contains(t, raw, "To: ana.reyes@example.edu, ojt@example.edu\r\n")
	assert.Contains(t, raw, "Subject: Your OJT registration was approved\r\n")
	assert.Contains(t, raw, "text/plain; charset=UTF-8")
	assert.Contains(t, raw, "text/html; charset=UTF-8")
	assert.Contains(t, raw, "attachment; filename=\"dtr.csv\"")
	assert.NotContains(t, raw, "Cc:")
}

func TestBuildEmailBufferRequiresRecipient(t *testing.T) {
	_, err := BuildEmailBuffer(&EmailInfo{From: "noreply@ojt.example.net", Subject: "x"})
	assert.Error(t, err)
}
