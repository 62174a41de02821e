package email

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Build(t *testing.T) {
	c := NewClient("smtp.example.com", 587, "user", "pass", "notifier@example.com")

	msg := c.Build(Message{
		To:      "owner@example.com",
		Subject: "Payment Due",
		Text:    "$500 due tomorrow",
		HTML:    "<p>$500 due tomorrow</p>",
	})

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "Subject: Payment Due")
	assert.Contains(t, raw, "To: owner@example.com")
	assert.Contains(t, raw, "text/html")
}
