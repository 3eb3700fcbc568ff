package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTMLSanitized(t *testing.T) {
	svc := NewMarkdownService()

	out, err := svc.ToHTMLSanitized("Pay to **upi@bank**\n<script>alert(1)</script>")
	require.NoError(t, err)

	assert.Contains(t, out, "<strong>upi@bank</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestPlainText(t *testing.T) {
	svc := NewMarkdownService()
	assert.Equal(t, "Send to UPI", svc.PlainText("<b>Send</b> to UPI "))
}
