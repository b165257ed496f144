package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := string(RenderMarkdown("**hi** <script>alert(1)</script> [x](javascript:alert(1))"))
	assert.Contains(t, out, "<strong>hi</strong>")
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "javascript:")
}

func TestQRDataURI(t *testing.T) {
	assert.Empty(t, QRDataURI(""))
	assert.True(t, strings.HasPrefix(string(QRDataURI("https://example.com/widget")), "data:image/png;base64,"))
}

func TestShortAddress(t *testing.T) {
	assert.Equal(t, "0xabcd…0001", ShortAddress("0xabcdef0000000000000000000000000000000001"))
	assert.Equal(t, "short", ShortAddress("short"))
}
