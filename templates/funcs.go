package templates

import (
	"bytes"
	"encoding/base64"
	"html/template"
	"log/slog"

	"github.com/microcosm-cc/bluemonday"
	"github.com/skip2/go-qrcode"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"profile-frames/internal/frames"
)

var (
	md        = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))
	sanitizer = newSanitizer()
)

func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Funcs returns the template functions shared by every page
func Funcs() template.FuncMap {
	return template.FuncMap{
		"markdown":     RenderMarkdown,
		"qrDataURI":    QRDataURI,
		"aspectRatio":  aspectRatio,
		"shortAddress": ShortAddress,
	}
}

// RenderMarkdown converts profile-supplied markdown to sanitized HTML
func RenderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		slog.Warn("failed to render markdown", "error", err)
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}

// QRDataURI encodes content as a PNG QR code data URI, or "" when content is empty
func QRDataURI(content string) template.URL {
	if content == "" {
		return ""
	}
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		slog.Error("failed to generate QR code", "error", err)
		return ""
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
}

func aspectRatio(f *frames.Frame) template.CSS {
	return template.CSS(f.AspectRatioCSS())
}

// ShortAddress abbreviates a 0x address as 0x1234…abcd
func ShortAddress(addr string) string {
	if len(addr) < 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
