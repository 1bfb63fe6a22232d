package email

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in the source is omitted from the output; WithUnsafe is not set.
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Table),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

const layoutOpen = `<!DOCTYPE html><html><body style="font-family:Arial,Helvetica,sans-serif;line-height:1.5;color:#222">`
const layoutClose = `</body></html>`

// RenderMarkdown converts a markdown body into a complete HTML email document.
// POST: Returns HTML wrapped in a minimal layout
func RenderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(layoutOpen)
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	buf.WriteString(layoutClose)
	return buf.String(), nil
}

// htmlBody returns req.HTML, rendering req.Markdown when no HTML was supplied.
func htmlBody(req SendRequest) (string, error) {
	if req.HTML != "" {
		return req.HTML, nil
	}
	return RenderMarkdown(req.Markdown)
}
