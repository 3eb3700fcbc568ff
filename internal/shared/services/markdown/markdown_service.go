// Package markdown renders administrator-authored catalog text such as
// payment instructions.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

type MarkdownService interface {
	// ToHTMLSanitized renders markdown for the admin preview.
	ToHTMLSanitized(markdown string) (string, error)
	// PlainText strips any markup so the text is safe to post in chat.
	PlainText(text string) string
}

type markdownServiceImpl struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	strict *bluemonday.Policy
}

func NewMarkdownService() MarkdownService {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)

	return &markdownServiceImpl{
		md:     md,
		policy: bluemonday.UGCPolicy(),
		strict: bluemonday.StrictPolicy(),
	}
}

func (s *markdownServiceImpl) ToHTMLSanitized(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}
	return s.policy.Sanitize(buf.String()), nil
}

func (s *markdownServiceImpl) PlainText(text string) string {
	return strings.TrimSpace(s.strict.Sanitize(text))
}
