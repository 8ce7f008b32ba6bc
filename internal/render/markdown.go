package render

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

var policy = bluemonday.UGCPolicy()

// HTML converts markdown text to sanitized HTML
func HTML(markdown string) string {
	if strings.TrimSpace(markdown) == "" {
		return ""
	}
	unsafe := blackfriday.Run([]byte(markdown))
	return string(policy.SanitizeBytes(unsafe))
}

// DescriptionMarkdown turns a plain-text job description into markdown.
// Listings mark list items with bullet characters, one per line.
func DescriptionMarkdown(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var b strings.Builder
	inList := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		item, isItem := bulletItem(trimmed)
		switch {
		case isItem:
			if !inList {
				b.WriteString("\n")
				inList = true
			}
			b.WriteString("- ")
			b.WriteString(item)
			b.WriteString("\n")
		default:
			if inList {
				b.WriteString("\n")
				inList = false
			}
			b.WriteString(trimmed)
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}

// DescriptionHTML renders a plain-text job description as sanitized HTML
func DescriptionHTML(text string) string {
	return HTML(DescriptionMarkdown(text))
}

func bulletItem(line string) (string, bool) {
	for _, bullet := range []string{"•", "●", "▪", "◦"} {
		if strings.HasPrefix(line, bullet) {
			return strings.TrimSpace(strings.TrimPrefix(line, bullet)), true
		}
	}
	return "", false
}
