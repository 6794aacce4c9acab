// Package source turns uploaded documents into markdown deck sources.
package source

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MIME types recognized as deck sources.
const (
	MIMEMarkdown = "text/markdown"
	MIMEPlain    = "text/plain"
	MIMEHTML     = "text/html"
	MIMEXHTML    = "application/xhtml+xml"
)

var extensionTypes = map[string]string{
	".md":       MIMEMarkdown,
	".markdown": MIMEMarkdown,
	".txt":      MIMEPlain,
	".text":     MIMEPlain,
	".html":     MIMEHTML,
	".htm":      MIMEHTML,
	".xhtml":    MIMEXHTML,
}

// Detect returns the base MIME type of data. Content sniffing wins when it
// finds markup; plain text and unknown binary fall back to the extension of
// filename, so a .md file is reported as markdown.
func Detect(data []byte, filename string) string {
	detected := baseType(mimetype.Detect(data).String())

	switch detected {
	case MIMEHTML, MIMEXHTML:
		return detected
	case MIMEPlain, "application/octet-stream":
		if t, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
			return t
		}
	}
	return detected
}

// Supported reports whether mime can be converted into a deck source.
func Supported(mime string) bool {
	switch baseType(mime) {
	case MIMEMarkdown, "text/x-markdown", MIMEPlain, MIMEHTML, MIMEXHTML:
		return true
	}
	return false
}

func baseType(mime string) string {
	base, _, _ := strings.Cut(mime, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
