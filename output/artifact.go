// Package output writes generated scripts to a directory tree, S3 or stdout.
package output

import (
	"path"
	"strings"

	"github.com/relloyd/makedw/constants"
)

// Artifact is one script bound for <schema>/<Dir>/<Name>.sql.
type Artifact struct {
	Schema string `json:"schema"`
	Dir    string `json:"dir"`
	Name   string `json:"name"`
	SQL    string `json:"sql"`
}

// Path returns the slash-separated path of a relative to the output root.
func (a Artifact) Path() string {
	return path.Join(a.Schema, a.Dir, a.Name+constants.OutputFileExt)
}

// TidySQL normalises line endings and removes the warning banner some SQL formatters prepend.
func TidySQL(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), constants.FormatterWarningBanner) {
			continue
		}
		kept = append(kept, strings.TrimRight(l, " \t"))
	}
	s = strings.TrimSpace(strings.Join(kept, "\n"))
	if s == "" {
		return s
	}
	return s + "\n"
}
