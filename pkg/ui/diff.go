package ui

import (
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/blackcoderx/callisto/pkg/core"
	"github.com/blackcoderx/callisto/pkg/storage"
)

// DocumentDiff returns a unified diff between two documents' encoded forms,
// or "" when they are identical.
func DocumentDiff(before, after *storage.Document) (string, error) {
	a, err := storage.Encode(before)
	if err != nil {
		return "", err
	}
	b, err := storage.Encode(after)
	if err != nil {
		return "", err
	}
	if string(a) == string(b) {
		return "", nil
	}

	original, modified := string(a)+"\n", string(b)+"\n"
	edits := udiff.Strings(original, modified)
	return udiff.ToUnified("a/"+core.ConfigFileName, "b/"+core.ConfigFileName, original, edits, 3)
}

// ColorDiff colors added and removed lines of a unified diff.
func ColorDiff(diff string) string {
	lines := strings.Split(diff, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			lines[i] = IDStyle.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = MethodStyle.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = ErrorStyle.Render(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = HeadingStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
