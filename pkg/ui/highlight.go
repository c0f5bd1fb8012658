package ui

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/blackcoderx/callisto/pkg/relay"
	"github.com/charmbracelet/glamour"
)

// HighlightJSON takes a JSON string, validates it, and returns a syntax-highlighted string.
// If the input is not valid JSON, it returns the original string.
func HighlightJSON(input string) string {
	var js interface{}
	if json.Unmarshal([]byte(input), &js) != nil {
		return input
	}

	var sb strings.Builder
	sb.WriteString("```json\n")

	// Re-encode so that minified JSON is indented too
	pretty, err := json.MarshalIndent(js, "", "  ")
	if err == nil {
		sb.Write(pretty)
	} else {
		sb.WriteString(input)
	}

	sb.WriteString("\n```")

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return input
	}

	out, err := renderer.Render(sb.String())
	if err != nil {
		return input
	}

	return strings.TrimSpace(out)
}

// RenderResponse formats a relayed response with a colored status line and
// a highlighted body.
func RenderResponse(resp *relay.Response) string {
	var sb strings.Builder
	status := fmt.Sprintf("%d %s", resp.Status, resp.StatusText)
	sb.WriteString(statusStyle(resp.Status).Render(status))
	sb.WriteString(IDStyle.Render(fmt.Sprintf("  %dms  %d bytes", resp.Time, resp.Size)) + "\n\n")

	for _, line := range strings.Split(strings.TrimSuffix(headerBlock(resp), "\n"), "\n") {
		if line != "" {
			sb.WriteString(IDStyle.Render(line) + "\n")
		}
	}
	sb.WriteString("\n")
	sb.WriteString(HighlightJSON(resp.Body))
	sb.WriteString("\n")
	return sb.String()
}

// headerBlock lists headers as "name: value" lines sorted by name.
func headerBlock(resp *relay.Response) string {
	var sb strings.Builder
	for _, key := range slices.Sorted(maps.Keys(resp.Headers)) {
		sb.WriteString(fmt.Sprintf("%s: %s\n", key, resp.Headers[key]))
	}
	return sb.String()
}
