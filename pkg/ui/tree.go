package ui

import (
	"fmt"
	"strings"

	"github.com/blackcoderx/callisto/pkg/storage"
)

// RenderTree draws the workspace hierarchy and environments as an indented tree.
func RenderTree(doc *storage.Document) string {
	var sb strings.Builder

	sb.WriteString(HeadingStyle.Render("Workspaces") + "\n")
	if len(doc.Workspaces) == 0 {
		sb.WriteString(IDStyle.Render("  (none)") + "\n")
	}
	for _, ws := range doc.Workspaces {
		sb.WriteString(fmt.Sprintf("  %s %s\n", WorkspaceStyle.Render(ws.Name), IDStyle.Render(ws.ID)))
		for _, col := range ws.Collections {
			sb.WriteString(fmt.Sprintf("    %s %s\n", CollectionStyle.Render(col.Name), IDStyle.Render(col.ID)))
			for _, req := range col.Requests {
				sb.WriteString(fmt.Sprintf("      %s %s %s\n",
					MethodStyle.Render(fmt.Sprintf("%-7s", strings.ToUpper(req.Method))),
					RequestStyle.Render(req.Name),
					IDStyle.Render(req.ID)))
			}
		}
	}

	sb.WriteString("\n" + HeadingStyle.Render("Environments") + "\n")
	if len(doc.Environments) == 0 {
		sb.WriteString(IDStyle.Render("  (none)") + "\n")
	}
	for _, env := range doc.Environments {
		sb.WriteString(fmt.Sprintf("  %s %s\n", WorkspaceStyle.Render(env.Name), IDStyle.Render(env.ID)))
		for _, v := range env.Variables {
			sb.WriteString(fmt.Sprintf("    %s = %s\n", v.Key, v.Value))
		}
	}

	return sb.String()
}
