package ui

import (
	"strings"
	"testing"

	"github.com/blackcoderx/callisto/pkg/relay"
	"github.com/blackcoderx/callisto/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTree(t *testing.T) {
	doc := storage.NewDocument()
	doc.Workspaces = []storage.Workspace{{
		ID:   "ws1",
		Name: "Personal",
		Collections: []storage.Collection{{
			ID:       "c1",
			Name:     "Auth",
			Requests: []storage.Request{{ID: "r1", Name: "Login", Method: "post"}},
		}},
	}}
	doc.Environments = []storage.Environment{{ID: "e1", Name: "dev", Variables: []storage.Variable{{Key: "API", Value: "x"}}}}

	out := RenderTree(doc)
	for _, want := range []string{"Personal", "ws1", "Auth", "POST", "Login", "dev", "API = x"} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "Personal"), strings.Index(out, "Login"))

	empty := RenderTree(storage.NewDocument())
	assert.Equal(t, 2, strings.Count(empty, "(none)"))
}

func TestDocumentDiff(t *testing.T) {
	before := storage.NewDocument()
	after := before.Clone()
	after.Workspaces = append(after.Workspaces, storage.Workspace{ID: "w", Name: "New", Collections: []storage.Collection{}})

	diff, err := DocumentDiff(before, after)
	require.NoError(t, err)
	assert.Contains(t, diff, `+      "name": "New",`)
	assert.Contains(t, diff, `-  "workspaces": [],`)

	same, err := DocumentDiff(before, before.Clone())
	require.NoError(t, err)
	assert.Empty(t, same)
}

func TestHighlightJSON_NonJSONPassesThrough(t *testing.T) {
	assert.Equal(t, "plain text", HighlightJSON("plain text"))
}

func TestRenderResponse(t *testing.T) {
	out := RenderResponse(&relay.Response{
		Status:     404,
		StatusText: "Not Found",
		Headers:    map[string]string{"content-type": "text/plain"},
		Body:       "missing",
		Time:       3,
		Size:       7,
	})
	assert.Contains(t, out, "404 Not Found")
	assert.Contains(t, out, "content-type: text/plain")
	assert.Contains(t, out, "missing")
}

func TestHeaderBlock_SortedByName(t *testing.T) {
	resp := &relay.Response{Headers: map[string]string{
		"x-request-id": "abc",
		"content-type": "application/json",
		"cache-control": "no-store",
	}}
	assert.Equal(t, "cache-control: no-store\ncontent-type: application/json\nx-request-id: abc\n", headerBlock(resp))
	assert.Empty(t, headerBlock(&relay.Response{}))
}
