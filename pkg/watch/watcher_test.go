package watch

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/blackcoderx/callisto/pkg/core"
	"github.com/blackcoderx/callisto/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReload_SkipsUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), core.ConfigFileName)
	engine := core.NewEngine()
	_, err := engine.InitializeOrLoad(path)
	require.NoError(t, err)

	b := core.NewBroadcaster()
	events, cancel := b.Subscribe(4)
	defer cancel()

	w := New(path, engine, b, 0)
	w.Reload()
	w.Reload()
	assert.Len(t, events, 1)

	doc := storage.NewDocument()
	doc.Workspaces = append(doc.Workspaces, storage.Workspace{ID: "w", Name: "External", Collections: []storage.Collection{}})
	require.NoError(t, storage.WriteDocument(doc, path))
	w.Reload()
	require.Len(t, events, 2)

	<-events
	ev := <-events
	assert.Equal(t, doc, ev.Document)
}

func TestRun_PublishesExternalChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), core.ConfigFileName)
	engine := core.NewEngine()
	_, err := engine.InitializeOrLoad(path)
	require.NoError(t, err)

	b := core.NewBroadcaster()
	events, cancel := b.Subscribe(4)
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	w := New(path, engine, b, 20*time.Millisecond)
	go func() { done <- w.Run(ctx) }()

	// A plain engine mutation stands in for another process editing the file.
	time.Sleep(100 * time.Millisecond)
	_, err = core.NewEngine().AddWorkspace(path, "From elsewhere")
	require.NoError(t, err)

	select {
	case ev := <-events:
		require.Len(t, ev.Document.Workspaces, 1)
		assert.Equal(t, "From elsewhere", ev.Document.Workspaces[0].Name)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	stop()
	require.NoError(t, <-done)
}
