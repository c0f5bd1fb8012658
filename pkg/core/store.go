package core

import (
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
	"sync"

	"github.com/blackcoderx/callisto/pkg/logging"
	"github.com/blackcoderx/callisto/pkg/storage"
)

const subsystem = "Store"

// RequestFields are the mutable fields of a saved request.
type RequestFields struct {
	Name    string
	ReqType string
	Method  string
	Curl    string
}

// Engine performs every mutation as a full read-modify-write of the file at
// the path given to each call. No document is cached between calls.
//
// By default mutations on the same path are not serialized: two concurrent
// calls may each read the old document and the later write wins, losing the
// other change. WithSerializedWrites adds a per-path lock for hosts that
// issue mutations concurrently.
type Engine struct {
	newID    IDFunc
	notifier Notifier
	locks    *pathLocks
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDFunc overrides identifier generation.
func WithIDFunc(f IDFunc) Option {
	return func(e *Engine) { e.newID = f }
}

// WithNotifier sets the observer channel documents are published to.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithSerializedWrites serializes read-modify-write cycles per path.
func WithSerializedWrites() Option {
	return func(e *Engine) { e.locks = &pathLocks{m: make(map[string]*sync.Mutex)} }
}

// NewEngine creates an Engine. Identifiers default to random UUIDs.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{newID: NewID}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load reads and decodes the document at path. A missing file fails with
// ErrConfigNotFound.
func (e *Engine) Load(path string) (*storage.Document, error) {
	return e.read(path, false)
}

// Environment returns a copy of the environment with the given identifier.
func (e *Engine) Environment(path, environmentID string) (*storage.Environment, error) {
	doc, err := e.read(path, false)
	if err != nil {
		return nil, err
	}
	env, err := findEnvironment(doc, environmentID)
	if err != nil {
		return nil, err
	}
	return env, nil
}

// Request returns a copy of a saved request. Missing ancestors are reported
// the same way the mutations report them.
func (e *Engine) Request(path, workspaceID, collectionID, requestID string) (*storage.Request, error) {
	doc, err := e.read(path, false)
	if err != nil {
		return nil, err
	}
	col, err := findCollection(doc, workspaceID, collectionID)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(col.Requests, func(r storage.Request) bool { return r.ID == requestID })
	if i < 0 {
		return nil, notFound(ErrRequestNotFound, requestID)
	}
	req := col.Requests[i]
	return &req, nil
}

// AddWorkspace appends a workspace with no collections. A missing backing
// file is treated as an empty document.
func (e *Engine) AddWorkspace(path, name string) (*storage.Document, error) {
	return e.mutate(path, true, func(doc *storage.Document) error {
		doc.Workspaces = append(doc.Workspaces, storage.Workspace{
			ID:          e.newID(),
			Name:        name,
			Collections: []storage.Collection{},
		})
		return nil
	})
}

// DeleteWorkspace removes the workspace if present.
func (e *Engine) DeleteWorkspace(path, workspaceID string) (*storage.Document, error) {
	return e.mutate(path, false, func(doc *storage.Document) error {
		doc.Workspaces = slices.DeleteFunc(doc.Workspaces, func(w storage.Workspace) bool {
			return w.ID == workspaceID
		})
		return nil
	})
}

// CreateCollection appends an empty collection to a workspace.
func (e *Engine) CreateCollection(path, workspaceID, name string) (*storage.Document, error) {
	return e.mutate(path, false, func(doc *storage.Document) error {
		ws, err := findWorkspace(doc, workspaceID)
		if err != nil {
			return err
		}
		ws.Collections = append(ws.Collections, storage.Collection{
			ID:       e.newID(),
			Name:     name,
			Requests: []storage.Request{},
		})
		return nil
	})
}

// RenameCollection replaces a collection's name.
func (e *Engine) RenameCollection(path, workspaceID, collectionID, newName string) (*storage.Document, error) {
	return e.mutate(path, false, func(doc *storage.Document) error {
		col, err := findCollection(doc, workspaceID, collectionID)
		if err != nil {
			return err
		}
		col.Name = newName
		return nil
	})
}

// DeleteCollection removes the collection if present. The workspace must exist.
func (e *Engine) DeleteCollection(path, workspaceID, collectionID string) (*storage.Document, error) {
	return e.mutate(path, false, func(doc *storage.Document) error {
		ws, err := findWorkspace(doc, workspaceID)
		if err != nil {
			return err
		}
		ws.Collections = slices.DeleteFunc(ws.Collections, func(c storage.Collection) bool {
			return c.ID == collectionID
		})
		return nil
	})
}

// CreateRequest appends a request to a collection.
func (e *Engine) CreateRequest(path, workspaceID, collectionID string, f RequestFields) (*storage.Document, error) {
	return e.mutate(path, false, func(doc *storage.Document) error {
		col, err := findCollection(doc, workspaceID, collectionID)
		if err != nil {
			return err
		}
		col.Requests = append(col.Requests, storage.Request{
			ID:      e.newID(),
			Name:    f.Name,
			ReqType: f.ReqType,
			Method:  f.Method,
			Curl:    f.Curl,
		})
		return nil
	})
}

// UpdateRequest replaces every mutable field of a request, keeping its identifier.
func (e *Engine) UpdateRequest(path, workspaceID, collectionID, requestID string, f RequestFields) (*storage.Document, error) {
	return e.mutate(path, false, func(doc *storage.Document) error {
		col, err := findCollection(doc, workspaceID, collectionID)
		if err != nil {
			return err
		}
		i := slices.IndexFunc(col.Requests, func(r storage.Request) bool { return r.ID == requestID })
		if i < 0 {
			return notFound(ErrRequestNotFound, requestID)
		}
		req := &col.Requests[i]
		req.Name = f.Name
		req.ReqType = f.ReqType
		req.Method = f.Method
		req.Curl = f.Curl
		return nil
	})
}

// DeleteRequest removes the request if present. The workspace and
// collection must exist.
func (e *Engine) DeleteRequest(path, workspaceID, collectionID, requestID string) (*storage.Document, error) {
	return e.mutate(path, false, func(doc *storage.Document) error {
		col, err := findCollection(doc, workspaceID, collectionID)
		if err != nil {
			return err
		}
		col.Requests = slices.DeleteFunc(col.Requests, func(r storage.Request) bool {
			return r.ID == requestID
		})
		return nil
	})
}

// CreateEnvironment appends an environment holding a copy of variables.
func (e *Engine) CreateEnvironment(path, name string, variables []storage.Variable) (*storage.Document, error) {
	return e.mutate(path, false, func(doc *storage.Document) error {
		doc.Environments = append(doc.Environments, storage.Environment{
			ID:        e.newID(),
			Name:      name,
			Variables: append([]storage.Variable{}, variables...),
		})
		return nil
	})
}

// UpdateEnvironment replaces an environment's name and its whole variable list.
func (e *Engine) UpdateEnvironment(path, environmentID, name string, variables []storage.Variable) (*storage.Document, error) {
	return e.mutate(path, false, func(doc *storage.Document) error {
		env, err := findEnvironment(doc, environmentID)
		if err != nil {
			return err
		}
		env.Name = name
		env.Variables = append([]storage.Variable{}, variables...)
		return nil
	})
}

// DeleteEnvironment removes the environment if present.
func (e *Engine) DeleteEnvironment(path, environmentID string) (*storage.Document, error) {
	return e.mutate(path, false, func(doc *storage.Document) error {
		doc.Environments = slices.DeleteFunc(doc.Environments, func(env storage.Environment) bool {
			return env.ID == environmentID
		})
		return nil
	})
}

// mutate runs fn against a freshly read document, persists the result and
// publishes it. Nothing is written when fn fails.
func (e *Engine) mutate(path string, missingOK bool, fn func(doc *storage.Document) error) (*storage.Document, error) {
	unlock := e.lock(path)
	defer unlock()

	doc, err := e.read(path, missingOK)
	if err != nil {
		return nil, err
	}
	if err := fn(doc); err != nil {
		return nil, err
	}
	doc.Normalize()

	if err := storage.WriteDocument(doc, path); err != nil {
		return nil, err
	}
	e.publish(doc)
	return doc, nil
}

func (e *Engine) read(path string, missingOK bool) (*storage.Document, error) {
	doc, err := storage.ReadDocument(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		if missingOK {
			return storage.NewDocument(), nil
		}
		return nil, notFound(ErrConfigNotFound, path)
	}
	return doc, nil
}

// publish is best effort: the document is already on disk.
func (e *Engine) publish(doc *storage.Document) {
	if e.notifier == nil {
		logging.Debug(subsystem, "no notifier configured, %s not published", ConfigEvent)
		return
	}
	if err := e.notifier.Publish(ConfigEvent, doc); err != nil {
		if errors.Is(err, ErrNoObservers) {
			logging.Debug(subsystem, "%s not published: %v", ConfigEvent, err)
			return
		}
		logging.Warn(subsystem, "failed to publish %s: %v", ConfigEvent, err)
	}
}

func (e *Engine) lock(path string) func() {
	if e.locks == nil {
		return func() {}
	}
	return e.locks.lock(path)
}

func findWorkspace(doc *storage.Document, id string) (*storage.Workspace, error) {
	i := slices.IndexFunc(doc.Workspaces, func(w storage.Workspace) bool { return w.ID == id })
	if i < 0 {
		return nil, notFound(ErrWorkspaceNotFound, id)
	}
	return &doc.Workspaces[i], nil
}

func findEnvironment(doc *storage.Document, id string) (*storage.Environment, error) {
	i := slices.IndexFunc(doc.Environments, func(env storage.Environment) bool { return env.ID == id })
	if i < 0 {
		return nil, notFound(ErrEnvironmentNotFound, id)
	}
	return &doc.Environments[i], nil
}

func findCollection(doc *storage.Document, workspaceID, collectionID string) (*storage.Collection, error) {
	ws, err := findWorkspace(doc, workspaceID)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(ws.Collections, func(c storage.Collection) bool { return c.ID == collectionID })
	if i < 0 {
		return nil, notFound(ErrCollectionNotFound, collectionID)
	}
	return &ws.Collections[i], nil
}

type pathLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (p *pathLocks) lock(path string) func() {
	key := filepath.Clean(path)
	p.mu.Lock()
	l, ok := p.m[key]
	if !ok {
		l = &sync.Mutex{}
		p.m[key] = l
	}
	p.mu.Unlock()

	l.Lock()
	return l.Unlock
}
