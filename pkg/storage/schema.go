package storage

// CurrentVersion is written into every newly created document.
const CurrentVersion = "1.0"

// Document is the complete persisted configuration of an installation.
type Document struct {
	Version      string        `json:"version"`      // Document format version
	Workspaces   []Workspace   `json:"workspaces"`   // Ordered workspaces
	Environments []Environment `json:"environments"` // Ordered environments
}

// Workspace groups collections of requests.
type Workspace struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"` // Free text, not required to be unique
	Collections []Collection `json:"collections"`
}

// Collection represents a folder of related requests.
type Collection struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Requests []Request `json:"requests"`
}

// Request represents a saved API request.
type Request struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	ReqType string `json:"req_type"` // Discriminator, e.g. "http" or "curl"
	Method  string `json:"method"`   // HTTP verb, not validated
	Curl    string `json:"curl"`     // Opaque request definition, usually a curl command
}

// Environment represents a named set of variables.
type Environment struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Variables []Variable `json:"variables"`
}

// Variable is a single key/value pair. Keys are not required to be unique.
type Variable struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewDocument returns an empty document at the current version.
func NewDocument() *Document {
	return &Document{
		Version:      CurrentVersion,
		Workspaces:   []Workspace{},
		Environments: []Environment{},
	}
}

// Normalize replaces nil sequences with empty ones throughout the tree so
// that an absent sequence and an empty one are indistinguishable.
func (d *Document) Normalize() {
	if d.Workspaces == nil {
		d.Workspaces = []Workspace{}
	}
	if d.Environments == nil {
		d.Environments = []Environment{}
	}
	for i := range d.Workspaces {
		ws := &d.Workspaces[i]
		if ws.Collections == nil {
			ws.Collections = []Collection{}
		}
		for j := range ws.Collections {
			if ws.Collections[j].Requests == nil {
				ws.Collections[j].Requests = []Request{}
			}
		}
	}
	for i := range d.Environments {
		if d.Environments[i].Variables == nil {
			d.Environments[i].Variables = []Variable{}
		}
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{
		Version:      d.Version,
		Workspaces:   make([]Workspace, len(d.Workspaces)),
		Environments: make([]Environment, len(d.Environments)),
	}
	for i, ws := range d.Workspaces {
		cols := make([]Collection, len(ws.Collections))
		for j, c := range ws.Collections {
			cols[j] = Collection{ID: c.ID, Name: c.Name, Requests: append([]Request{}, c.Requests...)}
		}
		out.Workspaces[i] = Workspace{ID: ws.ID, Name: ws.Name, Collections: cols}
	}
	for i, env := range d.Environments {
		out.Environments[i] = Environment{ID: env.ID, Name: env.Name, Variables: append([]Variable{}, env.Variables...)}
	}
	return out
}
