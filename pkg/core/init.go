package core

import (
	"github.com/blackcoderx/callisto/pkg/logging"
	"github.com/blackcoderx/callisto/pkg/storage"
)

// InitializeOrLoad returns the document at path, creating an empty one
// first if no file exists. A file that fails to decode is an error; it is
// never overwritten.
func (e *Engine) InitializeOrLoad(path string) (*storage.Document, error) {
	unlock := e.lock(path)
	defer unlock()

	exists, err := storage.Exists(path)
	if err != nil {
		return nil, err
	}

	if !exists {
		logging.Info(subsystem, "initializing config file %s for the first time", path)
		doc := storage.NewDocument()
		if err := storage.WriteDocument(doc, path); err != nil {
			return nil, err
		}
		return doc, nil
	}

	return storage.ReadDocument(path)
}

// Start initializes or loads the document and publishes it once so that
// observers attached before startup see the initial state.
func (e *Engine) Start(path string) (*storage.Document, error) {
	doc, err := e.InitializeOrLoad(path)
	if err != nil {
		logging.Error(subsystem, err, "failed to load config")
		return nil, err
	}
	logging.Info(subsystem, "config loaded: %d workspaces, %d environments", len(doc.Workspaces), len(doc.Environments))

	e.publish(doc)
	return doc, nil
}
