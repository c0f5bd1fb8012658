// Package core implements the config store engine: the read-modify-write
// cycle over the workspace/environment document and change notification
// to observers.
package core

import "github.com/blackcoderx/callisto/pkg/storage"

// ConfigEvent is the event name under which updated documents are published.
const ConfigEvent = "callisto-config"

// ConfigFileName is the name of the backing file inside the data directory.
const ConfigFileName = ".callisto.json"

// Event is a single change notification.
type Event struct {
	// Name is always ConfigEvent for documents published by the engine
	Name string
	// Document is the full document after the change
	Document *storage.Document
}

// EventCallback is the function signature for observers registered with a Broadcaster.
type EventCallback func(Event)

// Notifier publishes documents to observers. Publish failures are reported
// to the engine, which logs them and carries on.
type Notifier interface {
	Publish(event string, doc *storage.Document) error
}

// IDFunc supplies a fresh opaque identifier on each call.
type IDFunc func() string
