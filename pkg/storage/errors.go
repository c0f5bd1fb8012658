package storage

import (
	"fmt"
	"strings"
)

// IOError reports a failure to create, read or write the backing file.
type IOError struct {
	Op   string // "read", "write", "stat", ...
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s config file %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// DecodeError reports malformed JSON or a structurally invalid document.
type DecodeError struct {
	Path     string   // Empty when decoding text that did not come from a file
	Problems []string // Schema violations, one per offending field
	Err      error    // Underlying parse error, if any
}

func (e *DecodeError) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid JSON in config file")
	if e.Path != "" {
		sb.WriteString(" " + e.Path)
	}
	if e.Err != nil {
		sb.WriteString(": " + e.Err.Error())
	}
	if len(e.Problems) > 0 {
		sb.WriteString(": " + strings.Join(e.Problems, "; "))
	}
	return sb.String()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a failure to serialize a document.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("failed to serialize config: %v", e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
