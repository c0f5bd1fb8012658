package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema describes the on-disk shape. Sequences are optional, every
// scalar field is required and must be a string.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version"],
  "properties": {
    "version": {"type": "string"},
    "workspaces": {"type": "array", "items": {"$ref": "#/definitions/workspace"}},
    "environments": {"type": "array", "items": {"$ref": "#/definitions/environment"}}
  },
  "definitions": {
    "workspace": {
      "type": "object",
      "required": ["id", "name"],
      "properties": {
        "id": {"type": "string"},
        "name": {"type": "string"},
        "collections": {"type": "array", "items": {"$ref": "#/definitions/collection"}}
      }
    },
    "collection": {
      "type": "object",
      "required": ["id", "name"],
      "properties": {
        "id": {"type": "string"},
        "name": {"type": "string"},
        "requests": {"type": "array", "items": {"$ref": "#/definitions/request"}}
      }
    },
    "request": {
      "type": "object",
      "required": ["id", "name", "req_type", "method", "curl"],
      "properties": {
        "id": {"type": "string"},
        "name": {"type": "string"},
        "req_type": {"type": "string"},
        "method": {"type": "string"},
        "curl": {"type": "string"}
      }
    },
    "environment": {
      "type": "object",
      "required": ["id", "name"],
      "properties": {
        "id": {"type": "string"},
        "name": {"type": "string"},
        "variables": {"type": "array", "items": {"$ref": "#/definitions/variable"}}
      }
    },
    "variable": {
      "type": "object",
      "required": ["key", "value"],
      "properties": {
        "key": {"type": "string"},
        "value": {"type": "string"}
      }
    }
  }
}`

var schema = mustCompileSchema(documentSchema)

func mustCompileSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("storage: invalid document schema: %v", err))
	}
	return s
}

// Decode parses JSON text into a Document. Absent sequences become empty;
// a field of the wrong shape is an error.
func Decode(data []byte) (*Document, error) {
	// encoding/json would replace invalid bytes with U+FFFD and the next
	// write would persist the substitution.
	if !utf8.Valid(data) {
		return nil, &DecodeError{Err: errors.New("config file is not valid UTF-8")}
	}

	var probe interface{}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, &DecodeError{Err: err}
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, re := range result.Errors() {
			problems = append(problems, re.String())
		}
		return nil, &DecodeError{Problems: problems}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &DecodeError{Err: err}
	}
	doc.Normalize()
	return &doc, nil
}

// Encode renders the document as indented JSON. Fields are emitted in
// declaration order, empty sequences as [] and &, <, > literally.
func Encode(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, &EncodeError{Err: errors.New("document is nil")}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc.Clone()); err != nil {
		return nil, &EncodeError{Err: err}
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
