package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Source is the origin of an entity or OpenAPI document. The loader picks a
// reader from Kind and passes Location to it.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind selects the reader used for a Source.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

type origin struct {
	kind     SourceKind
	location string
}

func (o origin) Kind() SourceKind { return o.kind }

func (o origin) Location() string { return o.location }

// SourceFromFile names a schema file on disk.
func SourceFromFile(path string) Source {
	return origin{kind: SourceKindFile, location: filepath.Clean(path)}
}

// SourceFromFS names a document inside the loader's FileSystem, such as an
// embedded fixture set.
func SourceFromFS(name string) Source {
	return origin{kind: SourceKindFS, location: name}
}

// SourceFromURL names a remote document. Remote reads only happen when the
// loader was built with WithHTTPFallback. A malformed URL panics.
func SourceFromURL(raw string) Source {
	if raw == "" {
		panic("schema: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		panic(fmt.Sprintf("schema: invalid URL %q: %v", raw, err))
	}
	return origin{kind: SourceKindURL, location: raw}
}

// Document wraps a raw entity or OpenAPI payload and its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument constructs a Document wrapper while validating the inputs.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("schema: raw document is empty")
	}

	clone := append([]byte(nil), raw...)
	return Document{source: src, raw: clone}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Format guesses the encoding of the payload from the source extension,
// falling back to sniffing the content. It returns "json" or "yaml".
func (d Document) Format() string {
	switch strings.ToLower(path.Ext(d.Location())) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	}
	if json.Valid(d.raw) {
		return "json"
	}
	return "yaml"
}
