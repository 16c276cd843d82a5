package crudgen

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-crudgen/internal/loader"
	"github.com/goliatone/go-crudgen/internal/openapi/builder"
	"github.com/goliatone/go-crudgen/internal/openapi/parser"
	"github.com/goliatone/go-crudgen/internal/typescript"
	"github.com/goliatone/go-crudgen/pkg/entity"
	pkgopenapi "github.com/goliatone/go-crudgen/pkg/openapi"
	"github.com/goliatone/go-crudgen/pkg/schema"
)

// NewLoader constructs a document loader using the internal implementation
// while keeping the concrete type hidden from consumers.
func NewLoader(options ...schema.LoaderOption) schema.Loader {
	return loader.New(schema.NewLoaderOptions(options...))
}

// NewImporter constructs an OpenAPI importer backed by kin-openapi.
func NewImporter(options ...pkgopenapi.ImportOption) pkgopenapi.Importer {
	return parser.New(pkgopenapi.NewImportOptions(options...))
}

// NewBuilder constructs an OpenAPI document builder backed by kin-openapi.
func NewBuilder(options ...pkgopenapi.BuildOption) pkgopenapi.Builder {
	return builder.New(pkgopenapi.NewBuildOptions(options...))
}

// InputFormat selects how LoadEntities interprets a document.
type InputFormat string

const (
	FormatSchema     InputFormat = "schema"
	FormatOpenAPI    InputFormat = "openapi"
	FormatTypeScript InputFormat = "typescript"
)

// LoadEntities reads src through l and decodes it as an entity schema
// document, an OpenAPI document whose component schemas become entities, or
// TypeScript source whose classes and interfaces become entities. With
// FormatTypeScript a file source naming a directory is scanned for
// *.entity.ts files.
func LoadEntities(ctx context.Context, l schema.Loader, src schema.Source, format InputFormat, options ...pkgopenapi.ImportOption) ([]entity.EntitySchema, error) {
	switch format {
	case "", FormatSchema, FormatOpenAPI, FormatTypeScript:
	default:
		return nil, fmt.Errorf("crudgen: unknown input format %q", format)
	}
	if format == FormatTypeScript && src != nil && src.Kind() == schema.SourceKindFile {
		if info, err := os.Stat(src.Location()); err == nil && info.IsDir() {
			return ScanTypeScript(ctx, os.DirFS(src.Location()), ".")
		}
	}

	if l == nil {
		l = NewLoader()
	}
	doc, err := l.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatOpenAPI:
		return NewImporter(options...).Import(ctx, doc)
	case FormatTypeScript:
		return typescript.New().Import(ctx, doc)
	default:
		return schema.Decode(doc)
	}
}

// ScanTypeScript imports every *.entity.ts file below root in fsys.
func ScanTypeScript(ctx context.Context, fsys fs.FS, root string) ([]entity.EntitySchema, error) {
	return typescript.ScanDir(ctx, fsys, root)
}
