// Package typescript imports entities from TypeScript class and interface
// declarations, such as the *.entity.ts files of a NestJS project.
package typescript

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-crudgen/pkg/entity"
	pkgopenapi "github.com/goliatone/go-crudgen/pkg/openapi"
	"github.com/goliatone/go-crudgen/pkg/schema"
)

// EntitySuffix marks the files ScanDir picks up.
const EntitySuffix = ".entity.ts"

// ErrNoDeclarations is returned when a file holds no class or interface.
var ErrNoDeclarations = errors.New("typescript: no class or interface declarations")

// Importer turns a TypeScript source document into entities.
type Importer struct{}

var _ pkgopenapi.Importer = (*Importer)(nil)

// New returns an Importer.
func New() *Importer {
	return &Importer{}
}

// Import parses every class and interface declared in doc.
func (i *Importer) Import(ctx context.Context, doc schema.Document) ([]entity.EntitySchema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entities, err := parseFile(doc.Location(), doc.Raw())
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDeclarations, doc.Location())
	}
	return entities, nil
}

// ScanDir imports every *.entity.ts file below root, skipping node_modules
// and hidden directories. Files are parsed concurrently; the result keeps
// the lexical file order and the declaration order inside each file. Files
// without declarations are skipped.
func ScanDir(ctx context.Context, fsys fs.FS, root string) ([]entity.EntitySchema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var paths []string
	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (d.Name() == "node_modules" || strings.HasPrefix(d.Name(), ".")) {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), EntitySuffix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("typescript: scan %s: %w", root, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("typescript: no %s files under %s", EntitySuffix, root)
	}

	results := make([][]entity.EntitySchema, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for idx, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			raw, err := fs.ReadFile(fsys, path)
			if err != nil {
				return fmt.Errorf("typescript: read %s: %w", path, err)
			}
			entities, err := parseFile(path, raw)
			if err != nil {
				return err
			}
			results[idx] = entities
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []entity.EntitySchema
	for _, entities := range results {
		out = append(out, entities...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoDeclarations, root)
	}
	return out, nil
}

func parseFile(location string, raw []byte) ([]entity.EntitySchema, error) {
	entities, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	var errs []error
	for _, e := range entities {
		if err := e.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("typescript: %s: %w", location, err)
	}
	return entities, nil
}
