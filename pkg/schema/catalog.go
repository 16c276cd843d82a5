package schema

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-crudgen/pkg/entity"
)

// Catalog is an ordered, name-indexed set of entities gathered from one or
// more documents.
type Catalog struct {
	entities []entity.EntitySchema
	index    map[string]int
	origin   map[string]string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{index: make(map[string]int), origin: make(map[string]string)}
}

// Add appends entities, rejecting names already present. source names the
// document the entities came from and is used in errors.
func (c *Catalog) Add(source string, entities ...entity.EntitySchema) error {
	for _, e := range entities {
		if prev, exists := c.origin[e.Name]; exists {
			return entity.Invalid(e.Name, fmt.Errorf("schema: duplicate entity %q (%s and %s)", e.Name, prev, label(source)))
		}
		c.index[e.Name] = len(c.entities)
		c.origin[e.Name] = label(source)
		c.entities = append(c.entities, e.Clone())
	}
	return nil
}

// Entities returns the entities in load order.
func (c *Catalog) Entities() []entity.EntitySchema {
	if c == nil {
		return nil
	}
	out := make([]entity.EntitySchema, len(c.entities))
	for i, e := range c.entities {
		out[i] = e.Clone()
	}
	return out
}

// Entity returns the entity registered under name.
func (c *Catalog) Entity(name string) (entity.EntitySchema, bool) {
	if c == nil {
		return entity.EntitySchema{}, false
	}
	idx, ok := c.index[name]
	if !ok {
		return entity.EntitySchema{}, false
	}
	return c.entities[idx].Clone(), true
}

// Names returns entity names in load order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.entities))
	for i, e := range c.entities {
		names[i] = e.Name
	}
	return names
}

// Len reports the number of entities.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entities)
}

// LoadFS walks fsys and decodes every JSON/YAML file in lexical path order.
// When fsys is nil or holds no documents, the returned catalog is empty.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	catalog := NewCatalog()
	if fsys == nil {
		return catalog, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		if !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", path, err)
		}

		entities, err := DecodeBytes(data, path)
		if err != nil {
			return err
		}
		return catalog.Add(path, entities...)
	})
	if err != nil {
		return nil, err
	}

	return catalog, nil
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
