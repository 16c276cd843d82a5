package openapi

import (
	"context"

	"github.com/goliatone/go-crudgen/pkg/entity"
	"github.com/goliatone/go-crudgen/pkg/schema"
)

// Importer converts the component schemas of an OpenAPI document into
// entities. Property order follows the source document.
type Importer interface {
	Import(ctx context.Context, doc schema.Document) ([]entity.EntitySchema, error)
}

// Builder produces a JSON encoded OpenAPI 3 document describing the CRUD
// surface of the given entities.
type Builder interface {
	Build(ctx context.Context, entities ...entity.EntitySchema) ([]byte, error)
}
