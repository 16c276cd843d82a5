// Package builder renders entities into an OpenAPI 3 document describing the
// CRUD surface the generated controllers expose.
package builder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-crudgen/pkg/entity"
	"github.com/goliatone/go-crudgen/pkg/naming"
	pkgopenapi "github.com/goliatone/go-crudgen/pkg/openapi"
)

const componentPrefix = "#/components/schemas/"

// Builder implements pkgopenapi.Builder using kin-openapi.
type Builder struct {
	options pkgopenapi.BuildOptions
}

var _ pkgopenapi.Builder = (*Builder)(nil)

// New constructs a Builder with the given options.
func New(options pkgopenapi.BuildOptions) *Builder {
	return &Builder{options: options}
}

// Build returns the validated document encoded as indented JSON.
func (b *Builder) Build(ctx context.Context, entities ...entity.EntitySchema) ([]byte, error) {
	doc, err := b.Document(ctx, entities...)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("openapi builder: encode: %w", err)
	}
	return append(data, '\n'), nil
}

// Document assembles the OpenAPI document for entities. Each entity gets
// Create, Update and Response DTO schemas plus collection and item paths.
func (b *Builder) Document(ctx context.Context, entities ...entity.EntitySchema) (*openapi3.T, error) {
	if len(entities) == 0 {
		return nil, errors.New("openapi builder: at least one entity is required")
	}

	known := make(map[string]struct{}, len(entities))
	for _, e := range entities {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("openapi builder: %w", err)
		}
		if _, dup := known[e.Name]; dup {
			return nil, fmt.Errorf("openapi builder: duplicate entity %q", e.Name)
		}
		known[e.Name] = struct{}{}
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       b.options.Title,
			Version:     b.options.Version,
			Description: b.options.Description,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas),
		},
	}

	// Component values are allocated up front so properties can reference
	// any entity regardless of declaration order.
	for _, e := range entities {
		declareSchemas(doc.Components.Schemas, e)
	}
	for _, e := range entities {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc.Tags = append(doc.Tags, &openapi3.Tag{
			Name:        e.Name,
			Description: tagDescription(e),
		})
		fillSchemas(doc.Components.Schemas, e, known)
		addPaths(doc, e)
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi builder: validate: %w", err)
	}
	return doc, nil
}

func tagDescription(e entity.EntitySchema) string {
	if e.Description != "" {
		return e.Description
	}
	return "Operations related to " + e.Name
}

func createName(name string) string   { return "Create" + name + "Dto" }
func updateName(name string) string   { return "Update" + name + "Dto" }
func responseName(name string) string { return name + "ResponseDto" }

func declareSchemas(schemas openapi3.Schemas, e entity.EntitySchema) {
	schemas[createName(e.Name)] = openapi3.NewSchemaRef("", openapi3.NewObjectSchema())
	schemas[updateName(e.Name)] = openapi3.NewSchemaRef("", openapi3.NewObjectSchema())
	schemas[responseName(e.Name)] = openapi3.NewSchemaRef("", &openapi3.Schema{})
}

// component returns a $ref to a declared component.
func component(schemas openapi3.Schemas, name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef(componentPrefix+name, schemas[name].Value)
}

func fillSchemas(schemas openapi3.Schemas, e entity.EntitySchema, known map[string]struct{}) {
	create := schemas[createName(e.Name)].Value
	update := schemas[updateName(e.Name)].Value
	for _, prop := range e.Properties {
		propSchema := schemaForType(prop.Type, known, schemas)
		if prop.Description != "" {
			propSchema = withDescription(propSchema, prop.Description)
		}
		create.Properties[prop.Name] = propSchema
		update.Properties[prop.Name] = propSchema
	}
	create.Required = e.RequiredNames()

	record := openapi3.NewObjectSchema()
	record.Properties["id"] = openapi3.NewSchemaRef("", described(openapi3.NewUUIDSchema(), "Entity ID"))
	record.Properties["createdAt"] = openapi3.NewSchemaRef("", described(openapi3.NewDateTimeSchema(), "Creation timestamp"))
	record.Properties["updatedAt"] = openapi3.NewSchemaRef("", described(openapi3.NewDateTimeSchema(), "Last update timestamp"))
	record.Required = []string{"id", "createdAt", "updatedAt"}

	response := schemas[responseName(e.Name)].Value
	response.AllOf = openapi3.SchemaRefs{
		component(schemas, createName(e.Name)),
		openapi3.NewSchemaRef("", record),
	}
	response.Description = e.Description
}

func addPaths(doc *openapi3.T, e entity.EntitySchema) {
	schemas := doc.Components.Schemas
	responseRef := component(schemas, responseName(e.Name))
	createRef := component(schemas, createName(e.Name))
	updateRef := component(schemas, updateName(e.Name))
	list := openapi3.NewArraySchema()
	list.Items = responseRef
	listRef := openapi3.NewSchemaRef("", list)

	base := "/" + naming.Lower(e.Name)
	idParam := &openapi3.ParameterRef{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewUUIDSchema())}

	doc.Paths.Set(base, &openapi3.PathItem{
		Post: operation(e, "create", "Create "+e.Name, &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(createRef),
		}, http.StatusCreated, responseRef),
		Get: operation(e, "findAll", "Get all "+naming.Plural(e.Name), nil, http.StatusOK, listRef),
	})

	item := &openapi3.PathItem{
		Parameters: openapi3.Parameters{idParam},
		Get:        operation(e, "findOne", "Get "+e.Name+" by id", nil, http.StatusOK, responseRef),
		Put: operation(e, "update", "Update "+e.Name, &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(updateRef),
		}, http.StatusOK, responseRef),
		Delete: operation(e, "delete", "Delete "+e.Name, nil, http.StatusOK, responseRef),
	}
	item.Get.Responses.Set("404", &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(e.Name + " not found")})
	doc.Paths.Set(base+"/{id}", item)
}

func operation(e entity.EntitySchema, verb, summary string, body *openapi3.RequestBodyRef, status int, result *openapi3.SchemaRef) *openapi3.Operation {
	response := openapi3.NewResponse().
		WithDescription(http.StatusText(status)).
		WithJSONSchemaRef(result)
	return &openapi3.Operation{
		Tags:        []string{e.Name},
		OperationID: verb + e.Name,
		Summary:     summary,
		RequestBody: body,
		Responses:   openapi3.NewResponses(openapi3.WithStatus(status, &openapi3.ResponseRef{Value: response})),
	}
}

// schemaForType maps a TypeScript property type back to a schema. Entity names
// become references to their response DTO; unknown types fall back to a
// free-form object.
func schemaForType(tsType string, known map[string]struct{}, schemas openapi3.Schemas) *openapi3.SchemaRef {
	t := strings.TrimSpace(tsType)
	if inner, ok := strings.CutSuffix(t, "[]"); ok {
		if strings.HasPrefix(inner, "(") && strings.HasSuffix(inner, ")") {
			inner = inner[1 : len(inner)-1]
		}
		array := openapi3.NewArraySchema()
		array.Items = schemaForType(inner, known, schemas)
		return openapi3.NewSchemaRef("", array)
	}
	if inner, ok := strings.CutPrefix(t, "Array<"); ok && strings.HasSuffix(inner, ">") {
		return schemaForType(strings.TrimSuffix(inner, ">")+"[]", known, schemas)
	}

	switch strings.ToLower(t) {
	case "string":
		return openapi3.NewSchemaRef("", openapi3.NewStringSchema())
	case "number", "int", "integer", "float", "double", "bigint", "decimal":
		return openapi3.NewSchemaRef("", openapi3.NewFloat64Schema())
	case "boolean", "bool":
		return openapi3.NewSchemaRef("", openapi3.NewBoolSchema())
	case "date", "datetime":
		return openapi3.NewSchemaRef("", openapi3.NewDateTimeSchema())
	}

	if _, ok := known[t]; ok {
		return component(schemas, responseName(t))
	}
	return openapi3.NewSchemaRef("", openapi3.NewObjectSchema())
}

func withDescription(ref *openapi3.SchemaRef, description string) *openapi3.SchemaRef {
	if ref.Ref != "" {
		// $ref siblings are ignored in OpenAPI 3.0.
		return ref
	}
	copied := *ref.Value
	copied.Description = description
	return openapi3.NewSchemaRef("", &copied)
}

func described(s *openapi3.Schema, description string) *openapi3.Schema {
	s.Description = description
	return s
}
