package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	crudgen "github.com/goliatone/go-crudgen"
	"github.com/goliatone/go-crudgen/pkg/entity"
	"github.com/goliatone/go-crudgen/pkg/render/template/jinja"
)

type renderFlags struct {
	schema       string
	entity       string
	format       string
	trimBlocks   bool
	lstripBlocks bool
}

// NewRenderCmd creates the render command.
func NewRenderCmd() *cobra.Command {
	var rf renderFlags

	c := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a single template for one entity to stdout",
		Long: `Render parses a template file with the strict template engine and renders
it for one entity. When no file exists at the given path the name is looked
up in the embedded bundle, for example nestjs/dto.ts.tpl.`,
		Example: `  crudgen render --schema entities.yaml --entity User my-dto.ts.tpl
  crudgen render --schema entities.yaml nestjs/controller.ts.tpl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], rf)
		},
	}

	c.Flags().StringVar(&rf.schema, "schema", "", "Schema document holding the entity (required)")
	c.Flags().StringVar(&rf.entity, "entity", "", "Entity to render (default the first in the document)")
	c.Flags().StringVar(&rf.format, "format", string(crudgen.FormatSchema), "Input format: schema, openapi or typescript")
	c.Flags().BoolVar(&rf.trimBlocks, "trim-blocks", false, "Remove the first newline after a block tag")
	c.Flags().BoolVar(&rf.lstripBlocks, "lstrip-blocks", false, "Strip whitespace before a block tag on its line")
	_ = c.MarkFlagRequired("schema")

	return c
}

func runRender(cmd *cobra.Command, name string, rf renderFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	text, err := readTemplate(name)
	if err != nil {
		return err
	}
	tmpl, err := jinja.Parse(name, string(text),
		jinja.TrimBlocks(rf.trimBlocks),
		jinja.LStripBlocks(rf.lstripBlocks),
	)
	if err != nil {
		return err
	}

	target, err := selectEntity(ctx, rf)
	if err != nil {
		return err
	}

	out, err := tmpl.Execute(jinja.Context{Entity: target})
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}

func readTemplate(name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	data, embeddedErr := fs.ReadFile(crudgen.EmbeddedTemplates(), name)
	if embeddedErr != nil {
		return nil, fmt.Errorf("template %s not found on disk or in the embedded bundle", name)
	}
	return data, nil
}

func selectEntity(ctx context.Context, rf renderFlags) (entity.EntitySchema, error) {
	entities, err := crudgen.LoadEntities(ctx, nil, sourceFor(rf.schema), crudgen.InputFormat(rf.format))
	if err != nil {
		return entity.EntitySchema{}, err
	}
	if len(entities) == 0 {
		return entity.EntitySchema{}, &ExitError{Err: fmt.Errorf("no entities in %s", rf.schema), Code: ExitValidationError}
	}
	if rf.entity == "" {
		return entities[0], nil
	}
	for _, e := range entities {
		if e.Name == rf.entity {
			return e, nil
		}
	}
	return entity.EntitySchema{}, &ExitError{
		Err:  fmt.Errorf("entity %q not found in %s", rf.entity, rf.schema),
		Code: ExitValidationError,
	}
}
