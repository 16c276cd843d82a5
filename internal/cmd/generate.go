package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	crudgen "github.com/goliatone/go-crudgen"
	"github.com/goliatone/go-crudgen/internal/config"
	"github.com/goliatone/go-crudgen/internal/output"
	"github.com/goliatone/go-crudgen/pkg/entity"
	"github.com/goliatone/go-crudgen/pkg/generator"
	pkgopenapi "github.com/goliatone/go-crudgen/pkg/openapi"
	"github.com/goliatone/go-crudgen/pkg/schema"
)

// generate-specific flags that are not part of the persisted configuration.
type generateFlags struct {
	format      string
	schemas     []string
	allowHTTP   bool
	httpTimeout time.Duration
}

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	var gf generateFlags

	c := &cobra.Command{
		Use:   "generate <schema>...",
		Short: "Generate sources for every entity in the given documents",
		Long: `Generate renders each configured target for every entity found in the
given schema documents and writes the results below the output directory.

Documents are read as entity schema files by default. Use --format openapi
to import the component schemas of an OpenAPI document instead, or
--format typescript to import classes and interfaces from TypeScript files.
A directory argument with --format typescript is scanned for *.entity.ts
files.`,
		Example: `  crudgen generate entities.yaml
  crudgen generate --targets dto,service -o src api.yaml --format openapi
  crudgen generate --dry-run --openapi entities.yaml
  crudgen generate --format typescript -o src src/entities`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, gf)
		},
	}

	flags := c.Flags()
	flags.String("templates", "", "Directory with templates that override the embedded bundle")
	flags.StringP("output", "o", config.DefaultOutput, "Output directory")
	flags.String("engine", config.DefaultEngine, "Template engine: jinja or gotemplate")
	flags.StringSlice("targets", nil, "Targets to generate (default all)")
	flags.Bool("overwrite", false, "Overwrite existing files")
	flags.Bool("dry-run", false, "Report the files that would be written without writing them")
	flags.Bool("openapi", false, "Also emit an OpenAPI 3 document per entity")
	flags.Int("concurrency", config.DefaultConcurrency, "Maximum entities rendered in parallel")
	flags.Bool("trim-blocks", false, "Remove the first newline after a block tag")
	flags.Bool("lstrip-blocks", false, "Strip whitespace before a block tag on its line")
	flags.StringVar(&gf.format, "format", string(crudgen.FormatSchema), "Input format: schema, openapi or typescript")
	flags.StringSliceVar(&gf.schemas, "schemas", nil, "OpenAPI component schemas to import (default all)")
	flags.BoolVar(&gf.allowHTTP, "allow-http", false, "Allow schema documents to be fetched over HTTP")
	flags.DurationVar(&gf.httpTimeout, "http-timeout", 30*time.Second, "Timeout for remote documents")

	return c
}

func runGenerate(cmd *cobra.Command, args []string, gf generateFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	loader := config.NewLoader()
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return err
	}
	cfg, err := loader.Load(configFlag)
	if err != nil {
		return &ExitError{Err: err, Code: ExitValidationError}
	}
	if used := loader.Used(); used != "" {
		output.Debug("loaded config", "file", used)
	}

	entities, err := loadCatalog(ctx, args, gf)
	if err != nil {
		return err
	}

	gen, err := crudgen.NewGenerator(generatorOptions(cfg)...)
	if err != nil {
		return err
	}

	output.Info("generating", "entities", len(entities), "targets", targetLabel(cfg.Targets))
	artifacts, err := gen.GenerateAll(ctx, entities, cfg.Targets...)
	if err != nil {
		return err
	}

	writer, err := generator.NewWriter(cfg.Output,
		generator.WithOverwrite(cfg.Overwrite),
		generator.WithDryRun(cfg.DryRun),
		generator.WithWriterLogger(output.Logger),
	)
	if err != nil {
		return err
	}
	results, err := writer.Write(ctx, artifacts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, res := range results {
		fmt.Fprintf(out, "%-11s %s\n", res.Status, res.Path)
	}
	return nil
}

// loadCatalog reads every document named in args and rejects entity names
// declared more than once across them.
func loadCatalog(ctx context.Context, args []string, gf generateFlags) ([]entity.EntitySchema, error) {
	var loaderOptions []schema.LoaderOption
	for _, arg := range args {
		if !isRemote(arg) {
			continue
		}
		if !gf.allowHTTP {
			return nil, &ExitError{
				Err:  fmt.Errorf("remote document %s requires --allow-http", arg),
				Code: ExitGeneralError,
			}
		}
	}
	if gf.allowHTTP {
		loaderOptions = append(loaderOptions, schema.WithHTTPFallback(gf.httpTimeout))
	}

	var importOptions []pkgopenapi.ImportOption
	if len(gf.schemas) > 0 {
		importOptions = append(importOptions, pkgopenapi.WithSchemas(gf.schemas...))
	}

	loader := crudgen.NewLoader(loaderOptions...)
	catalog := schema.NewCatalog()
	for _, arg := range args {
		loaded, err := crudgen.LoadEntities(ctx, loader, sourceFor(arg), crudgen.InputFormat(gf.format), importOptions...)
		if err != nil {
			return nil, err
		}
		output.Debug("loaded document", "source", arg, "entities", len(loaded))
		if err := catalog.Add(arg, loaded...); err != nil {
			return nil, &ExitError{Err: err, Code: ExitValidationError}
		}
	}
	if catalog.Len() == 0 {
		return nil, &ExitError{Err: fmt.Errorf("no entities found in %d document(s)", len(args)), Code: ExitValidationError}
	}
	return catalog.Entities(), nil
}

func generatorOptions(cfg *config.Config) []crudgen.Option {
	opts := []crudgen.Option{
		crudgen.WithEngine(cfg.Engine),
		crudgen.WithWhitespace(cfg.TrimBlocks, cfg.LStripBlocks),
		crudgen.WithConcurrency(cfg.Concurrency),
		crudgen.WithLogger(output.Logger),
	}
	if cfg.Templates != "" {
		opts = append(opts, crudgen.WithTemplateDir(cfg.Templates))
	}
	if cfg.OpenAPI {
		opts = append(opts, crudgen.WithOpenAPI())
	}
	for _, target := range cfg.PathTargets() {
		opts = append(opts, crudgen.WithPath(target, cfg.Paths[target]))
	}
	return opts
}

func targetLabel(targets []string) string {
	if len(targets) == 0 {
		return "all"
	}
	return fmt.Sprint(targets)
}
