package generator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-crudgen/pkg/entity"
)

const defaultConcurrency = 4

// Option customises a Generator.
type Option func(*Generator)

// WithRegistry injects an emitter registry.
func WithRegistry(registry *Registry) Option {
	return func(g *Generator) {
		if registry != nil {
			g.registry = registry
		}
	}
}

// WithEmitters registers emitters on the generator registry.
func WithEmitters(emitters ...Emitter) Option {
	return func(g *Generator) {
		g.pending = append(g.pending, emitters...)
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *log.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithConcurrency bounds the number of entities GenerateAll processes at
// once. Values below one fall back to the default.
func WithConcurrency(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// Generator runs emitters against entities.
type Generator struct {
	registry    *Registry
	pending     []Emitter
	logger      *log.Logger
	concurrency int
}

// New constructs a Generator. Emitters passed through WithEmitters are
// registered after WithRegistry is applied, whatever the option order.
func New(options ...Option) (*Generator, error) {
	g := &Generator{
		concurrency: defaultConcurrency,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(g)
	}
	if g.registry == nil {
		g.registry = NewRegistry()
	}
	if g.logger == nil {
		g.logger = log.New(io.Discard)
	}
	for _, emitter := range g.pending {
		if err := g.registry.Register(emitter); err != nil {
			return nil, err
		}
	}
	g.pending = nil
	return g, nil
}

// Registry exposes the emitter registry.
func (g *Generator) Registry() *Registry {
	return g.registry
}

// Request describes a single-entity generation run.
type Request struct {
	Entity entity.EntitySchema

	// Targets names the emitters to run, in order. Empty runs every
	// registered emitter in registration order.
	Targets []string
}

// Generate validates the entity and runs the requested emitters. Every
// failing target is reported; no artifacts are returned when any fails.
func (g *Generator) Generate(ctx context.Context, req Request) ([]Artifact, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := req.Entity.Validate(); err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	emitters, err := g.resolve(req.Targets)
	if err != nil {
		return nil, err
	}

	artifacts := make([]Artifact, 0, len(emitters))
	var errs []error
	for _, emitter := range emitters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		artifact, err := emitter.Emit(ctx, req.Entity)
		if err != nil {
			errs = append(errs, fmt.Errorf("generator: %s/%s: %w", req.Entity.Name, emitter.Name(), err))
			continue
		}
		g.logger.Debug("emitted", "entity", req.Entity.Name, "target", emitter.Name(), "path", artifact.Path, "bytes", len(artifact.Content))
		artifacts = append(artifacts, artifact)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return artifacts, nil
}

// GenerateAll generates every entity concurrently. Artifacts are returned
// grouped by entity in input order, each group in target order.
func (g *Generator) GenerateAll(ctx context.Context, entities []entity.EntitySchema, targets ...string) ([]Artifact, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(entities) == 0 {
		return nil, errors.New("generator: no entities to generate")
	}
	seen := make(map[string]int, len(entities))
	for i, e := range entities {
		if first, exists := seen[e.Name]; exists {
			return nil, fmt.Errorf("generator: entity %q given at #%d and #%d", e.Name, first+1, i+1)
		}
		seen[e.Name] = i
	}
	if _, err := g.resolve(targets); err != nil {
		return nil, err
	}

	results := make([][]Artifact, len(entities))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(g.concurrency)
	for i := range entities {
		group.Go(func() error {
			artifacts, err := g.Generate(groupCtx, Request{Entity: entities[i], Targets: targets})
			if err != nil {
				return err
			}
			results[i] = artifacts
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var out []Artifact
	for _, artifacts := range results {
		out = append(out, artifacts...)
	}
	return out, nil
}

func (g *Generator) resolve(targets []string) ([]Emitter, error) {
	names := targets
	if len(names) == 0 {
		names = g.registry.Ordered()
	}
	if len(names) == 0 {
		return nil, errors.New("generator: no emitters registered")
	}

	emitters := make([]Emitter, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("generator: target %q requested twice", name)
		}
		seen[name] = struct{}{}
		emitter, err := g.registry.Get(name)
		if err != nil {
			return nil, err
		}
		emitters = append(emitters, emitter)
	}
	return emitters, nil
}
