// Package generator turns entity schemas into source artifacts.
//
// An Emitter produces one Artifact for one entity. Emitters are collected in
// a Registry and driven by a Generator, which validates the entity, runs the
// requested targets and checks the generated code for the markers each target
// declares. A Writer persists artifacts under an output directory.
//
//	engine, _ := jinja.New(jinja.WithFS(crudgen.EmbeddedTemplates()))
//	service, _ := generator.NewTemplateEmitter("service", engine, "nestjs/service.ts",
//		"services/{{ entity.name.lower() }}.service.ts",
//		generator.WithMarkers("@Injectable", "constructor", "async"))
//	gen, _ := generator.New(generator.WithEmitters(service))
//	artifacts, err := gen.Generate(ctx, generator.Request{Entity: user})
package generator
