package crudgen

import (
	"embed"
	"io/fs"
)

//go:embed templates/nestjs/*.tpl
var embeddedTemplates embed.FS

// EmbeddedTemplates exposes the built-in NestJS bundle. Names are relative to
// the returned FS root, for example "nestjs/dto.ts.tpl".
func EmbeddedTemplates() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}
