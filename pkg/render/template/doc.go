// Package template defines the engine-agnostic rendering contract. Two
// engines implement it: jinja, the strict default used by the built-in
// bundles, and gotemplate, which wraps go-template for user bundles written in
// Django syntax.
package template
