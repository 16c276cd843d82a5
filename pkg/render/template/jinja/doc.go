// Package jinja implements the strict template engine used to render the
// scaffolding bundles. It understands a Jinja-style subset:
//
//	{{ entity.name }}                         output
//	{{ entity.name.lower() }}                 string method call
//	{{ prop.name | camel }}                   filter
//	{% for prop in entity.properties %}       loop (optionally `if <cond>`)
//	{% if not loop.last %},{% endif %}        conditional (elif/else)
//	{# comment #}                             dropped
//
// Unlike lenient template engines it never renders a missing reference as an
// empty string. Malformed markup fails with *SyntaxError, unbound names,
// attributes, methods and filters with *UnknownReferenceError, and values used
// in the wrong place (a loop over a string, a condition over a non-boolean)
// with *TypeMismatchError. Each carries the template name, line and column.
//
// Rendering is all-or-nothing and side-effect free: parsed templates are
// immutable, each execution writes into its own buffer, and writers passed to
// the Engine only receive output after the render succeeded.
package jinja
