// Package schema loads entity definitions from YAML or JSON documents.
//
// A document holds either a single entity at the top level:
//
//	name: User
//	properties:
//	  - name: email
//	    type: string
//	    required: true
//
// or a list under `entities:`. Declaration order of entities and of their
// properties is preserved. Documents are read through a Loader that resolves
// file, fs.FS and (opt-in) HTTP sources.
package schema
