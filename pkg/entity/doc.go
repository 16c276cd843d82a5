// Package entity defines the read-only metadata that drives scaffolding: an
// EntitySchema names the resource being generated and carries its ordered
// property list. Property order is significant, it controls emitted field order
// and the position-based loop helpers exposed to templates.
package entity
