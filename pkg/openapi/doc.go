// Package openapi exposes the contracts for bridging entities and OpenAPI 3
// documents: importing entities from `components.schemas` and building a
// CRUD document for a set of entities. Implementations live under
// internal/openapi to keep kin-openapi out of the public surface.
package openapi
