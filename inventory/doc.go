// Package inventory provides the Bun-backed resource stores for the
// clutter-map hierarchy (projects, rooms, org units, items) plus the actor
// directory. Every nested model carries a denormalized owning-project id so
// the entity resolver answers ownership questions with a single store hit.
// Default structs compose go-repository-bun repositories but can be replaced
// by the host application via dependency injection.
package inventory
