// Package surrealoverlay is the overlay server: configuration parsing, backend
// selection, the HTTP API over [github.com/surrealdb/surrealoverlay/pkg/store.Gateway]
// and the run and migrate commands.
//
// [Main] is the whole program behind cmd/surrealoverlay and can be called
// from tests:
//
//	surrealoverlay -store memory run
//	surrealoverlay -store postgres migrate
//	surrealoverlay -config overlay.yaml run
//
// Writes can be blocked at runtime through the read-only admin endpoint, for
// example while the backing database is being maintained.
package surrealoverlay
