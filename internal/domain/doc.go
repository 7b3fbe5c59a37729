// Package domain defines the core domain types and contracts.
//
// This package contains concept-oriented files (session.go, scale.go, store.go)
// with shared types and cross-cutting interfaces. No implementation code - just
// contracts and value types. Prevents circular imports by keeping interfaces on
// the consumer side.
package domain
