package contract

import "context"

// QueryRunner submits a read-only Cypher query to the menu graph store.
// The query text is opaque to the caller; only the rows come back typed.
type QueryRunner interface {
	Query(ctx context.Context, cypher string) ([]Row, error)
}

// SchemaProvider describes the graph schema for prompt construction.
type SchemaProvider interface {
	SchemaDescription(ctx context.Context) (string, error)
}

// GraphStore is the full capability the menu tooling needs.
type GraphStore interface {
	QueryRunner
	SchemaProvider
}

// MenuQA answers a free-text menu question, typically by generating a
// Cypher query, executing it, and synthesizing an answer.
type MenuQA interface {
	Answer(ctx context.Context, question string) (string, error)
}

// OrderArchiver persists a confirmed order outside the session.
type OrderArchiver interface {
	Archive(ctx context.Context, order Order) error
}
