package services

import (
	"context"

	"github.com/vocnet/skos-backend/internal/platform/sparql"
)

// Store is the triple-store contract the services issue against:
// declarative queries returning ordered bindings, and insert/delete
// mutations with no multi-update atomicity guarantee.
type Store interface {
	Select(ctx context.Context, query string) ([]sparql.Binding, error)
	Ask(ctx context.Context, query string) (bool, error)
	InsertData(ctx context.Context, triples []sparql.Triple) error
	DeleteMatching(ctx context.Context, subject, predicate string, object *sparql.Term) error
}
