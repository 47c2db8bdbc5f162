package services

import (
	"context"
	"fmt"

	"github.com/vocnet/skos-backend/internal/platform/logger"
	"github.com/vocnet/skos-backend/internal/platform/sparql"
	"github.com/vocnet/skos-backend/internal/rdf"
	"github.com/vocnet/skos-backend/internal/skos"
	"github.com/vocnet/skos-backend/internal/vocab"
)

// PersonService resolves repository actors. It implements
// skos.PersonLookup; both lookups report missing persons with
// rdf.ErrResourceNotFound.
type PersonService interface {
	skos.PersonLookup
}

type personService struct {
	store Store
	log   *logger.Logger
}

func NewPersonService(store Store, baseLog *logger.Logger) PersonService {
	return &personService{
		store: store,
		log:   baseLog.With("service", "PersonService"),
	}
}

func (s *personService) FetchByName(ctx context.Context, name string) (*skos.Person, error) {
	query := fmt.Sprintf(`SELECT ?person WHERE {
?person <%s> <%s> .
?person <%s> %s .
} LIMIT 1`,
		vocab.RdfType, vocab.FoafPerson,
		vocab.FoafName, sparql.FormatTerm(sparql.LiteralTerm(name, "", "")),
	)
	rows, err := s.store.Select(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch person by name: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("person %q: %w", name, rdf.ErrResourceNotFound)
	}
	return s.FetchByURI(ctx, rows[0]["person"].Value)
}

func (s *personService) FetchByURI(ctx context.Context, uri string) (*skos.Person, error) {
	rows, err := s.store.Select(ctx, describeQuery([]string{uri}))
	if err != nil {
		return nil, fmt.Errorf("fetch person: %w", err)
	}
	resources := groupBySubject(rows)
	res, ok := resources[uri]
	if !ok {
		return nil, fmt.Errorf("person %s: %w", uri, rdf.ErrResourceNotFound)
	}
	return &skos.Person{Resource: res}, nil
}
