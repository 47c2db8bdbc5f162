package services

import (
	"context"
	"fmt"

	"github.com/vocnet/skos-backend/internal/platform/logger"
	"github.com/vocnet/skos-backend/internal/skos"
	"github.com/vocnet/skos-backend/internal/vocab"
)

// SchemeService reads concept schemes from the store.
type SchemeService interface {
	// SchemesByCollectionURI returns the schemes attached to a
	// collection, in store order.
	SchemesByCollectionURI(ctx context.Context, collectionURI string) ([]*skos.ConceptScheme, error)
}

type schemeService struct {
	store Store
	log   *logger.Logger
}

func NewSchemeService(store Store, baseLog *logger.Logger) SchemeService {
	return &schemeService{
		store: store,
		log:   baseLog.With("service", "SchemeService"),
	}
}

func (s *schemeService) SchemesByCollectionURI(ctx context.Context, collectionURI string) ([]*skos.ConceptScheme, error) {
	query := fmt.Sprintf(`SELECT ?scheme WHERE {
?scheme <%s> <%s> .
?scheme <%s> <%s> .
}`,
		vocab.RdfType, vocab.SkosConceptScheme,
		vocab.OpenskosSet, collectionURI,
	)
	rows, err := s.store.Select(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch schemes: %w", err)
	}
	subjects := make([]string, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, row["scheme"].Value)
	}
	if len(subjects) == 0 {
		return nil, nil
	}

	describeRows, err := s.store.Select(ctx, describeQuery(subjects))
	if err != nil {
		return nil, fmt.Errorf("describe schemes: %w", err)
	}
	resources := groupBySubject(describeRows)
	schemes := make([]*skos.ConceptScheme, 0, len(subjects))
	for _, subject := range subjects {
		if res, ok := resources[subject]; ok {
			schemes = append(schemes, &skos.ConceptScheme{Resource: res})
		}
	}
	return schemes, nil
}
