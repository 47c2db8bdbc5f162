package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vocnet/skos-backend/internal/platform/logger"
	"github.com/vocnet/skos-backend/internal/platform/sparql"
	"github.com/vocnet/skos-backend/internal/rdf"
	"github.com/vocnet/skos-backend/internal/skos"
	"github.com/vocnet/skos-backend/internal/vocab"
)

// ErrNotationInUse is returned by Save when another concept of the same
// tenant already carries the notation. This is the uniqueness check
// closing the notation-generation race window: collisions are rejected
// at persistence, never silently overwritten.
var ErrNotationInUse = fmt.Errorf("services: notation already in use for tenant")

// ListQuery selects a page of concepts by modification window and set
// membership. At most one of TenantCode, SetURI and SchemeURI is given;
// empty dimensions impose no filter. The window is [From, Until).
type ListQuery struct {
	From       *time.Time
	Until      *time.Time
	TenantCode string
	SetURI     string
	SchemeURI  string
	Offset     int
	Limit      int
}

// ConceptWindow is one page of an ordered concept listing.
type ConceptWindow struct {
	Concepts []*skos.Concept
	Offset   int
	Limit    int
	HasMore  bool
}

// ConceptService is the store-backed concept registry.
type ConceptService interface {
	skos.ConceptRegistry

	FetchByURI(ctx context.Context, uri string) (*skos.Concept, error)
	EarliestModified(ctx context.Context) (time.Time, error)
	ListInWindow(ctx context.Context, q ListQuery) (*ConceptWindow, error)
	Save(ctx context.Context, c *skos.Concept) error
}

type conceptService struct {
	store Store
	log   *logger.Logger
}

func NewConceptService(store Store, baseLog *logger.Logger) ConceptService {
	return &conceptService{
		store: store,
		log:   baseLog.With("service", "ConceptService"),
	}
}

func (s *conceptService) FetchByURI(ctx context.Context, uri string) (*skos.Concept, error) {
	rows, err := s.store.Select(ctx, describeQuery([]string{uri}))
	if err != nil {
		return nil, fmt.Errorf("fetch concept: %w", err)
	}
	resources := groupBySubject(rows)
	res, ok := resources[uri]
	if !ok {
		return nil, fmt.Errorf("concept %s: %w", uri, rdf.ErrResourceNotFound)
	}
	return &skos.Concept{Resource: res}, nil
}

// AskURI reports whether uri is already used as a resource identifier.
func (s *conceptService) AskURI(ctx context.Context, uri string) (bool, error) {
	return s.store.Ask(ctx, fmt.Sprintf("ASK { <%s> ?p ?o }", uri))
}

// MaxNumericNotation returns the tenant's highest numeric notation, or
// 0 when the tenant has none.
func (s *conceptService) MaxNumericNotation(ctx context.Context, tenantCode string) (int, error) {
	query := fmt.Sprintf(`PREFIX xsd: <http://www.w3.org/2001/XMLSchema#>
SELECT ?notation WHERE {
?s <%s> ?notation .
?s <%s> %s .
FILTER regex(?notation, "^[0-9]+$")
}
ORDER BY DESC(xsd:integer(?notation))
LIMIT 1`,
		vocab.SkosNotation,
		vocab.OpenskosTenant,
		sparql.FormatTerm(sparql.LiteralTerm(tenantCode, "", "")),
	)
	rows, err := s.store.Select(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("max notation: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	var max int
	if _, err := fmt.Sscanf(rows[0]["notation"].Value, "%d", &max); err != nil {
		return 0, fmt.Errorf("max notation %q: %w", rows[0]["notation"].Value, err)
	}
	return max, nil
}

// EarliestModified returns the lowest modification timestamp across the
// repository: ascending sort, first row.
func (s *conceptService) EarliestModified(ctx context.Context) (time.Time, error) {
	query := fmt.Sprintf(`SELECT ?date WHERE { ?subject <%s> ?date } ORDER BY ASC(?date) LIMIT 1`, vocab.DcTermsModified)
	rows, err := s.store.Select(ctx, query)
	if err != nil {
		return time.Time{}, fmt.Errorf("earliest modified: %w", err)
	}
	if len(rows) == 0 {
		return time.Time{}, fmt.Errorf("earliest modified: %w", rdf.ErrResourceNotFound)
	}
	ts, err := time.Parse(time.RFC3339, rows[0]["date"].Value)
	if err != nil {
		return time.Time{}, fmt.Errorf("earliest modified %q: %w", rows[0]["date"].Value, err)
	}
	return ts, nil
}

func (s *conceptService) ListInWindow(ctx context.Context, q ListQuery) (*ConceptWindow, error) {
	if q.Limit <= 0 {
		return nil, fmt.Errorf("list concepts: limit must be positive")
	}

	var b strings.Builder
	b.WriteString("SELECT ?s ?modified WHERE {\n")
	fmt.Fprintf(&b, "?s <%s> <%s> .\n", vocab.RdfType, vocab.SkosConcept)
	fmt.Fprintf(&b, "?s <%s> ?modified .\n", vocab.DcTermsModified)
	fmt.Fprintf(&b, "?s <%s> ?status .\n", vocab.OpenskosStatus)
	if q.TenantCode != "" {
		fmt.Fprintf(&b, "?s <%s> %s .\n", vocab.OpenskosTenant, sparql.FormatTerm(sparql.LiteralTerm(q.TenantCode, "", "")))
	}
	if q.SetURI != "" {
		fmt.Fprintf(&b, "?s <%s> <%s> .\n", vocab.OpenskosSet, q.SetURI)
	}
	if q.SchemeURI != "" {
		fmt.Fprintf(&b, "?s <%s> <%s> .\n", vocab.SkosInScheme, q.SchemeURI)
	}
	// Soft-deleted concepts never appear in listings; the protocol
	// advertises no deleted-record support.
	fmt.Fprintf(&b, "FILTER (?status != %s)\n", sparql.FormatTerm(sparql.LiteralTerm(string(skos.StatusDeleted), "", "")))
	if q.From != nil {
		fmt.Fprintf(&b, "FILTER (?modified >= %s)\n", dateTimeTerm(*q.From))
	}
	if q.Until != nil {
		fmt.Fprintf(&b, "FILTER (?modified < %s)\n", dateTimeTerm(*q.Until))
	}
	b.WriteString("}\nORDER BY ASC(?modified) ?s\n")
	// One row beyond the page tells us whether a resumption is needed.
	fmt.Fprintf(&b, "OFFSET %d LIMIT %d", q.Offset, q.Limit+1)

	rows, err := s.store.Select(ctx, b.String())
	if err != nil {
		return nil, fmt.Errorf("list concepts: %w", err)
	}

	hasMore := len(rows) > q.Limit
	if hasMore {
		rows = rows[:q.Limit]
	}

	subjects := make([]string, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, row["s"].Value)
	}
	concepts, err := s.describeConcepts(ctx, subjects)
	if err != nil {
		return nil, err
	}

	return &ConceptWindow{
		Concepts: concepts,
		Offset:   q.Offset,
		Limit:    q.Limit,
		HasMore:  hasMore,
	}, nil
}

// Save persists the concept's property bag, replacing any previous
// statements of the subject. A notation collision with another concept
// of the same tenant is rejected here, closing the generation race.
func (s *conceptService) Save(ctx context.Context, c *skos.Concept) error {
	if c.IsBlank() {
		return fmt.Errorf("save concept: uri required")
	}

	if notation := c.Notation(); notation != "" && c.Tenant() != "" {
		query := fmt.Sprintf(`ASK {
?other <%s> %s .
?other <%s> %s .
FILTER (?other != <%s>)
}`,
			vocab.SkosNotation, sparql.FormatTerm(sparql.LiteralTerm(notation, "", "")),
			vocab.OpenskosTenant, sparql.FormatTerm(sparql.LiteralTerm(c.Tenant(), "", "")),
			c.URI(),
		)
		taken, err := s.store.Ask(ctx, query)
		if err != nil {
			return fmt.Errorf("save concept: notation check: %w", err)
		}
		if taken {
			return fmt.Errorf("%w: %s/%s", ErrNotationInUse, c.Tenant(), notation)
		}
	}

	if err := s.store.DeleteMatching(ctx, c.URI(), "", nil); err != nil {
		return fmt.Errorf("save concept: clear previous statements: %w", err)
	}
	if err := s.store.InsertData(ctx, resourceTriples(c.Resource)); err != nil {
		return fmt.Errorf("save concept: %w", err)
	}
	s.log.Debug("concept saved", "uri", c.URI(), "tenant", c.Tenant())
	return nil
}

// describeConcepts fetches the full property bags of the given subjects
// and returns them in the order requested.
func (s *conceptService) describeConcepts(ctx context.Context, subjects []string) ([]*skos.Concept, error) {
	if len(subjects) == 0 {
		return nil, nil
	}
	rows, err := s.store.Select(ctx, describeQuery(subjects))
	if err != nil {
		return nil, fmt.Errorf("describe concepts: %w", err)
	}
	resources := groupBySubject(rows)
	concepts := make([]*skos.Concept, 0, len(subjects))
	for _, uri := range subjects {
		if res, ok := resources[uri]; ok {
			concepts = append(concepts, &skos.Concept{Resource: res})
		}
	}
	return concepts, nil
}

func dateTimeTerm(t time.Time) string {
	return sparql.FormatTerm(sparql.LiteralTerm(t.UTC().Format(time.RFC3339), "", rdf.DatatypeDateTime))
}
