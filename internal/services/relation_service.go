package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vocnet/skos-backend/internal/platform/apierr"
	"github.com/vocnet/skos-backend/internal/platform/logger"
	"github.com/vocnet/skos-backend/internal/platform/sparql"
	"github.com/vocnet/skos-backend/internal/skos"
	"github.com/vocnet/skos-backend/internal/vocab"
)

var (
	// ErrRelationNotSupported is returned when a relation type is in no
	// vocabulary, built-in or tenant-registered.
	ErrRelationNotSupported = fmt.Errorf("services: relation type not supported")

	// ErrRelationInferred is returned when a transitive-closure type is
	// used for a direct write.
	ErrRelationInferred = fmt.Errorf("services: relation type is inferred, not supported explicitly")
)

// RelationParty is one end of a flattened relation tuple.
type RelationParty struct {
	UUID        string `json:"uuid"`
	PrefLabel   string `json:"prefLabel"`
	Lang        string `json:"lang"`
	SchemeTitle string `json:"schema_title"`
	SchemeURI   string `json:"schema_uri"`
}

// RelationTriple is a flattened typed edge between two concepts.
type RelationTriple struct {
	Subject   RelationParty `json:"s"`
	Predicate string        `json:"p"`
	Object    RelationParty `json:"o"`
}

// RelationService owns the relation-type vocabulary and typed edges
// between concepts.
type RelationService interface {
	// RelationTypes maps relation short names to their URIs: the
	// built-in SKOS set merged with tenant-registered types.
	RelationTypes(ctx context.Context) (map[string]string, error)

	// RelationTypeURIs is the flat URI list used for membership checks.
	RelationTypeURIs(ctx context.Context) ([]string, error)

	AddRelation(ctx context.Context, subjectURI, relationType string, objectURIs []string) error
	DeleteRelation(ctx context.Context, subjectURI, relationType, objectURI string) error
	FetchAllRelationsOfType(ctx context.Context, relationTypes, sourceSchemes, targetSchemes []string) ([]RelationTriple, error)
	FetchRelationsForConcept(ctx context.Context, uri, relationType, schemeURI string) ([]*skos.Concept, error)
}

type relationService struct {
	store    Store
	cache    *goredis.Client
	log      *logger.Logger
	maxRows  int
	cacheTTL time.Duration
}

// relationVocabulary is the cached shape of the dynamic vocabulary.
type relationVocabulary struct {
	Types    map[string]string `json:"types"`
	Inverses map[string]string `json:"inverses"`
}

const relationVocabularyCacheKey = "vocab:relation-types"

// NewRelationService builds the relation manager. cache may be nil, in
// which case every vocabulary resolution reads the store directly.
func NewRelationService(store Store, cache *goredis.Client, baseLog *logger.Logger, maxRows int) RelationService {
	if maxRows <= 0 {
		maxRows = 500
	}
	return &relationService{
		store:    store,
		cache:    cache,
		log:      baseLog.With("service", "RelationService"),
		maxRows:  maxRows,
		cacheTTL: 5 * time.Minute,
	}
}

func (s *relationService) RelationTypes(ctx context.Context) (map[string]string, error) {
	voc, err := s.vocabulary(ctx)
	if err != nil {
		return nil, err
	}
	return voc.Types, nil
}

func (s *relationService) RelationTypeURIs(ctx context.Context) ([]string, error) {
	voc, err := s.vocabulary(ctx)
	if err != nil {
		return nil, err
	}
	uris := make([]string, 0, len(voc.Types))
	for _, uri := range voc.Types {
		uris = append(uris, uri)
	}
	return uris, nil
}

func (s *relationService) AddRelation(ctx context.Context, subjectURI, relationType string, objectURIs []string) error {
	voc, err := s.vocabulary(ctx)
	if err != nil {
		return err
	}
	relURI, ok := voc.resolve(relationType)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRelationNotSupported, relationType)
	}
	if vocab.IsTransitiveRelation(relURI) {
		return fmt.Errorf("%w: %s", ErrRelationInferred, relURI)
	}

	triples := make([]sparql.Triple, 0, len(objectURIs))
	for _, object := range objectURIs {
		triples = append(triples, sparql.Triple{
			Subject:   subjectURI,
			Predicate: relURI,
			Object:    sparql.URITerm(object),
		})
	}
	if err := s.store.InsertData(ctx, triples); err != nil {
		return fmt.Errorf("add relation: %w", err)
	}
	return nil
}

// DeleteRelation removes the edge in both directions: the forward edge,
// then the inverse edge looked up from the merged inverse map. The two
// mutations are independent; a failure in between leaves one direction
// intact and is surfaced for the caller to retry.
func (s *relationService) DeleteRelation(ctx context.Context, subjectURI, relationType, objectURI string) error {
	voc, err := s.vocabulary(ctx)
	if err != nil {
		return err
	}
	relURI, ok := voc.resolve(relationType)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRelationNotSupported, relationType)
	}
	inverse, ok := voc.Inverses[relURI]
	if !ok {
		return fmt.Errorf("%w: no inverse for %s", ErrRelationNotSupported, relURI)
	}

	forward := sparql.URITerm(objectURI)
	if err := s.store.DeleteMatching(ctx, subjectURI, relURI, &forward); err != nil {
		return fmt.Errorf("delete relation: forward edge: %w", err)
	}
	backward := sparql.URITerm(subjectURI)
	if err := s.store.DeleteMatching(ctx, objectURI, inverse, &backward); err != nil {
		return fmt.Errorf("delete relation: inverse edge (forward already removed, retry): %w", err)
	}
	return nil
}

func (s *relationService) FetchAllRelationsOfType(ctx context.Context, relationTypes, sourceSchemes, targetSchemes []string) ([]RelationTriple, error) {
	voc, err := s.vocabulary(ctx)
	if err != nil {
		return nil, err
	}

	relURIs := make([]string, 0, len(relationTypes))
	for _, rel := range relationTypes {
		uri, ok := voc.resolve(rel)
		if !ok {
			// Unknown types in a query filter carry the not-implemented
			// signal, distinct from plain validation failures.
			return nil, apierr.NotImplemented(fmt.Errorf("relation %s is not implemented", rel))
		}
		relURIs = append(relURIs, uri)
	}

	filter := buildRelationFilter(relURIs, sourceSchemes, targetSchemes)
	query := fmt.Sprintf(`SELECT DISTINCT ?rel ?s_uuid ?s_prefLabel ?s_schema ?s_schema_title ?o_uuid ?o_prefLabel ?o_schema ?o_schema_title WHERE {
?s ?rel ?o .
?s <%[1]s> ?s_prefLabel .
?s <%[2]s> ?s_uuid .
?s <%[3]s> ?s_schema .
?s_schema <%[4]s> ?s_schema_title .
?o <%[1]s> ?o_prefLabel .
?o <%[2]s> ?o_uuid .
?o <%[3]s> ?o_schema .
?o_schema <%[4]s> ?o_schema_title .
%[5]s}`,
		vocab.SkosPrefLabel, vocab.OpenskosUUID, vocab.SkosInScheme, vocab.DcTermsTitle, filter)

	rows, err := s.store.Select(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch relations: %w", err)
	}

	triples := make([]RelationTriple, 0, len(rows))
	for _, row := range rows {
		triples = append(triples, RelationTriple{
			Subject: RelationParty{
				UUID:        row["s_uuid"].Value,
				PrefLabel:   row["s_prefLabel"].Value,
				Lang:        row["s_prefLabel"].Lang,
				SchemeTitle: row["s_schema_title"].Value,
				SchemeURI:   row["s_schema"].Value,
			},
			Predicate: row["rel"].Value,
			Object: RelationParty{
				UUID:        row["o_uuid"].Value,
				PrefLabel:   row["o_prefLabel"].Value,
				Lang:        row["o_prefLabel"].Lang,
				SchemeTitle: row["o_schema_title"].Value,
				SchemeURI:   row["o_schema"].Value,
			},
		})
	}
	return triples, nil
}

func (s *relationService) FetchRelationsForConcept(ctx context.Context, uri, relationType, schemeURI string) ([]*skos.Concept, error) {
	voc, err := s.vocabulary(ctx)
	if err != nil {
		return nil, err
	}
	relURI, ok := voc.resolve(relationType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRelationNotSupported, relationType)
	}

	var b strings.Builder
	b.WriteString("SELECT ?subject WHERE {\n")
	fmt.Fprintf(&b, "<%s> <%s> ?subject .\n", uri, relURI)
	fmt.Fprintf(&b, "?subject <%s> <%s> .\n", vocab.RdfType, vocab.SkosConcept)
	if schemeURI != "" {
		fmt.Fprintf(&b, "?subject <%s> <%s> .\n", vocab.SkosInScheme, schemeURI)
	}
	fmt.Fprintf(&b, "} LIMIT %d", s.maxRows)

	rows, err := s.store.Select(ctx, b.String())
	if err != nil {
		return nil, fmt.Errorf("fetch relations for concept: %w", err)
	}
	subjects := make([]string, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, row["subject"].Value)
	}
	if len(subjects) == 0 {
		return nil, nil
	}

	describeRows, err := s.store.Select(ctx, describeQuery(subjects))
	if err != nil {
		return nil, fmt.Errorf("fetch relations for concept: %w", err)
	}
	resources := groupBySubject(describeRows)
	concepts := make([]*skos.Concept, 0, len(subjects))
	for _, subject := range subjects {
		if res, ok := resources[subject]; ok {
			concepts = append(concepts, &skos.Concept{Resource: res})
		}
	}
	return concepts, nil
}

// resolve accepts either a relation short name or a full URI.
func (v relationVocabulary) resolve(nameOrURI string) (string, bool) {
	if uri, ok := v.Types[nameOrURI]; ok {
		return uri, true
	}
	for _, uri := range v.Types {
		if uri == nameOrURI {
			return uri, true
		}
	}
	return "", false
}

// vocabulary merges the built-in SKOS relation types with the
// tenant-registered ones read from the store's predicate definitions,
// consulting the cache first.
func (s *relationService) vocabulary(ctx context.Context) (relationVocabulary, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, relationVocabularyCacheKey).Bytes(); err == nil {
			var cached relationVocabulary
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	voc := relationVocabulary{
		Types:    make(map[string]string),
		Inverses: vocab.InverseRelations(),
	}
	for _, uri := range vocab.RelationTypes() {
		voc.Types[vocab.ShortName(uri)] = uri
	}

	query := fmt.Sprintf(`SELECT ?uri ?inverse WHERE {
?uri <%s> <%s> .
OPTIONAL { ?uri <%s> ?inverse }
}`, vocab.RdfType, vocab.OwlObjectProperty, vocab.OwlInverseOf)
	rows, err := s.store.Select(ctx, query)
	if err != nil {
		return relationVocabulary{}, fmt.Errorf("fetch custom relation types: %w", err)
	}
	for _, row := range rows {
		uri := row["uri"].Value
		voc.Types[vocab.ShortName(uri)] = uri
		if inv, ok := row["inverse"]; ok && inv.Value != "" {
			voc.Inverses[uri] = inv.Value
			voc.Inverses[inv.Value] = uri
		}
	}

	if s.cache != nil {
		if raw, err := json.Marshal(voc); err == nil {
			if err := s.cache.Set(ctx, relationVocabularyCacheKey, raw, s.cacheTTL).Err(); err != nil {
				s.log.Warn("relation vocabulary cache write failed", "error", err)
			}
		}
	}
	return voc, nil
}

// buildRelationFilter combines the three filter dimensions. Each
// non-empty dimension becomes an OR-group of equality comparisons;
// present groups are ANDed. Absent dimensions impose no filter.
func buildRelationFilter(relURIs, sourceSchemes, targetSchemes []string) string {
	var groups []string
	if g := orGroup("?rel", relURIs); g != "" {
		groups = append(groups, g)
	}
	if g := orGroup("?s_schema", sourceSchemes); g != "" {
		groups = append(groups, g)
	}
	if g := orGroup("?o_schema", targetSchemes); g != "" {
		groups = append(groups, g)
	}
	if len(groups) == 0 {
		return ""
	}
	return "FILTER ( " + strings.Join(groups, " && ") + " )\n"
}

func orGroup(variable string, uris []string) string {
	if len(uris) == 0 {
		return ""
	}
	terms := make([]string, 0, len(uris))
	for _, uri := range uris {
		terms = append(terms, fmt.Sprintf("%s = <%s>", variable, uri))
	}
	return "( " + strings.Join(terms, " || ") + " )"
}
