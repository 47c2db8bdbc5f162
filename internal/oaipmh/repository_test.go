package oaipmh

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vocnet/skos-backend/internal/platform/logger"
	"github.com/vocnet/skos-backend/internal/rdf"
	"github.com/vocnet/skos-backend/internal/repos"
	"github.com/vocnet/skos-backend/internal/services"
	"github.com/vocnet/skos-backend/internal/skos"
	"github.com/vocnet/skos-backend/internal/types"
	"github.com/vocnet/skos-backend/internal/vocab"
)

type fakeConcepts struct {
	byURI      map[string]*skos.Concept
	earliest   time.Time
	noEarliest bool

	listFn    func(q services.ListQuery) (*services.ConceptWindow, error)
	lastQuery services.ListQuery
}

func (f *fakeConcepts) MaxNumericNotation(_ context.Context, _ string) (int, error) { return 0, nil }
func (f *fakeConcepts) AskURI(_ context.Context, _ string) (bool, error)            { return false, nil }
func (f *fakeConcepts) Save(_ context.Context, _ *skos.Concept) error               { return nil }

func (f *fakeConcepts) FetchByURI(_ context.Context, uri string) (*skos.Concept, error) {
	c, ok := f.byURI[uri]
	if !ok {
		return nil, fmt.Errorf("concept %s: %w", uri, rdf.ErrResourceNotFound)
	}
	return c, nil
}

func (f *fakeConcepts) EarliestModified(_ context.Context) (time.Time, error) {
	if f.noEarliest {
		return time.Time{}, fmt.Errorf("earliest: %w", rdf.ErrResourceNotFound)
	}
	return f.earliest, nil
}

func (f *fakeConcepts) ListInWindow(_ context.Context, q services.ListQuery) (*services.ConceptWindow, error) {
	f.lastQuery = q
	if f.listFn != nil {
		return f.listFn(q)
	}
	return &services.ConceptWindow{Offset: q.Offset, Limit: q.Limit}, nil
}

type fakeSchemes struct {
	byCollection map[string][]*skos.ConceptScheme
}

func (f *fakeSchemes) SchemesByCollectionURI(_ context.Context, uri string) ([]*skos.ConceptScheme, error) {
	return f.byCollection[uri], nil
}

type fakeCollections struct {
	rows []*types.Collection
}

func (f *fakeCollections) ListWithTenants(_ context.Context) ([]*types.Collection, error) {
	return f.rows, nil
}

func (f *fakeCollections) GetByTenantAndCode(_ context.Context, tenantCode, code string) (*types.Collection, error) {
	for _, col := range f.rows {
		if col.TenantCode == tenantCode && col.Code == code {
			return col, nil
		}
	}
	return nil, fmt.Errorf("collection %s/%s: %w", tenantCode, code, repos.ErrNotFound)
}

func (f *fakeCollections) GetByURI(_ context.Context, uri string) (*types.Collection, error) {
	for _, col := range f.rows {
		if col.URI == uri {
			return col, nil
		}
	}
	return nil, fmt.Errorf("collection %s: %w", uri, repos.ErrNotFound)
}

func newScheme(uri, title string) *skos.ConceptScheme {
	s := skos.NewConceptScheme(uri)
	s.Add(vocab.DcTermsTitle, rdf.NewLiteral(title))
	return s
}

func newConcept(uri, tenant, setURI, modified string) *skos.Concept {
	c := skos.NewConcept(uri)
	c.Add(vocab.OpenskosTenant, rdf.NewLiteral(tenant))
	c.Add(vocab.OpenskosSet, rdf.NewURI(setURI))
	c.Add(vocab.DcTermsModified, rdf.NewTypedLiteral(modified, rdf.DatatypeDateTime))
	c.Add(vocab.SkosPrefLabel, rdf.NewLangLiteral("dog", "en"))
	return c
}

func testRepository(t *testing.T, concepts *fakeConcepts) (*Repository, *fakeCollections) {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	acme := &types.Tenant{Code: "acme", Name: "Acme Institute"}
	beta := &types.Tenant{Code: "beta", Name: "Beta Archive"}
	collections := &fakeCollections{rows: []*types.Collection{
		{Code: "terms", TenantCode: "acme", Tenant: acme, Title: "General Terms", URI: "http://vocab.example.org/collection/terms"},
		{Code: "topics", TenantCode: "acme", Tenant: acme, Title: "Topics", URI: "http://vocab.example.org/collection/topics"},
		{Code: "general", TenantCode: "beta", Tenant: beta, Title: "Beta General", URI: "http://beta.example.org/collection/general"},
	}}
	schemes := &fakeSchemes{byCollection: map[string][]*skos.ConceptScheme{
		"http://vocab.example.org/collection/terms": {
			newScheme("http://vocab.example.org/animals", "Animals"),
			newScheme("http://vocab.example.org/plants", "Plants"),
		},
	}}
	repo := NewRepository(concepts, schemes, collections, log, RepositoryConfig{
		Name:        "Concept Registry",
		BaseURL:     "https://vocab.example.org/oai-pmh",
		AdminEmails: []string{"curator@example.org"},
		PageSize:    2,
	})
	return repo, collections
}

func TestIdentify(t *testing.T) {
	concepts := &fakeConcepts{earliest: time.Date(2012, 3, 1, 8, 30, 0, 0, time.UTC)}
	repo, _ := testRepository(t, concepts)

	id, err := repo.Identify(context.Background())
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if id.EarliestDatestamp != "2012-03-01T08:30:00Z" {
		t.Fatalf("earliest: got=%q", id.EarliestDatestamp)
	}
	if id.DeletedRecord != "no" {
		t.Fatalf("deleted record support: got=%q", id.DeletedRecord)
	}
	if id.Granularity != "YYYY-MM-DDThh:mm:ssZ" {
		t.Fatalf("granularity: got=%q", id.Granularity)
	}
	if id.ProtocolVersion != "2.0" || id.RepositoryName != "Concept Registry" {
		t.Fatalf("descriptor: got=%+v", id)
	}
}

func TestIdentifyEmptyRepository(t *testing.T) {
	repo, _ := testRepository(t, &fakeConcepts{noEarliest: true})

	id, err := repo.Identify(context.Background())
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if id.EarliestDatestamp != "1970-01-01T00:00:00Z" {
		t.Fatalf("earliest on empty repository: got=%q", id.EarliestDatestamp)
	}
}

func TestListSetsHierarchy(t *testing.T) {
	repo, _ := testRepository(t, &fakeConcepts{})

	list, err := repo.ListSets(context.Background())
	if err != nil {
		t.Fatalf("ListSets: %v", err)
	}
	want := []Set{
		{Spec: "acme", Name: "Acme Institute"},
		{Spec: "acme:terms", Name: "General Terms"},
		{Spec: "acme:terms:vocab.example.org/animals", Name: "Animals"},
		{Spec: "acme:terms:vocab.example.org/plants", Name: "Plants"},
		{Spec: "acme:topics", Name: "Topics"},
		{Spec: "beta", Name: "Beta Archive"},
		{Spec: "beta:general", Name: "Beta General"},
	}
	if len(list.Sets) != len(want) {
		t.Fatalf("set count: want=%d got=%d (%+v)", len(want), len(list.Sets), list.Sets)
	}
	for i, w := range want {
		if list.Sets[i].Spec != w.Spec || list.Sets[i].Name != w.Name {
			t.Fatalf("set %d: want=%+v got=%+v", i, w, list.Sets[i])
		}
	}
}

func TestListSetsByTokenValidatesToken(t *testing.T) {
	repo, _ := testRepository(t, &fakeConcepts{})

	if _, err := repo.ListSetsByToken(context.Background(), "%%%not-a-token"); err == nil {
		t.Fatalf("malformed token: expected error")
	}
	valid := NewResumptionToken(0, MetadataPrefixRDF, "", nil, nil).Encode()
	list, err := repo.ListSetsByToken(context.Background(), valid)
	if err != nil {
		t.Fatalf("ListSetsByToken: %v", err)
	}
	if len(list.Sets) == 0 {
		t.Fatalf("expected full set listing after token validation")
	}
}

func TestListRecordsEmitsAndConsumesToken(t *testing.T) {
	page := []*skos.Concept{
		newConcept("http://ex/c1", "acme", "http://vocab.example.org/collection/terms", "2020-01-01T00:00:00Z"),
		newConcept("http://ex/c2", "acme", "http://vocab.example.org/collection/terms", "2020-01-02T00:00:00Z"),
	}
	concepts := &fakeConcepts{
		listFn: func(q services.ListQuery) (*services.ConceptWindow, error) {
			return &services.ConceptWindow{
				Concepts: page,
				Offset:   q.Offset,
				Limit:    q.Limit,
				HasMore:  q.Offset == 0,
			}, nil
		},
	}
	repo, _ := testRepository(t, concepts)

	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	first, err := repo.ListRecords(context.Background(), MetadataPrefixRDF, "acme", &from, nil)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(first.Records) != 2 {
		t.Fatalf("records: want=2 got=%d", len(first.Records))
	}
	if first.ResumptionToken == "" {
		t.Fatalf("expected resumption token on partial listing")
	}
	if got := first.Records[0].Header; got.Identifier != "http://ex/c1" || got.Datestamp != "2020-01-01T00:00:00Z" {
		t.Fatalf("header: got=%+v", got)
	}
	if got := first.Records[0].Header.SetSpecs; len(got) != 2 || got[0] != "acme" || got[1] != "acme:terms" {
		t.Fatalf("header set specs: got=%v", got)
	}

	tok, err := DecodeToken(first.ResumptionToken)
	if err != nil {
		t.Fatalf("decode emitted token: %v", err)
	}
	if tok.Offset != 2 || tok.Set != "acme" || tok.MetadataPrefix != MetadataPrefixRDF {
		t.Fatalf("token must carry the original query: got=%+v", tok)
	}
	if got := tok.FromTime(); got == nil || !got.Equal(from) {
		t.Fatalf("token window: want=%v got=%v", from, got)
	}

	second, err := repo.ListRecordsByToken(context.Background(), first.ResumptionToken)
	if err != nil {
		t.Fatalf("ListRecordsByToken: %v", err)
	}
	if second.ResumptionToken != "" {
		t.Fatalf("exhausted listing must omit the token")
	}
	if concepts.lastQuery.Offset != 2 || concepts.lastQuery.TenantCode != "acme" {
		t.Fatalf("resumed query: got=%+v", concepts.lastQuery)
	}
}

func TestListRecordsNoMatch(t *testing.T) {
	repo, _ := testRepository(t, &fakeConcepts{})

	_, err := repo.ListRecords(context.Background(), MetadataPrefixRDF, "", nil, nil)
	var protoErr *Error
	if !errors.As(err, &protoErr) || protoErr.Code != CodeNoRecordsMatch {
		t.Fatalf("empty window: want=noRecordsMatch got=%v", err)
	}
}

func TestListRecordsUnknownFormat(t *testing.T) {
	repo, _ := testRepository(t, &fakeConcepts{})

	_, err := repo.ListRecords(context.Background(), "oai_dc", "", nil, nil)
	var protoErr *Error
	if !errors.As(err, &protoErr) || protoErr.Code != CodeCannotDisseminateFormat {
		t.Fatalf("unknown format: want=cannotDisseminateFormat got=%v", err)
	}
}

func TestSetSpecResolution(t *testing.T) {
	concepts := &fakeConcepts{
		listFn: func(q services.ListQuery) (*services.ConceptWindow, error) {
			return &services.ConceptWindow{
				Concepts: []*skos.Concept{newConcept("http://ex/c1", "acme", "http://vocab.example.org/collection/terms", "2020-01-01T00:00:00Z")},
				Offset:   q.Offset,
				Limit:    q.Limit,
			}, nil
		},
	}
	repo, _ := testRepository(t, concepts)
	ctx := context.Background()

	if _, err := repo.ListIdentifiers(ctx, MetadataPrefixRDF, "acme", nil, nil); err != nil {
		t.Fatalf("tenant set: %v", err)
	}
	if concepts.lastQuery.TenantCode != "acme" || concepts.lastQuery.SetURI != "" {
		t.Fatalf("tenant set query: got=%+v", concepts.lastQuery)
	}

	if _, err := repo.ListIdentifiers(ctx, MetadataPrefixRDF, "acme:terms", nil, nil); err != nil {
		t.Fatalf("collection set: %v", err)
	}
	if concepts.lastQuery.SetURI != "http://vocab.example.org/collection/terms" {
		t.Fatalf("collection set query: got=%+v", concepts.lastQuery)
	}

	if _, err := repo.ListIdentifiers(ctx, MetadataPrefixRDF, "acme:terms:vocab.example.org/animals", nil, nil); err != nil {
		t.Fatalf("scheme set: %v", err)
	}
	if concepts.lastQuery.SchemeURI != "http://vocab.example.org/animals" {
		t.Fatalf("scheme set query: got=%+v", concepts.lastQuery)
	}

	_, err := repo.ListIdentifiers(ctx, MetadataPrefixRDF, "acme:nope", nil, nil)
	var protoErr *Error
	if !errors.As(err, &protoErr) || protoErr.Code != CodeNoRecordsMatch {
		t.Fatalf("unknown collection: want=noRecordsMatch got=%v", err)
	}

	_, err = repo.ListIdentifiers(ctx, MetadataPrefixRDF, "a:b:c:d", nil, nil)
	if !errors.As(err, &protoErr) || protoErr.Code != CodeBadArgument {
		t.Fatalf("four-level set: want=badArgument got=%v", err)
	}
}

func TestGetRecordHidesDeleted(t *testing.T) {
	deleted := newConcept("http://ex/gone", "acme", "http://vocab.example.org/collection/terms", "2020-01-01T00:00:00Z")
	deleted.SetStatus(skos.StatusDeleted)
	concepts := &fakeConcepts{byURI: map[string]*skos.Concept{
		"http://ex/gone": deleted,
		"http://ex/c1":   newConcept("http://ex/c1", "acme", "http://vocab.example.org/collection/terms", "2020-01-01T00:00:00Z"),
	}}
	repo, _ := testRepository(t, concepts)
	ctx := context.Background()

	record, err := repo.GetRecord(ctx, "http://ex/c1", MetadataPrefixRDF)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if record.Header.Identifier != "http://ex/c1" || len(record.Metadata) == 0 {
		t.Fatalf("record: got=%+v", record)
	}

	var protoErr *Error
	_, err = repo.GetRecord(ctx, "http://ex/gone", MetadataPrefixRDF)
	if !errors.As(err, &protoErr) || protoErr.Code != CodeIDDoesNotExist {
		t.Fatalf("deleted record: want=idDoesNotExist got=%v", err)
	}
	_, err = repo.GetRecord(ctx, "http://ex/missing", MetadataPrefixRDF)
	if !errors.As(err, &protoErr) || protoErr.Code != CodeIDDoesNotExist {
		t.Fatalf("missing record: want=idDoesNotExist got=%v", err)
	}
}

func TestListMetadataFormats(t *testing.T) {
	concepts := &fakeConcepts{byURI: map[string]*skos.Concept{
		"http://ex/c1": newConcept("http://ex/c1", "acme", "http://vocab.example.org/collection/terms", "2020-01-01T00:00:00Z"),
	}}
	repo, _ := testRepository(t, concepts)
	ctx := context.Background()

	formats, err := repo.ListMetadataFormats(ctx, "")
	if err != nil {
		t.Fatalf("ListMetadataFormats: %v", err)
	}
	if len(formats) != 1 || formats[0].Prefix != MetadataPrefixRDF {
		t.Fatalf("formats: got=%+v", formats)
	}

	var protoErr *Error
	_, err = repo.ListMetadataFormats(ctx, "http://ex/missing")
	if !errors.As(err, &protoErr) || protoErr.Code != CodeIDDoesNotExist {
		t.Fatalf("scoped formats: want=idDoesNotExist got=%v", err)
	}
}
