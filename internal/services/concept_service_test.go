package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vocnet/skos-backend/internal/platform/sparql"
	"github.com/vocnet/skos-backend/internal/rdf"
	"github.com/vocnet/skos-backend/internal/skos"
	"github.com/vocnet/skos-backend/internal/vocab"
)

func describeRow(subject, predicate string, object sparql.Term) sparql.Binding {
	return sparql.Binding{
		"s": sparql.URITerm(subject),
		"p": sparql.URITerm(predicate),
		"o": object,
	}
}

func TestMaxNumericNotation(t *testing.T) {
	store := &fakeStore{
		selectFn: func(query string) ([]sparql.Binding, error) {
			if !strings.Contains(query, "regex(?notation") {
				t.Fatalf("unexpected query: %s", query)
			}
			return []sparql.Binding{{"notation": sparql.LiteralTerm("41", "", "")}}, nil
		},
	}
	svc := NewConceptService(store, testLogger(t))

	max, err := svc.MaxNumericNotation(context.Background(), "beta")
	if err != nil {
		t.Fatalf("MaxNumericNotation: %v", err)
	}
	if max != 41 {
		t.Fatalf("max: want=41 got=%d", max)
	}
}

func TestMaxNumericNotationEmptyTenant(t *testing.T) {
	store := &fakeStore{}
	svc := NewConceptService(store, testLogger(t))

	max, err := svc.MaxNumericNotation(context.Background(), "beta")
	if err != nil {
		t.Fatalf("MaxNumericNotation: %v", err)
	}
	if max != 0 {
		t.Fatalf("max: want=0 got=%d", max)
	}
}

func TestEarliestModified(t *testing.T) {
	store := &fakeStore{
		selectFn: func(query string) ([]sparql.Binding, error) {
			return []sparql.Binding{{"date": sparql.LiteralTerm("2012-03-01T08:30:00Z", "", rdf.DatatypeDateTime)}}, nil
		},
	}
	svc := NewConceptService(store, testLogger(t))

	ts, err := svc.EarliestModified(context.Background())
	if err != nil {
		t.Fatalf("EarliestModified: %v", err)
	}
	want := time.Date(2012, 3, 1, 8, 30, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("earliest: want=%v got=%v", want, ts)
	}
}

func TestEarliestModifiedEmptyStore(t *testing.T) {
	store := &fakeStore{}
	svc := NewConceptService(store, testLogger(t))

	if _, err := svc.EarliestModified(context.Background()); !errors.Is(err, rdf.ErrResourceNotFound) {
		t.Fatalf("empty store: want=ErrResourceNotFound got=%v", err)
	}
}

func TestListInWindowPagination(t *testing.T) {
	store := &fakeStore{
		selectFn: func(query string) ([]sparql.Binding, error) {
			if strings.Contains(query, "VALUES ?s") {
				// Describe pass for the page subjects.
				return []sparql.Binding{
					describeRow("http://ex/c1", vocab.SkosPrefLabel, sparql.LiteralTerm("first", "en", "")),
					describeRow("http://ex/c2", vocab.SkosPrefLabel, sparql.LiteralTerm("second", "en", "")),
				}, nil
			}
			// Page query: limit 2 asks for 3 rows, all present.
			return []sparql.Binding{
				{"s": sparql.URITerm("http://ex/c1"), "modified": sparql.LiteralTerm("2020-01-01T00:00:00Z", "", rdf.DatatypeDateTime)},
				{"s": sparql.URITerm("http://ex/c2"), "modified": sparql.LiteralTerm("2020-01-02T00:00:00Z", "", rdf.DatatypeDateTime)},
				{"s": sparql.URITerm("http://ex/c3"), "modified": sparql.LiteralTerm("2020-01-03T00:00:00Z", "", rdf.DatatypeDateTime)},
			}, nil
		},
	}
	svc := NewConceptService(store, testLogger(t))

	window, err := svc.ListInWindow(context.Background(), ListQuery{Limit: 2})
	if err != nil {
		t.Fatalf("ListInWindow: %v", err)
	}
	if !window.HasMore {
		t.Fatalf("HasMore: want=true")
	}
	if len(window.Concepts) != 2 {
		t.Fatalf("page size: want=2 got=%d", len(window.Concepts))
	}
	if window.Concepts[0].URI() != "http://ex/c1" || window.Concepts[1].URI() != "http://ex/c2" {
		t.Fatalf("order: got=%s,%s", window.Concepts[0].URI(), window.Concepts[1].URI())
	}

	pageQuery := store.queries[0]
	if !strings.Contains(pageQuery, "OFFSET 0 LIMIT 3") {
		t.Fatalf("page query must over-fetch by one: %s", pageQuery)
	}
	if !strings.Contains(pageQuery, "ORDER BY ASC(?modified)") {
		t.Fatalf("page query must order by modification date: %s", pageQuery)
	}
}

func TestListInWindowFilters(t *testing.T) {
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{}
	svc := NewConceptService(store, testLogger(t))

	if _, err := svc.ListInWindow(context.Background(), ListQuery{
		From:       &from,
		Until:      &until,
		TenantCode: "beta",
		Limit:      10,
	}); err != nil {
		t.Fatalf("ListInWindow: %v", err)
	}

	query := store.queries[0]
	for _, fragment := range []string{
		`"beta"`,
		`FILTER (?status != "deleted")`,
		`FILTER (?modified >= "2020-01-01T00:00:00Z"`,
		`FILTER (?modified < "2021-01-01T00:00:00Z"`,
	} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("missing fragment %q in query:\n%s", fragment, query)
		}
	}
}

func TestListInWindowRequiresLimit(t *testing.T) {
	svc := NewConceptService(&fakeStore{}, testLogger(t))
	if _, err := svc.ListInWindow(context.Background(), ListQuery{}); err == nil {
		t.Fatalf("zero limit: expected error")
	}
}

func TestSaveRejectsNotationCollision(t *testing.T) {
	store := &fakeStore{
		askFn: func(query string) (bool, error) { return true, nil },
	}
	svc := NewConceptService(store, testLogger(t))

	c := skos.NewConcept("http://ex/c1")
	c.Add(vocab.SkosNotation, rdf.NewLiteral("7"))
	c.Add(vocab.OpenskosTenant, rdf.NewLiteral("beta"))

	err := svc.Save(context.Background(), c)
	if !errors.Is(err, ErrNotationInUse) {
		t.Fatalf("collision: want=ErrNotationInUse got=%v", err)
	}
	if store.mutations() != 0 {
		t.Fatalf("mutations after rejected save: want=0 got=%d", store.mutations())
	}
}

func TestSaveReplacesAllStatements(t *testing.T) {
	store := &fakeStore{}
	svc := NewConceptService(store, testLogger(t))

	c := skos.NewConcept("http://ex/c1")
	c.Add(vocab.SkosPrefLabel, rdf.NewLangLiteral("dog", "en"))

	if err := svc.Save(context.Background(), c); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(store.deletes) != 1 {
		t.Fatalf("delete passes: want=1 got=%d", len(store.deletes))
	}
	wipe := store.deletes[0]
	if wipe.Subject != "http://ex/c1" || wipe.Predicate != "" || wipe.Object != nil {
		t.Fatalf("wipe must match every statement of the subject: got=%+v", wipe)
	}
	if len(store.inserts) != 1 {
		t.Fatalf("insert batches: want=1 got=%d", len(store.inserts))
	}
}

func TestSaveRequiresURI(t *testing.T) {
	svc := NewConceptService(&fakeStore{}, testLogger(t))
	if err := svc.Save(context.Background(), skos.NewConcept("")); err == nil {
		t.Fatalf("blank concept: expected error")
	}
}

func TestFetchByURIMissing(t *testing.T) {
	svc := NewConceptService(&fakeStore{}, testLogger(t))
	if _, err := svc.FetchByURI(context.Background(), "http://ex/nope"); !errors.Is(err, rdf.ErrResourceNotFound) {
		t.Fatalf("missing concept: want=ErrResourceNotFound got=%v", err)
	}
}
