package services

import (
	"fmt"
	"strings"

	"github.com/vocnet/skos-backend/internal/platform/sparql"
	"github.com/vocnet/skos-backend/internal/rdf"
)

func termOf(v rdf.Value) sparql.Term {
	switch t := v.(type) {
	case rdf.URI:
		return sparql.URITerm(t.Value)
	case rdf.Literal:
		return sparql.LiteralTerm(t.Value, t.Lang, t.Datatype)
	default:
		return sparql.LiteralTerm(v.Raw(), "", "")
	}
}

func valueOf(t sparql.Term) rdf.Value {
	if t.IsURI() {
		return rdf.NewURI(t.Value)
	}
	return rdf.Literal{Value: t.Value, Lang: t.Lang, Datatype: t.Datatype}
}

// resourceTriples flattens a resource's property bag into statements.
func resourceTriples(r *rdf.Resource) []sparql.Triple {
	var triples []sparql.Triple
	for _, predicate := range r.Predicates() {
		for _, v := range r.Get(predicate) {
			triples = append(triples, sparql.Triple{
				Subject:   r.URI(),
				Predicate: predicate,
				Object:    termOf(v),
			})
		}
	}
	return triples
}

// describeQuery selects all properties of the given subjects in one
// query. Callers group the ?s/?p/?o rows back into resources.
func describeQuery(subjects []string) string {
	var b strings.Builder
	b.WriteString("SELECT ?s ?p ?o WHERE { VALUES ?s {")
	for _, s := range subjects {
		fmt.Fprintf(&b, " <%s>", s)
	}
	b.WriteString(" } ?s ?p ?o }")
	return b.String()
}

// groupBySubject rebuilds property bags from describe rows, keyed by
// subject URI.
func groupBySubject(rows []sparql.Binding) map[string]*rdf.Resource {
	out := make(map[string]*rdf.Resource)
	for _, row := range rows {
		s, okS := row["s"]
		p, okP := row["p"]
		o, okO := row["o"]
		if !okS || !okP || !okO {
			continue
		}
		res, ok := out[s.Value]
		if !ok {
			res = rdf.NewResource(s.Value)
			out[s.Value] = res
		}
		res.Add(p.Value, valueOf(o))
	}
	return out
}
