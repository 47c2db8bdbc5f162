package skos

import (
	"github.com/vocnet/skos-backend/internal/rdf"
	"github.com/vocnet/skos-backend/internal/vocab"
)

// ConceptScheme is a named grouping of concepts, used both semantically
// and as the third level of the harvesting set hierarchy.
type ConceptScheme struct {
	*rdf.Resource
}

func NewConceptScheme(uri string) *ConceptScheme {
	s := &ConceptScheme{Resource: rdf.NewResource(uri)}
	s.Add(vocab.RdfType, rdf.NewURI(vocab.SkosConceptScheme))
	return s
}

// Title returns the scheme's dcterms:title, or "".
func (s *ConceptScheme) Title() string {
	return s.FirstRaw(vocab.DcTermsTitle)
}
