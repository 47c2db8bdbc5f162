// Package vocab holds the IRI constants and relation-type tables for the
// vocabularies this repository speaks: SKOS core, Dublin Core, the
// openskos extension namespace, RDF and FOAF.
package vocab

// SkosNamespace is the base IRI of the SKOS core vocabulary.
const SkosNamespace = "http://www.w3.org/2004/02/skos/core#"

// SKOS classes.
const (
	SkosConcept       = SkosNamespace + "Concept"
	SkosConceptScheme = SkosNamespace + "ConceptScheme"
	SkosCollection    = SkosNamespace + "Collection"
)

// Lexical labels.
const (
	SkosPrefLabel   = SkosNamespace + "prefLabel"
	SkosAltLabel    = SkosNamespace + "altLabel"
	SkosHiddenLabel = SkosNamespace + "hiddenLabel"
)

// Notations.
const (
	SkosNotation = SkosNamespace + "notation"
)

// Concept scheme membership.
const (
	SkosInScheme      = SkosNamespace + "inScheme"
	SkosHasTopConcept = SkosNamespace + "hasTopConcept"
	SkosTopConceptOf  = SkosNamespace + "topConceptOf"
)

// Documentation properties.
const (
	SkosChangeNote    = SkosNamespace + "changeNote"
	SkosDefinition    = SkosNamespace + "definition"
	SkosEditorialNote = SkosNamespace + "editorialNote"
	SkosExample       = SkosNamespace + "example"
	SkosHistoryNote   = SkosNamespace + "historyNote"
	SkosNote          = SkosNamespace + "note"
	SkosScopeNote     = SkosNamespace + "scopeNote"
)

// Semantic (hierarchical and associative) relations. The transitive
// forms are inferred by the store and never written directly.
const (
	SkosBroader            = SkosNamespace + "broader"
	SkosNarrower           = SkosNamespace + "narrower"
	SkosBroaderTransitive  = SkosNamespace + "broaderTransitive"
	SkosNarrowerTransitive = SkosNamespace + "narrowerTransitive"
	SkosRelated            = SkosNamespace + "related"
	SkosSemanticRelation   = SkosNamespace + "semanticRelation"
)

// Mapping relations across concept schemes.
const (
	SkosBroadMatch      = SkosNamespace + "broadMatch"
	SkosCloseMatch      = SkosNamespace + "closeMatch"
	SkosExactMatch      = SkosNamespace + "exactMatch"
	SkosMappingRelation = SkosNamespace + "mappingRelation"
	SkosNarrowMatch     = SkosNamespace + "narrowMatch"
	SkosRelatedMatch    = SkosNamespace + "relatedMatch"
)
