package vocab

import "strings"

// RelationTypes returns the built-in SKOS relation types usable as edge
// predicates, including the inferred transitive forms (which are listed
// so queries can name them, but are rejected for direct writes).
func RelationTypes() []string {
	return []string{
		SkosBroader,
		SkosNarrower,
		SkosBroaderTransitive,
		SkosNarrowerTransitive,
		SkosRelated,
		SkosBroadMatch,
		SkosCloseMatch,
		SkosExactMatch,
		SkosMappingRelation,
		SkosNarrowMatch,
		SkosRelatedMatch,
	}
}

// InverseRelations maps every writable relation type to its inverse.
// Symmetric types map to themselves.
func InverseRelations() map[string]string {
	return map[string]string{
		SkosBroader:            SkosNarrower,
		SkosNarrower:           SkosBroader,
		SkosBroaderTransitive:  SkosNarrowerTransitive,
		SkosNarrowerTransitive: SkosBroaderTransitive,
		SkosBroadMatch:         SkosNarrowMatch,
		SkosNarrowMatch:        SkosBroadMatch,
		SkosRelated:            SkosRelated,
		SkosRelatedMatch:       SkosRelatedMatch,
		SkosCloseMatch:         SkosCloseMatch,
		SkosExactMatch:         SkosExactMatch,
		SkosMappingRelation:    SkosMappingRelation,
	}
}

// IsTransitiveRelation reports whether uri is one of the inferred
// transitive-closure relation types. Those edges are derived by the
// store and must never be inserted.
func IsTransitiveRelation(uri string) bool {
	return uri == SkosBroaderTransitive || uri == SkosNarrowerTransitive
}

// ShortName derives the display name of a relation type from its IRI:
// the fragment after '#', or the last path segment when there is no
// fragment.
func ShortName(uri string) string {
	if i := strings.LastIndex(uri, "#"); i >= 0 {
		return uri[i+1:]
	}
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}
