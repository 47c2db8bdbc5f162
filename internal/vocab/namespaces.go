package vocab

// OpenskosNamespace is the extension namespace carrying tenancy and
// lifecycle bookkeeping properties.
const OpenskosNamespace = "http://openskos.org/xmlns#"

const (
	OpenskosTenant      = OpenskosNamespace + "tenant"
	OpenskosStatus      = OpenskosNamespace + "status"
	OpenskosToBeChecked = OpenskosNamespace + "toBeChecked"
	OpenskosDateDeleted = OpenskosNamespace + "dateDeleted"
	OpenskosDeletedBy   = OpenskosNamespace + "deletedBy"
	OpenskosAcceptedBy  = OpenskosNamespace + "acceptedBy"
	OpenskosModifiedBy  = OpenskosNamespace + "modifiedBy"
	OpenskosUUID        = OpenskosNamespace + "uuid"
	OpenskosSet         = OpenskosNamespace + "set"
)

// Dublin Core terms.
const (
	DcTermsNamespace = "http://purl.org/dc/terms/"

	DcTermsCreator       = DcTermsNamespace + "creator"
	DcTermsTitle         = DcTermsNamespace + "title"
	DcTermsModified      = DcTermsNamespace + "modified"
	DcTermsDateSubmitted = DcTermsNamespace + "dateSubmitted"
	DcTermsDateAccepted  = DcTermsNamespace + "dateAccepted"
)

// Dublin Core elements 1.1. Only the legacy creator slot is used: it may
// carry a free-text author name that predates person references.
const (
	DcNamespace = "http://purl.org/dc/elements/1.1/"

	DcCreator = DcNamespace + "creator"
)

// RDF syntax namespace.
const (
	RdfNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

	RdfType = RdfNamespace + "type"
)

// FOAF.
const (
	FoafNamespace = "http://xmlns.com/foaf/0.1/"

	FoafPerson = FoafNamespace + "Person"
	FoafName   = FoafNamespace + "name"
)

// OWL, used for tenant-registered relation-type definitions.
const (
	OwlNamespace = "http://www.w3.org/2002/07/owl#"

	OwlObjectProperty = OwlNamespace + "ObjectProperty"
	OwlInverseOf      = OwlNamespace + "inverseOf"
)
