package oaipmh

import (
	"encoding/xml"
	"time"
)

// Datestamp formatting follows the protocol's finest granularity:
// seconds, UTC.
const (
	ProtocolVersion = "2.0"
	Granularity     = "YYYY-MM-DDThh:mm:ssZ"
	DeletedRecord   = "no"

	// MetadataPrefixRDF is the only dissemination format: the
	// concept's property bag serialized as RDF.
	MetadataPrefixRDF = "oai_rdf"
)

// FormatDatestamp renders a timestamp the way the protocol expects.
func FormatDatestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// Identity is the repository capability descriptor.
type Identity struct {
	XMLName           xml.Name `xml:"Identify"`
	RepositoryName    string   `xml:"repositoryName"`
	BaseURL           string   `xml:"baseURL"`
	ProtocolVersion   string   `xml:"protocolVersion"`
	AdminEmails       []string `xml:"adminEmail"`
	EarliestDatestamp string   `xml:"earliestDatestamp"`
	DeletedRecord     string   `xml:"deletedRecord"`
	Granularity       string   `xml:"granularity"`
	Description       string   `xml:"description,omitempty"`
}

// Set is one node of the three-level set hierarchy.
type Set struct {
	XMLName xml.Name `xml:"set"`
	Spec    string   `xml:"setSpec"`
	Name    string   `xml:"setName"`
}

// SetList is the ListSets payload; set listings are not paginated.
type SetList struct {
	XMLName xml.Name `xml:"ListSets"`
	Sets    []Set    `xml:"set"`
}

// MetadataFormat describes one dissemination format.
type MetadataFormat struct {
	XMLName   xml.Name `xml:"metadataFormat"`
	Prefix    string   `xml:"metadataPrefix"`
	Schema    string   `xml:"schema"`
	Namespace string   `xml:"metadataNamespace"`
}

// Header identifies one record within a listing.
type Header struct {
	XMLName    xml.Name `xml:"header"`
	Identifier string   `xml:"identifier"`
	Datestamp  string   `xml:"datestamp"`
	SetSpecs   []string `xml:"setSpec"`
}

// PropertyValue is one flattened statement of a record's property bag.
type PropertyValue struct {
	XMLName   xml.Name `xml:"property"`
	Predicate string   `xml:"predicate,attr"`
	Value     string   `xml:",chardata"`
	Lang      string   `xml:"lang,attr,omitempty"`
	Datatype  string   `xml:"datatype,attr,omitempty"`
	IsURI     bool     `xml:"resource,attr,omitempty"`
}

// Record is a header plus the concept's properties.
type Record struct {
	XMLName  xml.Name        `xml:"record"`
	Header   Header          `xml:"header"`
	Metadata []PropertyValue `xml:"metadata>property"`
}

// RecordList is one page of ListRecords. An empty ResumptionToken
// signals exhaustion.
type RecordList struct {
	XMLName         xml.Name `xml:"ListRecords"`
	Records         []Record `xml:"record"`
	ResumptionToken string   `xml:"resumptionToken,omitempty"`
}

// HeaderList is one page of ListIdentifiers.
type HeaderList struct {
	XMLName         xml.Name `xml:"ListIdentifiers"`
	Headers         []Header `xml:"header"`
	ResumptionToken string   `xml:"resumptionToken,omitempty"`
}
