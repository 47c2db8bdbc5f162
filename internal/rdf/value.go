// Package rdf models RDF terms and resources as an immutable-identifier
// property bag. A resource holds multi-valued properties keyed by
// predicate IRI; each value is either a Literal or a URI reference.
package rdf

import "fmt"

// Common literal datatypes.
const (
	DatatypeDateTime = "http://www.w3.org/2001/XMLSchema#dateTime"
	DatatypeBool     = "http://www.w3.org/2001/XMLSchema#boolean"
	DatatypeInt      = "http://www.w3.org/2001/XMLSchema#integer"
)

// Value is either a Literal or a URI.
type Value interface {
	// Raw returns the lexical form for literals and the IRI for
	// references.
	Raw() string
	isValue()
}

// URI is a reference to another resource.
type URI struct {
	Value string
}

func NewURI(value string) URI { return URI{Value: value} }

func (u URI) Raw() string    { return u.Value }
func (u URI) String() string { return fmt.Sprintf("<%s>", u.Value) }
func (URI) isValue()         {}

// Literal is a lexical value with an optional language tag and datatype.
type Literal struct {
	Value    string
	Lang     string
	Datatype string
}

func NewLiteral(value string) Literal { return Literal{Value: value} }

func NewLangLiteral(value, lang string) Literal {
	return Literal{Value: value, Lang: lang}
}

func NewTypedLiteral(value, datatype string) Literal {
	return Literal{Value: value, Datatype: datatype}
}

func (l Literal) Raw() string { return l.Value }

func (l Literal) String() string {
	switch {
	case l.Lang != "":
		return fmt.Sprintf("%q@%s", l.Value, l.Lang)
	case l.Datatype != "":
		return fmt.Sprintf("%q^^<%s>", l.Value, l.Datatype)
	default:
		return fmt.Sprintf("%q", l.Value)
	}
}

func (Literal) isValue() {}
