// Package sparql is a client for the SPARQL 1.1 protocol: SELECT/ASK
// queries returning ordered variable bindings, and INSERT DATA /
// DELETE WHERE updates. It assumes no multi-update atomicity from the
// endpoint.
package sparql

import "fmt"

// Term kinds as reported by the SPARQL JSON results format.
const (
	TermURI     = "uri"
	TermLiteral = "literal"
	TermBlank   = "bnode"
)

// Term is one typed cell of a result binding.
type Term struct {
	Kind     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

func (t Term) IsURI() bool     { return t.Kind == TermURI }
func (t Term) IsLiteral() bool { return t.Kind == TermLiteral }

// Binding maps result variable names to terms. The endpoint returns
// bindings in query order.
type Binding map[string]Term

// Triple is one statement for an INSERT DATA update.
type Triple struct {
	Subject   string
	Predicate string
	Object    Term
}

// URITerm builds a URI object term.
func URITerm(uri string) Term {
	return Term{Kind: TermURI, Value: uri}
}

// LiteralTerm builds a literal object term.
func LiteralTerm(value, lang, datatype string) Term {
	return Term{Kind: TermLiteral, Value: value, Lang: lang, Datatype: datatype}
}

// FormatTerm renders a term in SPARQL syntax.
func FormatTerm(t Term) string {
	if t.Kind == TermURI {
		return fmt.Sprintf("<%s>", t.Value)
	}
	// %q escaping (quote, backslash, control chars, \uXXXX) is a valid
	// SPARQL string escape set.
	lit := fmt.Sprintf("%q", t.Value)
	switch {
	case t.Lang != "":
		return lit + "@" + t.Lang
	case t.Datatype != "":
		return fmt.Sprintf("%s^^<%s>", lit, t.Datatype)
	default:
		return lit
	}
}

func (t Triple) String() string {
	return fmt.Sprintf("<%s> <%s> %s .", t.Subject, t.Predicate, FormatTerm(t.Object))
}
