package sparql

import "testing"

func TestFormatTerm(t *testing.T) {
	if got := FormatTerm(URITerm("http://a/b")); got != "<http://a/b>" {
		t.Fatalf("uri term: got=%s", got)
	}
	if got := FormatTerm(LiteralTerm("dog", "en", "")); got != `"dog"@en` {
		t.Fatalf("lang literal: got=%s", got)
	}
	if got := FormatTerm(LiteralTerm("5", "", "http://www.w3.org/2001/XMLSchema#integer")); got != `"5"^^<http://www.w3.org/2001/XMLSchema#integer>` {
		t.Fatalf("typed literal: got=%s", got)
	}
	if got := FormatTerm(LiteralTerm(`say "hi"`, "", "")); got != `"say \"hi\""` {
		t.Fatalf("escaped literal: got=%s", got)
	}
}

func TestTripleString(t *testing.T) {
	tr := Triple{
		Subject:   "http://ex/s",
		Predicate: "http://ex/p",
		Object:    URITerm("http://ex/o"),
	}
	if got := tr.String(); got != "<http://ex/s> <http://ex/p> <http://ex/o> ." {
		t.Fatalf("triple: got=%s", got)
	}
}
