package skos

import (
	"context"

	"github.com/vocnet/skos-backend/internal/rdf"
	"github.com/vocnet/skos-backend/internal/vocab"
)

// Person is an actor known to the repository (an editor or API user).
type Person struct {
	*rdf.Resource
}

func NewPerson(uri, name string) *Person {
	p := &Person{Resource: rdf.NewResource(uri)}
	p.Add(vocab.RdfType, rdf.NewURI(vocab.FoafPerson))
	if name != "" {
		p.Add(vocab.FoafName, rdf.NewLiteral(name))
	}
	return p
}

// Name returns the person's display name, or "" when unknown.
func (p *Person) Name() string {
	return p.FirstRaw(vocab.FoafName)
}

// PersonLookup resolves persons by display name or by URI. Both report
// a missing person with rdf.ErrResourceNotFound.
type PersonLookup interface {
	FetchByName(ctx context.Context, name string) (*Person, error)
	FetchByURI(ctx context.Context, uri string) (*Person, error)
}
