package skos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vocnet/skos-backend/internal/rdf"
	"github.com/vocnet/skos-backend/internal/vocab"
)

var (
	// ErrSetRequired is returned by URI generation when the concept has
	// no owning set.
	ErrSetRequired = errors.New("skos: property openskos:set (collection) is required to generate concept uri")

	// ErrURIInUse is returned when a generated URI already exists in the
	// registry.
	ErrURIInUse = errors.New("skos: generated uri is already in use")

	// ErrSetNotURI is returned when the owning set is given as anything
	// but a URI reference.
	ErrSetNotURI = errors.New("skos: the set must be a uri reference")

	// ErrCreatorConflict is returned when the plain-text creator name
	// contradicts the name of the referenced creator.
	ErrCreatorConflict = errors.New("skos: dc and dcterms creator names do not match")
)

// Tenant is the registry snapshot the lifecycle engine needs: the code
// stamped onto concepts and whether notations are auto-generated.
type Tenant struct {
	Code           string
	Name           string
	EnableNotation bool
}

// ConceptRegistry is the subset of the concept store the lifecycle
// engine reads: the per-tenant notation aggregate and URI existence.
type ConceptRegistry interface {
	MaxNumericNotation(ctx context.Context, tenantCode string) (int, error)
	AskURI(ctx context.Context, uri string) (bool, error)
}

// Concept is a controlled-vocabulary term carrying SKOS lexical and
// relational metadata plus lifecycle bookkeeping.
type Concept struct {
	*rdf.Resource
}

// NewConcept creates a concept; an empty uri leaves it blank until URI
// generation.
func NewConcept(uri string) *Concept {
	c := &Concept{Resource: rdf.NewResource(uri)}
	c.Add(vocab.RdfType, rdf.NewURI(vocab.SkosConcept))
	return c
}

// UUID returns the openskos:uuid identifier, or "" when unassigned.
// Kept for backward compatibility; the URI is the real identifier.
func (c *Concept) UUID() string {
	return c.FirstRaw(vocab.OpenskosUUID)
}

// Tenant returns the tenant code the concept belongs to.
func (c *Concept) Tenant() string {
	return c.FirstRaw(vocab.OpenskosTenant)
}

// Status returns the concept's lifecycle status.
func (c *Concept) Status() Status {
	return Status(c.FirstRaw(vocab.OpenskosStatus))
}

// SetStatus replaces the concept's lifecycle status. Bookkeeping fields
// are reconciled separately by HandleStatusChange.
func (c *Concept) SetStatus(s Status) {
	c.Set(vocab.OpenskosStatus, rdf.NewLiteral(string(s)))
}

// Notation returns the first notation value, or "".
func (c *Concept) Notation() string {
	return c.FirstRaw(vocab.SkosNotation)
}

// Caption returns a preview title: the prefLabel in the requested
// language, falling back to the first prefLabel.
func (c *Concept) Caption(lang string) string {
	return c.FlatValue(vocab.SkosPrefLabel, lang)
}

// IsTopConceptOf reports whether the concept is a top concept of the
// given scheme.
func (c *Concept) IsTopConceptOf(schemeURI string) bool {
	for _, v := range c.Get(vocab.SkosTopConceptOf) {
		if v.Raw() == schemeURI {
			return true
		}
	}
	return false
}

// HasAnyRelations reports whether any semantic or mapping relation
// property carries a value.
func (c *Concept) HasAnyRelations() bool {
	for _, rel := range vocab.RelationTypes() {
		if c.Has(rel) {
			return true
		}
	}
	return false
}

func nowLiteral() rdf.Literal {
	return rdf.NewTypedLiteral(time.Now().UTC().Format(time.RFC3339), rdf.DatatypeDateTime)
}

// EnsureMetadata bootstraps the lifecycle properties a concept must
// carry before persistence. It is idempotent on fields already present:
// identifier, tenant, status and submission timestamp get defaults only
// when missing. The owning set, when given, must be a URI reference.
// The creator is reconciled, modification metadata stamped, and status
// bookkeeping run against oldStatus. The concept is mutated in place;
// persistence stays with the caller.
func (c *Concept) EnsureMetadata(ctx context.Context, tenantCode string, set rdf.Value, actor *Person, people PersonLookup, oldStatus Status) error {
	defaults := map[string]rdf.Value{
		vocab.OpenskosUUID:         rdf.NewLiteral(uuid.NewString()),
		vocab.OpenskosTenant:       rdf.NewLiteral(tenantCode),
		vocab.OpenskosStatus:       rdf.NewLiteral(string(StatusCandidate)),
		vocab.DcTermsDateSubmitted: nowLiteral(),
	}

	if set != nil {
		setURI, ok := set.(rdf.URI)
		if !ok {
			return ErrSetNotURI
		}
		defaults[vocab.OpenskosSet] = setURI
	}

	for predicate, def := range defaults {
		if !c.Has(predicate) {
			c.Set(predicate, def)
		}
	}

	if err := c.resolveCreator(ctx, actor, people); err != nil {
		return err
	}

	c.SetModified(actor)
	c.HandleStatusChange(actor, oldStatus)
	return nil
}

// SetModified stamps the modification timestamp and modifier reference.
func (c *Concept) SetModified(actor *Person) {
	c.Set(vocab.DcTermsModified, nowLiteral())
	c.Set(vocab.OpenskosModifiedBy, rdf.NewURI(actor.URI()))
}

// HandleStatusChange reconciles acceptance and deletion bookkeeping
// with the current status. It acts only when the status actually
// changed: stale fields are cleared first, then the fields matching the
// new status are set. Only approved concepts carry acceptance fields
// and only deleted concepts carry deletion fields.
func (c *Concept) HandleStatusChange(actor *Person, oldStatus Status) {
	if oldStatus == c.Status() {
		return
	}
	c.Unset(vocab.DcTermsDateAccepted)
	c.Unset(vocab.OpenskosAcceptedBy)
	c.Unset(vocab.OpenskosDateDeleted)
	c.Unset(vocab.OpenskosDeletedBy)

	switch c.Status() {
	case StatusApproved:
		c.Add(vocab.DcTermsDateAccepted, nowLiteral())
		c.Add(vocab.OpenskosAcceptedBy, rdf.NewURI(actor.URI()))
	case StatusDeleted:
		c.Add(vocab.OpenskosDateDeleted, nowLiteral())
		c.Add(vocab.OpenskosDeletedBy, rdf.NewURI(actor.URI()))
	}
}

// SelfGenerateNotation assigns the next notation in the tenant's
// sequence: the registry's current maximum plus one, or 1 when the
// tenant has none. The read-then-write window is not atomic; a
// collision is rejected by the uniqueness check at persistence time.
func (c *Concept) SelfGenerateNotation(ctx context.Context, tenant Tenant, registry ConceptRegistry) error {
	max, err := registry.MaxNumericNotation(ctx, tenant.Code)
	if err != nil {
		return fmt.Errorf("skos: fetch max notation: %w", err)
	}
	c.Add(vocab.SkosNotation, rdf.NewLiteral(fmt.Sprintf("%d", max+1)))
	return nil
}

// SelfGenerateURI builds and assigns the concept URI from its owning
// set and first notation (or a random identifier when the tenant does
// not auto-generate notations). Fails when the concept already has a
// URI, has no owning set, or the candidate URI is already in use.
func (c *Concept) SelfGenerateURI(ctx context.Context, tenant Tenant, registry ConceptRegistry) (string, error) {
	if !c.IsBlank() {
		return "", fmt.Errorf("%w: cannot generate a new one", rdf.ErrURIAlreadyAssigned)
	}
	if c.IsEmpty(vocab.OpenskosSet) {
		return "", ErrSetRequired
	}

	if c.IsEmpty(vocab.SkosNotation) && tenant.EnableNotation {
		if err := c.SelfGenerateNotation(ctx, tenant, registry); err != nil {
			return "", err
		}
	}

	candidate := assembleURI(c.FirstRaw(vocab.OpenskosSet), c.Notation())

	inUse, err := registry.AskURI(ctx, candidate)
	if err != nil {
		return "", fmt.Errorf("skos: check uri existence: %w", err)
	}
	if inUse {
		return "", fmt.Errorf("%w: %s", ErrURIInUse, candidate)
	}

	if err := c.SetURI(candidate); err != nil {
		return "", err
	}
	return candidate, nil
}

// assembleURI joins the set base URI and the first notation, or a fresh
// random identifier when the notation is absent.
func assembleURI(setURI, firstNotation string) string {
	const separator = "/"
	setURI = strings.TrimRight(setURI, separator)
	if firstNotation == "" {
		return setURI + separator + uuid.NewString()
	}
	return setURI + separator + firstNotation
}

// resolveCreator reconciles the two creator representations: the
// legacy plain-text name (dc) and the person reference (dcterms).
func (c *Concept) resolveCreator(ctx context.Context, actor *Person, people PersonLookup) error {
	dcCreator, hasDc := c.GetFirst(vocab.DcCreator)
	dcTermsCreator, hasDcTerms := c.GetFirst(vocab.DcTermsCreator)

	// No creator information: the acting user becomes the creator.
	if !hasDc && !hasDcTerms {
		c.setCreator(nil, rdf.NewURI(actor.URI()))
		return nil
	}

	if hasDc && !hasDcTerms {
		switch v := dcCreator.(type) {
		case rdf.Literal:
			person, err := people.FetchByName(ctx, v.Value)
			if err != nil {
				return fmt.Errorf("skos: resolve creator %q: %w", v.Value, err)
			}
			c.setCreator(v, rdf.NewURI(person.URI()))
		case rdf.URI:
			// A reference stored in the legacy slot: demote it.
			c.Unset(vocab.DcCreator)
			c.setCreator(nil, v)
		}
		return nil
	}

	if !hasDc && hasDcTerms {
		switch v := dcTermsCreator.(type) {
		case rdf.Literal:
			// Inconsistent state: a name in the reference slot. Keep the
			// name and look up the matching reference.
			person, err := people.FetchByName(ctx, v.Value)
			if err != nil {
				return fmt.Errorf("skos: resolve creator %q: %w", v.Value, err)
			}
			c.setCreator(v, rdf.NewURI(person.URI()))
		case rdf.URI:
			// A proper reference, accepted even when unknown to us.
		}
		return nil
	}

	// Both present: verify the referenced person's name against the
	// plain-text name. A missing person is tolerated as unknown.
	ref, ok := dcTermsCreator.(rdf.URI)
	if ok {
		person, err := people.FetchByURI(ctx, ref.Value)
		switch {
		case errors.Is(err, rdf.ErrResourceNotFound):
			// Name unknown, leave both values as they are.
		case err != nil:
			return fmt.Errorf("skos: resolve creator %s: %w", ref.Value, err)
		default:
			if name := person.Name(); name != "" && name != dcCreator.Raw() {
				return fmt.Errorf("%w: %q vs %q", ErrCreatorConflict, dcCreator.Raw(), name)
			}
		}
	}
	c.setCreator(dcCreator, dcTermsCreator)
	return nil
}

func (c *Concept) setCreator(dcCreator, dcTermsCreator rdf.Value) {
	if dcCreator != nil {
		c.Set(vocab.DcCreator, dcCreator)
	}
	if dcTermsCreator != nil {
		c.Set(vocab.DcTermsCreator, dcTermsCreator)
	}
}
