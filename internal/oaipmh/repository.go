package oaipmh

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/vocnet/skos-backend/internal/platform/logger"
	"github.com/vocnet/skos-backend/internal/rdf"
	"github.com/vocnet/skos-backend/internal/repos"
	"github.com/vocnet/skos-backend/internal/services"
	"github.com/vocnet/skos-backend/internal/skos"
	"github.com/vocnet/skos-backend/internal/types"
	"github.com/vocnet/skos-backend/internal/vocab"
)

// RepositoryConfig is the harvesting identity and paging policy.
type RepositoryConfig struct {
	Name        string
	BaseURL     string
	Description string
	AdminEmails []string
	PageSize    int
}

// Repository answers protocol verbs by composing the concept store with
// the tenant/collection registry. It is stateless between calls; every
// continuation rides in the resumption token.
type Repository struct {
	concepts    services.ConceptService
	schemes     services.SchemeService
	collections repos.CollectionRepo
	log         *logger.Logger
	cfg         RepositoryConfig
}

func NewRepository(
	concepts services.ConceptService,
	schemes services.SchemeService,
	collections repos.CollectionRepo,
	baseLog *logger.Logger,
	cfg RepositoryConfig,
) *Repository {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	return &Repository{
		concepts:    concepts,
		schemes:     schemes,
		collections: collections,
		log:         baseLog.With("component", "OaiRepository"),
		cfg:         cfg,
	}
}

// Identify returns the repository capability descriptor. The earliest
// datestamp is the minimum modification timestamp across the whole
// repository; an empty repository reports the epoch.
func (r *Repository) Identify(ctx context.Context) (*Identity, error) {
	earliest, err := r.concepts.EarliestModified(ctx)
	if err != nil {
		if !errors.Is(err, rdf.ErrResourceNotFound) {
			return nil, fmt.Errorf("identify: %w", err)
		}
		earliest = time.Unix(0, 0)
	}
	return &Identity{
		RepositoryName:    r.cfg.Name,
		BaseURL:           r.cfg.BaseURL,
		ProtocolVersion:   ProtocolVersion,
		AdminEmails:       r.cfg.AdminEmails,
		EarliestDatestamp: FormatDatestamp(earliest),
		DeletedRecord:     DeletedRecord,
		Granularity:       Granularity,
		Description:       r.cfg.Description,
	}, nil
}

// ListSets walks the registry and emits the three-level hierarchy:
// one set per tenant the first time it is seen, one per collection,
// one per concept scheme attached to the collection. Tenants come out
// in code order, collections and schemes in storage order.
func (r *Repository) ListSets(ctx context.Context) (*SetList, error) {
	collections, err := r.collections.ListWithTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}

	var sets []Set
	seenTenant := ""
	for _, col := range collections {
		if col.TenantCode != seenTenant {
			seenTenant = col.TenantCode
			sets = append(sets, Set{Spec: col.TenantCode, Name: col.Tenant.Name})
		}
		colSpec := col.TenantCode + ":" + col.Code
		sets = append(sets, Set{Spec: colSpec, Name: col.Title})

		schemes, err := r.schemes.SchemesByCollectionURI(ctx, col.URI)
		if err != nil {
			return nil, fmt.Errorf("list sets: schemes of %s: %w", col.URI, err)
		}
		for _, scheme := range schemes {
			part, ok := hostAndPath(scheme.URI())
			if !ok {
				r.log.Warn("scheme uri not parseable, skipped in set hierarchy", "uri", scheme.URI())
				continue
			}
			sets = append(sets, Set{Spec: colSpec + ":" + part, Name: scheme.Title()})
		}
	}
	return &SetList{Sets: sets}, nil
}

// ListSetsByToken validates the token and delegates: set listings are
// not paginated beyond what the token's presence implies.
func (r *Repository) ListSetsByToken(ctx context.Context, token string) (*SetList, error) {
	if _, err := DecodeToken(token); err != nil {
		return nil, err
	}
	return r.ListSets(ctx)
}

// ListMetadataFormats reports the dissemination formats. With an
// identifier it is scoped to that record, which must exist.
func (r *Repository) ListMetadataFormats(ctx context.Context, identifier string) ([]MetadataFormat, error) {
	if identifier != "" {
		if _, err := r.fetchVisible(ctx, identifier); err != nil {
			return nil, err
		}
	}
	return []MetadataFormat{{
		Prefix:    MetadataPrefixRDF,
		Schema:    "http://www.openarchives.org/OAI/2.0/rdf.xsd",
		Namespace: "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
	}}, nil
}

// GetRecord returns the single record named by identifier.
func (r *Repository) GetRecord(ctx context.Context, identifier, metadataPrefix string) (*Record, error) {
	if err := checkPrefix(metadataPrefix); err != nil {
		return nil, err
	}
	concept, err := r.fetchVisible(ctx, identifier)
	if err != nil {
		return nil, err
	}
	specs, err := r.setSpecIndex(ctx)
	if err != nil {
		return nil, err
	}
	record := buildRecord(concept, specs)
	return &record, nil
}

// ListRecords returns the first page of full records in the window.
func (r *Repository) ListRecords(ctx context.Context, metadataPrefix, set string, from, until *time.Time) (*RecordList, error) {
	return r.listRecordsAt(ctx, NewResumptionToken(0, metadataPrefix, set, from, until))
}

// ListRecordsByToken resumes a prior ListRecords exchange.
func (r *Repository) ListRecordsByToken(ctx context.Context, token string) (*RecordList, error) {
	tok, err := DecodeToken(token)
	if err != nil {
		return nil, err
	}
	return r.listRecordsAt(ctx, tok)
}

// ListIdentifiers returns the first page of bare headers.
func (r *Repository) ListIdentifiers(ctx context.Context, metadataPrefix, set string, from, until *time.Time) (*HeaderList, error) {
	return r.listIdentifiersAt(ctx, NewResumptionToken(0, metadataPrefix, set, from, until))
}

// ListIdentifiersByToken resumes a prior ListIdentifiers exchange.
func (r *Repository) ListIdentifiersByToken(ctx context.Context, token string) (*HeaderList, error) {
	tok, err := DecodeToken(token)
	if err != nil {
		return nil, err
	}
	return r.listIdentifiersAt(ctx, tok)
}

func (r *Repository) listRecordsAt(ctx context.Context, tok ResumptionToken) (*RecordList, error) {
	window, specs, err := r.listPage(ctx, tok)
	if err != nil {
		return nil, err
	}
	out := &RecordList{Records: make([]Record, 0, len(window.Concepts))}
	for _, c := range window.Concepts {
		out.Records = append(out.Records, buildRecord(c, specs))
	}
	out.ResumptionToken = nextToken(tok, window)
	return out, nil
}

func (r *Repository) listIdentifiersAt(ctx context.Context, tok ResumptionToken) (*HeaderList, error) {
	window, specs, err := r.listPage(ctx, tok)
	if err != nil {
		return nil, err
	}
	out := &HeaderList{Headers: make([]Header, 0, len(window.Concepts))}
	for _, c := range window.Concepts {
		out.Headers = append(out.Headers, buildHeader(c, specs))
	}
	out.ResumptionToken = nextToken(tok, window)
	return out, nil
}

// listPage runs the windowed query behind both listing verbs.
func (r *Repository) listPage(ctx context.Context, tok ResumptionToken) (*services.ConceptWindow, map[string]string, error) {
	if err := checkPrefix(tok.MetadataPrefix); err != nil {
		return nil, nil, err
	}
	query, err := r.resolveSetSpec(ctx, tok.Set)
	if err != nil {
		return nil, nil, err
	}
	query.From = tok.FromTime()
	query.Until = tok.UntilTime()
	query.Offset = tok.Offset
	query.Limit = r.cfg.PageSize

	window, err := r.concepts.ListInWindow(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("list page: %w", err)
	}
	if len(window.Concepts) == 0 {
		return nil, nil, NewError(CodeNoRecordsMatch, "no records in the requested window")
	}
	specs, err := r.setSpecIndex(ctx)
	if err != nil {
		return nil, nil, err
	}
	return window, specs, nil
}

// resolveSetSpec maps a hierarchical set specifier onto one listing
// dimension: tenant, collection, or concept scheme.
func (r *Repository) resolveSetSpec(ctx context.Context, spec string) (services.ListQuery, error) {
	var query services.ListQuery
	if spec == "" {
		return query, nil
	}
	parts := strings.Split(spec, ":")
	switch len(parts) {
	case 1:
		query.TenantCode = parts[0]
	case 2:
		col, err := r.collectionOf(ctx, parts[0], parts[1], spec)
		if err != nil {
			return query, err
		}
		query.SetURI = col.URI
	case 3:
		col, err := r.collectionOf(ctx, parts[0], parts[1], spec)
		if err != nil {
			return query, err
		}
		schemes, err := r.schemes.SchemesByCollectionURI(ctx, col.URI)
		if err != nil {
			return query, fmt.Errorf("resolve set %q: %w", spec, err)
		}
		for _, scheme := range schemes {
			if part, ok := hostAndPath(scheme.URI()); ok && part == parts[2] {
				query.SchemeURI = scheme.URI()
				return query, nil
			}
		}
		return query, NewError(CodeNoRecordsMatch, "unknown scheme in set %q", spec)
	default:
		return query, NewError(CodeBadArgument, "set %q has more than three levels", spec)
	}
	return query, nil
}

func (r *Repository) collectionOf(ctx context.Context, tenantCode, code, spec string) (*types.Collection, error) {
	col, err := r.collections.GetByTenantAndCode(ctx, tenantCode, code)
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, NewError(CodeNoRecordsMatch, "unknown collection in set %q", spec)
		}
		return nil, fmt.Errorf("resolve set %q: %w", spec, err)
	}
	return col, nil
}

// fetchVisible loads a concept and hides the soft-deleted ones, same
// as the listing path does.
func (r *Repository) fetchVisible(ctx context.Context, identifier string) (*skos.Concept, error) {
	concept, err := r.concepts.FetchByURI(ctx, identifier)
	if err != nil {
		if errors.Is(err, rdf.ErrResourceNotFound) {
			return nil, NewError(CodeIDDoesNotExist, "no record %q", identifier)
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	if concept.Status() == skos.StatusDeleted {
		return nil, NewError(CodeIDDoesNotExist, "no record %q", identifier)
	}
	return concept, nil
}

// setSpecIndex maps collection URIs to their tenant:code specs so
// record headers can name the sets they belong to.
func (r *Repository) setSpecIndex(ctx context.Context) (map[string]string, error) {
	collections, err := r.collections.ListWithTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("set spec index: %w", err)
	}
	specs := make(map[string]string, len(collections))
	for _, col := range collections {
		specs[col.URI] = col.TenantCode + ":" + col.Code
	}
	return specs, nil
}

func nextToken(tok ResumptionToken, window *services.ConceptWindow) string {
	if !window.HasMore {
		return ""
	}
	tok.Offset = window.Offset + window.Limit
	return tok.Encode()
}

func buildRecord(c *skos.Concept, specs map[string]string) Record {
	record := Record{Header: buildHeader(c, specs)}
	for _, predicate := range c.Predicates() {
		for _, v := range c.Get(predicate) {
			prop := PropertyValue{Predicate: predicate, Value: v.Raw()}
			switch t := v.(type) {
			case rdf.URI:
				prop.IsURI = true
			case rdf.Literal:
				prop.Lang = t.Lang
				prop.Datatype = t.Datatype
			}
			record.Metadata = append(record.Metadata, prop)
		}
	}
	return record
}

func buildHeader(c *skos.Concept, specs map[string]string) Header {
	header := Header{Identifier: c.URI()}
	if raw := c.FirstRaw(vocab.DcTermsModified); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			header.Datestamp = FormatDatestamp(ts)
		}
	}
	if tenant := c.Tenant(); tenant != "" {
		header.SetSpecs = append(header.SetSpecs, tenant)
	}
	if setURI := c.FirstRaw(vocab.OpenskosSet); setURI != "" {
		if spec, ok := specs[setURI]; ok {
			header.SetSpecs = append(header.SetSpecs, spec)
		}
	}
	return header
}

func checkPrefix(metadataPrefix string) error {
	if metadataPrefix != MetadataPrefixRDF {
		return NewError(CodeCannotDisseminateFormat, "format %q is not supported", metadataPrefix)
	}
	return nil
}

// hostAndPath reduces a scheme URI to the host+path form used as the
// third set-spec level.
func hostAndPath(uri string) (string, bool) {
	u, err := url.Parse(uri)
	if err != nil || u.Host == "" {
		return "", false
	}
	return u.Host + u.Path, true
}
