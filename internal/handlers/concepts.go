package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vocnet/skos-backend/internal/platform/logger"
	"github.com/vocnet/skos-backend/internal/rdf"
	"github.com/vocnet/skos-backend/internal/repos"
	"github.com/vocnet/skos-backend/internal/services"
	"github.com/vocnet/skos-backend/internal/skos"
	"github.com/vocnet/skos-backend/internal/vocab"
)

type ConceptHandler struct {
	concepts services.ConceptService
	people   services.PersonService
	tenants  repos.TenantRepo
	log      *logger.Logger
}

func NewConceptHandler(
	concepts services.ConceptService,
	people services.PersonService,
	tenants repos.TenantRepo,
	baseLog *logger.Logger,
) *ConceptHandler {
	return &ConceptHandler{
		concepts: concepts,
		people:   people,
		tenants:  tenants,
		log:      baseLog.With("handler", "ConceptHandler"),
	}
}

type propertyView struct {
	Predicate string `json:"predicate"`
	Value     string `json:"value"`
	Lang      string `json:"lang,omitempty"`
	Datatype  string `json:"datatype,omitempty"`
	IsURI     bool   `json:"is_uri,omitempty"`
}

type conceptView struct {
	URI          string         `json:"uri"`
	UUID         string         `json:"uuid,omitempty"`
	Status       string         `json:"status,omitempty"`
	Caption      string         `json:"caption,omitempty"`
	HasRelations bool           `json:"has_relations"`
	Properties   []propertyView `json:"properties"`
}

func newConceptView(c *skos.Concept) conceptView {
	view := conceptView{
		URI:          c.URI(),
		UUID:         c.UUID(),
		Status:       string(c.Status()),
		Caption:      c.Caption("en"),
		HasRelations: c.HasAnyRelations(),
	}
	for _, predicate := range c.Predicates() {
		for _, v := range c.Get(predicate) {
			prop := propertyView{Predicate: predicate, Value: v.Raw()}
			switch t := v.(type) {
			case rdf.URI:
				prop.IsURI = true
			case rdf.Literal:
				prop.Lang = t.Lang
				prop.Datatype = t.Datatype
			}
			view.Properties = append(view.Properties, prop)
		}
	}
	return view
}

func (h *ConceptHandler) Get(c *gin.Context) {
	uri := c.Query("uri")
	if uri == "" {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("uri is required"))
		return
	}
	concept, err := h.concepts.FetchByURI(c.Request.Context(), uri)
	if err != nil {
		if errors.Is(err, rdf.ErrResourceNotFound) {
			RespondError(c, http.StatusNotFound, "not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	RespondOK(c, newConceptView(concept))
}

type createConceptRequest struct {
	URI       string `json:"uri"`
	Tenant    string `json:"tenant" binding:"required"`
	Set       string `json:"set" binding:"required"`
	PrefLabel string `json:"pref_label" binding:"required"`
	Lang      string `json:"lang"`
	Notation  string `json:"notation"`
	Scheme    string `json:"scheme"`
	Creator   string `json:"creator"`
}

// Create registers a concept: metadata bootstrap, URI generation for
// blank concepts, then persistence with the notation uniqueness check.
func (h *ConceptHandler) Create(c *gin.Context) {
	var req createConceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	ctx := c.Request.Context()

	tenantRow, err := h.tenants.GetByCode(ctx, req.Tenant)
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			RespondError(c, http.StatusBadRequest, "unknown_tenant", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	tenant := tenantRow.Snapshot()

	concept := skos.NewConcept(req.URI)
	if req.Lang == "" {
		req.Lang = "en"
	}
	concept.Add(vocab.SkosPrefLabel, rdf.NewLangLiteral(req.PrefLabel, req.Lang))
	if req.Notation != "" {
		concept.Add(vocab.SkosNotation, rdf.NewLiteral(req.Notation))
	}
	if req.Scheme != "" {
		concept.Add(vocab.SkosInScheme, rdf.NewURI(req.Scheme))
	}
	if req.Creator != "" {
		concept.Add(vocab.DcCreator, rdf.NewLiteral(req.Creator))
	}

	actor := h.actorFrom(c)
	err = concept.EnsureMetadata(ctx, tenant.Code, rdf.NewURI(req.Set), actor, h.people, "")
	if err != nil {
		switch {
		case errors.Is(err, skos.ErrSetNotURI), errors.Is(err, skos.ErrCreatorConflict):
			RespondError(c, http.StatusBadRequest, "invalid_concept", err)
		default:
			RespondError(c, http.StatusInternalServerError, "internal", err)
		}
		return
	}

	if concept.IsBlank() {
		if _, err := concept.SelfGenerateURI(ctx, tenant, h.concepts); err != nil {
			switch {
			case errors.Is(err, skos.ErrSetRequired), errors.Is(err, rdf.ErrURIAlreadyAssigned):
				RespondError(c, http.StatusBadRequest, "invalid_concept", err)
			case errors.Is(err, skos.ErrURIInUse):
				RespondError(c, http.StatusConflict, "uri_in_use", err)
			default:
				RespondError(c, http.StatusInternalServerError, "internal", err)
			}
			return
		}
	}

	if err := h.concepts.Save(ctx, concept); err != nil {
		if errors.Is(err, services.ErrNotationInUse) {
			RespondError(c, http.StatusConflict, "notation_in_use", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	c.JSON(http.StatusCreated, newConceptView(concept))
}

type statusChangeRequest struct {
	URI    string `json:"uri" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// ChangeStatus moves a concept through its lifecycle, keeping the
// acceptance and deletion bookkeeping consistent.
func (h *ConceptHandler) ChangeStatus(c *gin.Context) {
	var req statusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	next := skos.Status(req.Status)
	if !next.IsValid() {
		RespondError(c, http.StatusBadRequest, "unknown_status", errors.New("status "+req.Status+" is not recognised"))
		return
	}
	ctx := c.Request.Context()

	concept, err := h.concepts.FetchByURI(ctx, req.URI)
	if err != nil {
		if errors.Is(err, rdf.ErrResourceNotFound) {
			RespondError(c, http.StatusNotFound, "not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}

	actor := h.actorFrom(c)
	old := concept.Status()
	concept.SetStatus(next)
	concept.HandleStatusChange(actor, old)
	concept.SetModified(actor)

	if err := h.concepts.Save(ctx, concept); err != nil {
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	RespondOK(c, newConceptView(concept))
}

// actorFrom resolves the acting person from the X-Actor-URI header,
// falling back to an anonymous system actor.
func (h *ConceptHandler) actorFrom(c *gin.Context) *skos.Person {
	if uri := c.GetHeader("X-Actor-URI"); uri != "" {
		if person, err := h.people.FetchByURI(c.Request.Context(), uri); err == nil {
			return person
		}
		h.log.Warn("actor uri not resolvable, using anonymous actor", "uri", uri)
	}
	return skos.NewPerson("http://localhost/actor/anonymous", "anonymous")
}
