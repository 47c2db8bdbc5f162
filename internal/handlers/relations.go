package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vocnet/skos-backend/internal/platform/apierr"
	"github.com/vocnet/skos-backend/internal/platform/logger"
	"github.com/vocnet/skos-backend/internal/services"
)

type RelationHandler struct {
	relations services.RelationService
	log       *logger.Logger
}

func NewRelationHandler(relations services.RelationService, baseLog *logger.Logger) *RelationHandler {
	return &RelationHandler{
		relations: relations,
		log:       baseLog.With("handler", "RelationHandler"),
	}
}

// ListTypes returns the merged relation-type vocabulary, short name to
// URI.
func (h *RelationHandler) ListTypes(c *gin.Context) {
	types, err := h.relations.RelationTypes(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	RespondOK(c, gin.H{"relation_types": types})
}

// Query returns flattened relation tuples filtered by relation type,
// source scheme and target scheme.
func (h *RelationHandler) Query(c *gin.Context) {
	triples, err := h.relations.FetchAllRelationsOfType(
		c.Request.Context(),
		c.QueryArray("type"),
		c.QueryArray("sourceScheme"),
		c.QueryArray("targetScheme"),
	)
	if err != nil {
		// Unknown relation types in a filter carry 501, not 400.
		status := apierr.StatusOf(err, http.StatusInternalServerError)
		RespondError(c, status, "relation_query_failed", err)
		return
	}
	RespondOK(c, gin.H{"relations": triples})
}

// ForConcept lists the concepts related to one subject through a
// single relation type.
func (h *RelationHandler) ForConcept(c *gin.Context) {
	uri := c.Query("uri")
	relType := c.Query("type")
	if uri == "" || relType == "" {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("uri and type are required"))
		return
	}
	concepts, err := h.relations.FetchRelationsForConcept(c.Request.Context(), uri, relType, c.Query("scheme"))
	if err != nil {
		if errors.Is(err, services.ErrRelationNotSupported) {
			RespondError(c, http.StatusBadRequest, "relation_not_supported", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	views := make([]conceptView, 0, len(concepts))
	for _, concept := range concepts {
		views = append(views, newConceptView(concept))
	}
	RespondOK(c, gin.H{"concepts": views})
}

type addRelationRequest struct {
	Subject string   `json:"subject" binding:"required"`
	Type    string   `json:"type" binding:"required"`
	Objects []string `json:"objects" binding:"required"`
}

func (h *RelationHandler) Add(c *gin.Context) {
	var req addRelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	err := h.relations.AddRelation(c.Request.Context(), req.Subject, req.Type, req.Objects)
	if err != nil {
		if errors.Is(err, services.ErrRelationNotSupported) || errors.Is(err, services.ErrRelationInferred) {
			RespondError(c, http.StatusBadRequest, "relation_rejected", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	c.Status(http.StatusNoContent)
}

type deleteRelationRequest struct {
	Subject string `json:"subject" binding:"required"`
	Type    string `json:"type" binding:"required"`
	Object  string `json:"object" binding:"required"`
}

func (h *RelationHandler) Delete(c *gin.Context) {
	var req deleteRelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	err := h.relations.DeleteRelation(c.Request.Context(), req.Subject, req.Type, req.Object)
	if err != nil {
		if errors.Is(err, services.ErrRelationNotSupported) {
			RespondError(c, http.StatusBadRequest, "relation_rejected", err)
			return
		}
		// A failure after the forward edge was removed is retryable;
		// the client repeats the call to finish the inverse side.
		RespondError(c, http.StatusInternalServerError, "relation_delete_incomplete", err)
		return
	}
	c.Status(http.StatusNoContent)
}
