package handlers

import (
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vocnet/skos-backend/internal/oaipmh"
	"github.com/vocnet/skos-backend/internal/platform/logger"
)

// oaiEnvelope is the protocol response wrapper. Exactly one payload
// field (or the error) is populated per response.
type oaiEnvelope struct {
	XMLName      xml.Name   `xml:"OAI-PMH"`
	XMLNS        string     `xml:"xmlns,attr"`
	ResponseDate string     `xml:"responseDate"`
	Request      oaiRequest `xml:"request"`

	Error *oaiProtocolError `xml:"error,omitempty"`

	Identify        *oaipmh.Identity    `xml:"Identify,omitempty"`
	ListSets        *oaipmh.SetList     `xml:"ListSets,omitempty"`
	MetadataFormats *formatList         `xml:"ListMetadataFormats,omitempty"`
	GetRecord       *recordPayload      `xml:"GetRecord,omitempty"`
	ListRecords     *oaipmh.RecordList  `xml:"ListRecords,omitempty"`
	ListIdentifiers *oaipmh.HeaderList  `xml:"ListIdentifiers,omitempty"`
}

type oaiRequest struct {
	Verb    string `xml:"verb,attr,omitempty"`
	BaseURL string `xml:",chardata"`
}

type oaiProtocolError struct {
	Code    string `xml:"code,attr"`
	Message string `xml:",chardata"`
}

type formatList struct {
	Formats []oaipmh.MetadataFormat `xml:"metadataFormat"`
}

type recordPayload struct {
	Record *oaipmh.Record `xml:"record"`
}

// OaiHandler is the single harvesting endpoint. The protocol has one
// retrieval verb multiplexed on the "verb" parameter; GET and POST are
// equivalent, every other method is not implemented.
type OaiHandler struct {
	repo    *oaipmh.Repository
	baseURL string
	log     *logger.Logger
}

func NewOaiHandler(repo *oaipmh.Repository, baseURL string, baseLog *logger.Logger) *OaiHandler {
	return &OaiHandler{
		repo:    repo,
		baseURL: baseURL,
		log:     baseLog.With("handler", "OaiHandler"),
	}
}

func (h *OaiHandler) Handle(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodGet, http.MethodPost:
	default:
		RespondError(c, http.StatusNotImplemented, "not_implemented",
			fmt.Errorf("method %s is not part of the harvesting protocol", c.Request.Method))
		return
	}

	verb := c.Request.FormValue("verb")
	envelope := &oaiEnvelope{
		XMLNS:        "http://www.openarchives.org/OAI/2.0/",
		ResponseDate: oaipmh.FormatDatestamp(time.Now()),
		Request:      oaiRequest{Verb: verb, BaseURL: h.baseURL},
	}

	if err := h.dispatch(c, verb, envelope); err != nil {
		var protoErr *oaipmh.Error
		if errors.As(err, &protoErr) {
			envelope.Error = &oaiProtocolError{Code: string(protoErr.Code), Message: protoErr.Message}
		} else {
			h.log.Error("harvesting request failed", "verb", verb, "error", err)
			RespondError(c, http.StatusInternalServerError, "internal", fmt.Errorf("request could not be served"))
			return
		}
	}
	c.XML(http.StatusOK, envelope)
}

func (h *OaiHandler) dispatch(c *gin.Context, verb string, envelope *oaiEnvelope) error {
	ctx := c.Request.Context()
	token := c.Request.FormValue("resumptionToken")

	switch verb {
	case "Identify":
		id, err := h.repo.Identify(ctx)
		if err != nil {
			return err
		}
		envelope.Identify = id
		return nil

	case "ListSets":
		var (
			sets *oaipmh.SetList
			err  error
		)
		if token != "" {
			sets, err = h.repo.ListSetsByToken(ctx, token)
		} else {
			sets, err = h.repo.ListSets(ctx)
		}
		if err != nil {
			return err
		}
		envelope.ListSets = sets
		return nil

	case "ListMetadataFormats":
		formats, err := h.repo.ListMetadataFormats(ctx, c.Request.FormValue("identifier"))
		if err != nil {
			return err
		}
		envelope.MetadataFormats = &formatList{Formats: formats}
		return nil

	case "GetRecord":
		record, err := h.repo.GetRecord(ctx, c.Request.FormValue("identifier"), c.Request.FormValue("metadataPrefix"))
		if err != nil {
			return err
		}
		envelope.GetRecord = &recordPayload{Record: record}
		return nil

	case "ListRecords":
		if token != "" {
			records, err := h.repo.ListRecordsByToken(ctx, token)
			if err != nil {
				return err
			}
			envelope.ListRecords = records
			return nil
		}
		from, until, err := parseWindow(c)
		if err != nil {
			return err
		}
		records, err := h.repo.ListRecords(ctx, c.Request.FormValue("metadataPrefix"), c.Request.FormValue("set"), from, until)
		if err != nil {
			return err
		}
		envelope.ListRecords = records
		return nil

	case "ListIdentifiers":
		if token != "" {
			headers, err := h.repo.ListIdentifiersByToken(ctx, token)
			if err != nil {
				return err
			}
			envelope.ListIdentifiers = headers
			return nil
		}
		from, until, err := parseWindow(c)
		if err != nil {
			return err
		}
		headers, err := h.repo.ListIdentifiers(ctx, c.Request.FormValue("metadataPrefix"), c.Request.FormValue("set"), from, until)
		if err != nil {
			return err
		}
		envelope.ListIdentifiers = headers
		return nil

	default:
		return oaipmh.NewError(oaipmh.CodeBadVerb, "unknown verb %q", verb)
	}
}

func parseWindow(c *gin.Context) (*time.Time, *time.Time, error) {
	from, err := parseDatestamp(c.Request.FormValue("from"))
	if err != nil {
		return nil, nil, err
	}
	until, err := parseDatestamp(c.Request.FormValue("until"))
	if err != nil {
		return nil, nil, err
	}
	return from, until, nil
}

// parseDatestamp accepts both protocol granularities: full
// second-level timestamps and bare dates.
func parseDatestamp(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05Z", "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			ts = ts.UTC()
			return &ts, nil
		}
	}
	return nil, oaipmh.NewError(oaipmh.CodeBadArgument, "datestamp %q is not in a supported granularity", raw)
}
