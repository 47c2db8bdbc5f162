package oaipmh

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// ResumptionToken carries the full continuation state of a listing:
// the next offset plus the original query parameters. Nothing is kept
// server-side between pages.
type ResumptionToken struct {
	Offset         int    `json:"offset"`
	MetadataPrefix string `json:"metadataPrefix"`
	Set            string `json:"set,omitempty"`
	// From and Until are epoch seconds; the protocol granularity is
	// one second, so nothing finer survives the round trip anyway.
	From  *int64 `json:"from,omitempty"`
	Until *int64 `json:"until,omitempty"`
}

// NewResumptionToken builds a token from the listing parameters.
func NewResumptionToken(offset int, metadataPrefix, set string, from, until *time.Time) ResumptionToken {
	tok := ResumptionToken{
		Offset:         offset,
		MetadataPrefix: metadataPrefix,
		Set:            set,
	}
	if from != nil {
		sec := from.Unix()
		tok.From = &sec
	}
	if until != nil {
		sec := until.Unix()
		tok.Until = &sec
	}
	return tok
}

// FromTime returns the decoded lower window bound, if any.
func (t ResumptionToken) FromTime() *time.Time {
	return epochTime(t.From)
}

// UntilTime returns the decoded upper window bound, if any.
func (t ResumptionToken) UntilTime() *time.Time {
	return epochTime(t.Until)
}

func epochTime(sec *int64) *time.Time {
	if sec == nil {
		return nil
	}
	ts := time.Unix(*sec, 0).UTC()
	return &ts
}

// Encode serializes the token to its opaque transport form.
func (t ResumptionToken) Encode() string {
	raw, _ := json.Marshal(t)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeToken is the inverse of Encode. A malformed or truncated token
// is a protocol failure, never a silent empty result.
func DecodeToken(token string) (ResumptionToken, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return ResumptionToken{}, NewError(CodeBadResumptionToken, "undecodable token %q", token)
	}
	var tok ResumptionToken
	if err := json.Unmarshal(raw, &tok); err != nil {
		return ResumptionToken{}, NewError(CodeBadResumptionToken, "malformed token payload")
	}
	return tok, nil
}
