package oaipmh

import "fmt"

// ErrorCode is one of the protocol's fixed error identifiers. Store and
// registry failures are translated into these before leaving the
// repository; internal errors never reach harvesters verbatim.
type ErrorCode string

const (
	CodeBadVerb                 ErrorCode = "badVerb"
	CodeBadArgument             ErrorCode = "badArgument"
	CodeBadResumptionToken      ErrorCode = "badResumptionToken"
	CodeCannotDisseminateFormat ErrorCode = "cannotDisseminateFormat"
	CodeIDDoesNotExist          ErrorCode = "idDoesNotExist"
	CodeNoRecordsMatch          ErrorCode = "noRecordsMatch"
	CodeNoMetadataFormats       ErrorCode = "noMetadataFormats"
	CodeNoSetHierarchy          ErrorCode = "noSetHierarchy"
)

// Error is a protocol-level failure, rendered inside the response
// envelope rather than as a transport error.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("oaipmh: %s: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
