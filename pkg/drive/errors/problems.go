package errors

import (
	"encoding/json"
	"net/http"
)

const (
	ProblemTypeAlreadyExists   string = "https://github.com/diwise/item-drive/errors/AlreadyExists"
	ProblemTypeBadRequestData  string = "https://github.com/diwise/item-drive/errors/BadRequestData"
	ProblemTypeInternalError   string = "https://github.com/diwise/item-drive/errors/InternalError"
	ProblemTypeInvalidRequest  string = "https://github.com/diwise/item-drive/errors/InvalidRequest"
	ProblemTypeNotFound        string = "https://github.com/diwise/item-drive/errors/ResourceNotFound"
	ProblemTypeSchemaViolation string = "https://github.com/diwise/item-drive/errors/SchemaViolation"
	ProblemTypeUnauthorized    string = "https://github.com/diwise/item-drive/errors/UnauthorizedRequest"
)

//ProblemDetails stores details about a certain problem according to RFC7807
//See https://tools.ietf.org/html/rfc7807
type ProblemDetails interface {
	ContentType() string
	MarshalJSON() ([]byte, error)
	ResponseCode() int
	WriteResponse(w http.ResponseWriter)
}

//ProblemDetailsImpl is an implementation of the ProblemDetails interface
type ProblemDetailsImpl struct {
	typ     string
	title   string
	detail  string
	reason  string
	code    int
	traceID string
}

const (
	//ProblemReportContentType as required by https://tools.ietf.org/html/rfc7807
	ProblemReportContentType string = "application/problem+json"
)

func newProblem(typ, title, detail string, code int, traceID string) ProblemDetailsImpl {
	return ProblemDetailsImpl{
		typ:     typ,
		title:   title,
		detail:  detail,
		code:    code,
		traceID: traceID,
	}
}

//AlreadyExists reports that the request tries to create an already existing fact
type AlreadyExists struct {
	ProblemDetailsImpl
}

func NewAlreadyExists(detail, traceID string) *AlreadyExists {
	return &AlreadyExists{newProblem(ProblemTypeAlreadyExists, "Already Exists", detail, http.StatusConflict, traceID)}
}

func ReportNewAlreadyExistsError(w http.ResponseWriter, detail, traceID string) {
	NewAlreadyExists(detail, traceID).WriteResponse(w)
}

//BadRequestData reports that the request includes input data which does not meet the requirements of the operation
type BadRequestData struct {
	ProblemDetailsImpl
}

func NewBadRequestData(detail, traceID string) *BadRequestData {
	return &BadRequestData{newProblem(ProblemTypeBadRequestData, "Bad Request Data", detail, http.StatusBadRequest, traceID)}
}

func ReportNewBadRequestData(w http.ResponseWriter, detail, traceID string) {
	NewBadRequestData(detail, traceID).WriteResponse(w)
}

//InvalidRequest reports that the request is syntactically invalid or includes wrong content
type InvalidRequest struct {
	ProblemDetailsImpl
}

func NewInvalidRequest(detail, traceID string) *InvalidRequest {
	return &InvalidRequest{newProblem(ProblemTypeInvalidRequest, "Invalid Request", detail, http.StatusBadRequest, traceID)}
}

func ReportNewInvalidRequest(w http.ResponseWriter, detail, traceID string) {
	NewInvalidRequest(detail, traceID).WriteResponse(w)
}

//InternalError reports that there has been an error during the operation execution
type InternalError struct {
	ProblemDetailsImpl
}

func (ie InternalError) Error() string {
	return ie.detail
}

func (ie InternalError) Is(target error) bool { return target == ErrInternal }

func NewInternalError(detail, traceID string) *InternalError {
	return &InternalError{newProblem(ProblemTypeInternalError, "Internal Error", detail, http.StatusInternalServerError, traceID)}
}

func ReportNewInternalError(w http.ResponseWriter, detail, traceID string) {
	NewInternalError(detail, traceID).WriteResponse(w)
}

//NotFound reports that the request failed with a not found error of some kind
type NotFound struct {
	ProblemDetailsImpl
}

func NewNotFound(detail, traceID string) *NotFound {
	return &NotFound{newProblem(ProblemTypeNotFound, "Not Found", detail, http.StatusNotFound, traceID)}
}

func ReportNotFoundError(w http.ResponseWriter, detail, traceID string) {
	NewNotFound(detail, traceID).WriteResponse(w)
}

type UnauthorizedRequest struct {
	ProblemDetailsImpl
}

func NewUnauthorizedRequest(detail, traceID string) *UnauthorizedRequest {
	return &UnauthorizedRequest{newProblem(ProblemTypeUnauthorized, "Unauthorized Request", detail, http.StatusUnauthorized, traceID)}
}

func ReportUnauthorizedRequest(w http.ResponseWriter, detail, traceID string) {
	NewUnauthorizedRequest(detail, traceID).WriteResponse(w)
}

//SchemaViolation reports that an item does not conform to the ontology
type SchemaViolation struct {
	ProblemDetailsImpl
}

func NewSchemaViolation(reason SchemaReason, detail, traceID string) *SchemaViolation {
	sv := &SchemaViolation{newProblem(ProblemTypeSchemaViolation, "Schema Violation", detail, http.StatusUnprocessableEntity, traceID)}
	sv.reason = string(reason)
	return sv
}

func ReportSchemaViolation(w http.ResponseWriter, reason SchemaReason, detail, traceID string) {
	NewSchemaViolation(reason, detail, traceID).WriteResponse(w)
}

//ContentType returns the ContentType to be used when returning this problem
func (p *ProblemDetailsImpl) ContentType() string {
	return ProblemReportContentType
}

//MarshalJSON is called when a ProblemDetailsImpl instance should be serialized to JSON
func (p *ProblemDetailsImpl) MarshalJSON() ([]byte, error) {
	var traceID *string

	if p.traceID != "" {
		traceID = &p.traceID
	}

	return json.Marshal(struct {
		Type    string  `json:"type"`
		Title   string  `json:"title"`
		Detail  string  `json:"detail"`
		Reason  string  `json:"reason,omitempty"`
		TraceID *string `json:"traceID,omitempty"`
	}{
		Type:    p.typ,
		Title:   p.title,
		Detail:  p.detail,
		Reason:  p.reason,
		TraceID: traceID,
	})
}

//ResponseCode returns the HTTP response code to be used when returning a specific problem
func (p *ProblemDetailsImpl) ResponseCode() int {

	if p.code != 0 {
		return p.code
	}

	return http.StatusBadRequest
}

//WriteResponse writes the contents of this instance to a http.ResponseWriter
func (p *ProblemDetailsImpl) WriteResponse(w http.ResponseWriter) {
	w.Header().Add("Content-Type", p.ContentType())
	w.Header().Add("Content-Language", "en")
	w.WriteHeader(p.ResponseCode())

	pdbytes, err := json.MarshalIndent(p, "", "  ")
	if err == nil {
		w.Write(pdbytes)
	}
}
