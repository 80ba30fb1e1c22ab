package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var ErrAlreadyExists = fmt.Errorf("already exists")
var ErrBadRequest = fmt.Errorf("bad request")
var ErrBadResponse = fmt.Errorf("bad response")
var ErrInternal = fmt.Errorf("internal error")
var ErrNotFound = fmt.Errorf("not found")
var ErrRequest = fmt.Errorf("request error")
var ErrSchema = fmt.Errorf("schema violation")
var ErrUnauthorized = fmt.Errorf("unauthorized")
var ErrValidation = fmt.Errorf("validation error")

type myError struct {
	msg    string
	target error
}

func (m myError) Error() string        { return m.msg }
func (m myError) Is(target error) bool { return target == m.target }

func NewAlreadyExistsError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrAlreadyExists,
	}
}

func NewBadRequestError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrBadRequest,
	}
}

func NewNotFoundError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrNotFound,
	}
}

func NewUnauthorizedError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrUnauthorized,
	}
}

// NewValidationError reports malformed input to fact or item construction
func NewValidationError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrValidation,
	}
}

// SchemaReason names the ontology rule that an item violated
type SchemaReason string

const (
	ReasonMissingType          SchemaReason = "missing type"
	ReasonUnknownType          SchemaReason = "unknown type"
	ReasonIncompleteProperty   SchemaReason = "incomplete property definition"
	ReasonNoRange              SchemaReason = "no range"
	ReasonRangeMismatch        SchemaReason = "range mismatch"
	ReasonDomainMismatch       SchemaReason = "domain mismatch"
	ReasonDanglingReference    SchemaReason = "dangling reference"
	ReasonUnexpectedValueShape SchemaReason = "unexpected value shape"
)

// SchemaError is returned when an item does not conform to the ontology stored in the drive
type SchemaError struct {
	Reason SchemaReason
	msg    string
}

func (se *SchemaError) Error() string {
	if se.msg == "" {
		return string(se.Reason)
	}
	return fmt.Sprintf("%s: %s", se.Reason, se.msg)
}

func (se *SchemaError) Is(target error) bool { return target == ErrSchema }

func NewSchemaError(reason SchemaReason, msg string) error {
	return &SchemaError{
		Reason: reason,
		msg:    msg,
	}
}

// SchemaReasonOf returns the reason carried by a SchemaError anywhere in the chain of err
func SchemaReasonOf(err error) (SchemaReason, bool) {
	var se *SchemaError
	if errors.As(err, &se) {
		return se.Reason, true
	}
	return "", false
}

func NewErrorFromProblemReport(code int, contentType string, body []byte) error {
	report := &struct {
		Type   string `json:"type"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
		Reason string `json:"reason"`
	}{}

	err := json.Unmarshal(body, report)
	if err != nil {
		return fmt.Errorf("failed to process problem report (content-type: %s): %s", contentType, err.Error())
	}

	if code == http.StatusNotFound || report.Type == ProblemTypeNotFound {
		return NewNotFoundError(report.Detail)
	}

	switch report.Type {
	case ProblemTypeAlreadyExists:
		return NewAlreadyExistsError(report.Detail)
	case ProblemTypeBadRequestData:
		return NewBadRequestError(report.Detail)
	case ProblemTypeInvalidRequest:
		return NewValidationError(report.Detail)
	case ProblemTypeUnauthorized:
		return NewUnauthorizedError(report.Detail)
	case ProblemTypeSchemaViolation:
		return &SchemaError{Reason: SchemaReason(report.Reason), msg: report.Detail}
	}

	return NewInternalError(
		fmt.Sprintf("[code: %d] unknown problem report of type \"%s\" with detail \"%s\" received",
			code, report.Type, report.Detail,
		),
		"",
	)
}
