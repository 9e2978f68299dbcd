package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeDraftBusy    ErrorCode = "DRAFT_BUSY"

	// Pipeline errors
	CodeConfig            ErrorCode = "CONFIG_ERROR"
	CodeExtraction        ErrorCode = "EXTRACTION_ERROR"
	CodeNoExtractableText ErrorCode = "NO_EXTRACTABLE_TEXT"
	CodeService           ErrorCode = "SERVICE_ERROR"
	CodeSanitization      ErrorCode = "SANITIZATION_ERROR"
	CodeParse             ErrorCode = "PARSE_ERROR"
	CodeSchema            ErrorCode = "SCHEMA_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NewConfigError(message string) *DomainError {
	return NewError(CodeConfig, message, nil)
}

func NewInvalidInputError(message string, cause error) *DomainError {
	return NewError(CodeInvalidInput, message, cause)
}

func NewExtractionError(message string, cause error) *DomainError {
	return NewError(CodeExtraction, message, cause)
}

// NoExtractableTextMessage is surfaced when a document yields too little text to work from.
const NoExtractableTextMessage = "no extractable text found in the document; it may be a scanned image, not selectable text"

func NewNoExtractableTextError(message string) *DomainError {
	return NewError(CodeNoExtractableText, message, nil)
}

func NewSanitizationError(message string) *DomainError {
	return NewError(CodeSanitization, message, nil)
}

func NewParseError(cause error) *DomainError {
	return NewError(CodeParse, "response is not valid JSON", cause)
}

func NewSchemaError(errs SchemaErrors) *DomainError {
	return NewError(CodeSchema, "response does not match the expected schema", errs)
}

func NewDraftBusyError(draftID string) *DomainError {
	e := NewError(CodeDraftBusy, "a generation is already running for this draft", nil)
	e.Context = map[string]interface{}{"draft_id": draftID}
	return e
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

// CodeOf returns the code of the first DomainError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return CodeService
	}
	return ""
}

// ServiceError is returned by a TextGenerator when the remote service answers with a
// non-2xx status or with a 2xx body that carries no text.
type ServiceError struct {
	StatusCode int
	Body       string
	Cause      error
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation service error (status %d): %v", e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("generation service error (status %d): %s", e.StatusCode, e.Body)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// SchemaError points at one field of a model response that does not have the expected shape.
type SchemaError struct {
	Path     string `json:"path"`
	Expected string `json:"expected"`
}

func (e SchemaError) Error() string {
	return fmt.Sprintf("%s: expected %s", e.Path, e.Expected)
}

// SchemaErrors collects every violation found in one response.
type SchemaErrors []SchemaError

func (e SchemaErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, se := range e {
		parts = append(parts, se.Error())
	}
	return strings.Join(parts, "; ")
}
