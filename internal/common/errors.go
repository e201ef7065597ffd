package common

import (
	"errors"
	"fmt"

	"github.com/joseph-ayodele/contracts-ocr/constants"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes
const (
	CodeConfig             = "CONFIG_ERROR"
	CodeBatchSizeExceeded  = "BATCH_SIZE_EXCEEDED"
	CodeDocumentProcessing = "DOCUMENT_PROCESSING_ERROR"
	CodeEmptyResultSet     = "EMPTY_RESULT_SET"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInternal           = "INTERNAL"
)

// Common application errors
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrBatchSizeExceeded  = errors.New("batch size exceeded")
	ErrDocumentProcessing = errors.New("document processing failed")
	ErrEmptyResultSet     = errors.New("no document yielded a record")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// BatchSizeError rejects a batch of n documents against limit.
func BatchSizeError(n, limit int) error {
	return NewAppError(CodeBatchSizeExceeded,
		fmt.Sprintf("at most %d documents per batch, got %d", limit, n),
		ErrBatchSizeExceeded)
}

// EmptyResultError reports that none of n documents produced a record.
func EmptyResultError(n int) error {
	return NewAppError(CodeEmptyResultSet,
		fmt.Sprintf("none of %d documents could be extracted", n),
		ErrEmptyResultSet)
}

// DocumentError is a failure confined to one document of a batch.
type DocumentError struct {
	Name  string
	Stage constants.Stage
	Err   error
}

func NewDocumentError(name string, stage constants.Stage, err error) *DocumentError {
	return &DocumentError{Name: name, Stage: stage, Err: err}
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", CodeDocumentProcessing, e.Name, e.Stage, e.Err)
}

// Unwrap exposes both ErrDocumentProcessing and the underlying cause.
func (e *DocumentError) Unwrap() []error {
	return []error{ErrDocumentProcessing, e.Err}
}
