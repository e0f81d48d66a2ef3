package otdoc

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common composition failure conditions.
var (
	ErrFinalized    = errors.New("otdoc: document is finalized")
	ErrStageOrder   = errors.New("otdoc: composition stage out of order")
	ErrNoBackend    = errors.New("otdoc: no converter backend available")
	ErrInvalidParam = errors.New("otdoc: invalid parameter")
)

// OpError represents an error that occurred during a specific engine
// operation. It wraps an underlying error and includes the operation name
// for context.
type OpError struct {
	Op  string // operation name, e.g. "Compose", "Export"
	Err error  // underlying error
}

func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("otdoc.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("otdoc.%s: unknown error", e.Op)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// NewOpError creates a new OpError wrapping the given error with operation
// context.
func NewOpError(op string, err error) *OpError {
	return &OpError{Op: op, Err: err}
}

// DecodeError reports an attachment or signature image whose bytes could not
// be decoded. It is recoverable: the composer skips the image and continues.
type DecodeError struct {
	Filename string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("otdoc: decoding image %q: %v", e.Filename, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// FieldNotFoundError reports a record field that has no slot in the template
// schema. With a static schema this signals template drift and is surfaced
// rather than swallowed.
type FieldNotFoundError struct {
	Field string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("otdoc: no template slot for field %q", e.Field)
}

// LayoutOverflowError reports that even maximal expansion of the attachment
// area could not fit every image. The images listed were demoted to a
// text-only mention instead of being placed visually.
type LayoutOverflowError struct {
	Omitted []string // filenames that did not fit
	MaxRows int      // hard expansion limit of the attachment area
}

func (e *LayoutOverflowError) Error() string {
	return fmt.Sprintf("otdoc: attachment area overflow: %d image(s) demoted to text (area limited to %d rows)",
		len(e.Omitted), e.MaxRows)
}

// ExportUnavailableError reports that no converter backend produced a PDF.
// It carries one message per attempted backend.
type ExportUnavailableError struct {
	Attempts []string
}

func (e *ExportUnavailableError) Error() string {
	if len(e.Attempts) == 0 {
		return "otdoc: pdf export unavailable: no converter backend found"
	}
	return "otdoc: pdf export unavailable: " + strings.Join(e.Attempts, "; ")
}
