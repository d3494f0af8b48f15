package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies catalog failures so transports can map them without
// inspecting messages.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindEmptyCatalog
	KindParse
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindNotFound:
		return "NOT_FOUND"
	case KindEmptyCatalog:
		return "EMPTY_CATALOG"
	case KindParse:
		return "PARSE"
	default:
		return "UNKNOWN"
	}
}

// CatalogError is the error type returned by every catalog operation.
type CatalogError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *CatalogError) Error() string {
	switch {
	case e.Message == "" && e.Err == nil:
		return e.Kind.String()
	case e.Err == nil:
		return e.Message
	case e.Message == "":
		return e.Err.Error()
	default:
		return e.Message + ": " + e.Err.Error()
	}
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels below, so errors.Is(err, ErrNotFound) holds for
// any not-found CatalogError regardless of its message.
func (e *CatalogError) Is(target error) bool {
	t, ok := target.(*CatalogError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrValidation   = &CatalogError{Kind: KindValidation}
	ErrNotFound     = &CatalogError{Kind: KindNotFound}
	ErrEmptyCatalog = &CatalogError{Kind: KindEmptyCatalog}
	ErrParse        = &CatalogError{Kind: KindParse}

	// ErrOutOfStock is wrapped by the not-found error purchase returns for a
	// product whose quantity is zero.
	ErrOutOfStock = errors.New("out of stock")
)

func NewValidationError(format string, args ...interface{}) *CatalogError {
	return &CatalogError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) *CatalogError {
	return &CatalogError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewEmptyCatalogError(message string) *CatalogError {
	return &CatalogError{Kind: KindEmptyCatalog, Message: message}
}

func NewParseError(format string, args ...interface{}) *CatalogError {
	return &CatalogError{Kind: KindParse, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a cause to a new CatalogError of the given kind.
func WrapError(kind ErrorKind, err error, format string, args ...interface{}) *CatalogError {
	return &CatalogError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first CatalogError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var ce *CatalogError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}
