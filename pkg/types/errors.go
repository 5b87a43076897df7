// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a pipeline failure. Every failure the discovery and
// extraction stages report carries exactly one kind.
type ErrorKind int

const (
	// KindUnexpected covers failures outside the named categories.
	KindUnexpected ErrorKind = iota
	// KindNoLinkFound means the listing page held no matching report link.
	KindNoLinkFound
	// KindSourceNotFound means a local report path is missing or unreadable.
	KindSourceNotFound
	// KindInvalidSourceURL means a link is not a fetchable absolute URL.
	KindInvalidSourceURL
	// KindMissingLinkState means extraction ran without a discovered or supplied source.
	KindMissingLinkState
	// KindMalformedDocument means the PDF could not be opened or lacks its
	// page structure or modification date.
	KindMalformedDocument
	// KindTableParse means the table region did not yield the expected rows,
	// columns, or dates.
	KindTableParse
)

func (k ErrorKind) String() string {
	switch k {
	case KindNoLinkFound:
		return "no_link_found"
	case KindSourceNotFound:
		return "source_not_found"
	case KindInvalidSourceURL:
		return "invalid_source_url"
	case KindMissingLinkState:
		return "missing_link_state"
	case KindMalformedDocument:
		return "malformed_document"
	case KindTableParse:
		return "table_parse"
	default:
		return "unexpected"
	}
}

// Sentinels for errors.Is. An *Error matches the sentinel of its kind.
var (
	ErrUnexpected        = errors.New("unexpected failure")
	ErrNoLinkFound       = errors.New("no report link found")
	ErrSourceNotFound    = errors.New("report source not found")
	ErrInvalidSourceURL  = errors.New("invalid report URL")
	ErrMissingLinkState  = errors.New("no report source discovered or supplied")
	ErrMalformedDocument = errors.New("malformed report document")
	ErrTableParse        = errors.New("report table could not be parsed")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNoLinkFound:
		return ErrNoLinkFound
	case KindSourceNotFound:
		return ErrSourceNotFound
	case KindInvalidSourceURL:
		return ErrInvalidSourceURL
	case KindMissingLinkState:
		return ErrMissingLinkState
	case KindMalformedDocument:
		return ErrMalformedDocument
	case KindTableParse:
		return ErrTableParse
	default:
		return ErrUnexpected
	}
}

// Error is a classified pipeline failure.
type Error struct {
	Kind ErrorKind
	// Op names the step that failed (e.g. "discover", "extract").
	Op  string
	Err error
}

// NewError wraps err with a kind and operation name. A nil err is replaced by
// the kind's sentinel so the message is never empty.
func NewError(kind ErrorKind, op string, err error) *Error {
	if err == nil {
		err = kind.sentinel()
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf is NewError with a formatted cause.
func Errorf(kind ErrorKind, op, format string, args ...any) *Error {
	return NewError(kind, op, fmt.Errorf(format, args...))
}

func (e *Error) Error() string {
	s := e.Kind.sentinel().Error()
	if e.Err != nil && !errors.Is(e.Err, e.Kind.sentinel()) {
		s += ": " + e.Err.Error()
	}
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	return s
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel belonging to the error's kind.
func (e *Error) Is(target error) bool { return target == e.Kind.sentinel() }

// KindOf returns the kind of the first *Error in err's chain, or
// KindUnexpected when there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}
