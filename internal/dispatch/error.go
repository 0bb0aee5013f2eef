package dispatch

import (
	"errors"
	"fmt"
)

// Document is a decoded JSON value returned by either source: an object
// for single entities and errors, an array for collections and match lists.
type Document any

// Kind classifies a failed call.
type Kind int

const (
	// KindTransport covers connectivity, timeout, and malformed-body
	// failures. It is absorbed by the dispatcher (fallback), never
	// surfaced to the caller as a hard error.
	KindTransport Kind = iota
	// KindApplication is a well-formed error reported by a reachable
	// backend, passed through verbatim.
	KindApplication
	// KindNotFound is a simulation-side missing entity.
	KindNotFound
	// KindNotImplemented is a simulation-side unmapped endpoint.
	KindNotImplemented
	// KindUnsupportedMethod is a caller-side input error, rejected
	// before either source is contacted.
	KindUnsupportedMethod
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport_failure"
	case KindApplication:
		return "application_error"
	case KindNotFound:
		return "not_found"
	case KindNotImplemented:
		return "not_implemented"
	case KindUnsupportedMethod:
		return "unsupported_method"
	default:
		return "unknown"
	}
}

// Error is the structured failure returned across the dispatcher/engine
// boundary. Callers match on Kind instead of probing documents for an
// "error" key.
type Error struct {
	Kind    Kind
	Message string
	// Doc holds the verbatim error document when the backend supplied
	// one (application errors); nil otherwise.
	Doc Document
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Document renders the error in the shape the presentation contract
// expects: the backend's own document when present, {"error": message}
// otherwise.
func (e *Error) Document() Document {
	if e.Doc != nil {
		return e.Doc
	}
	return map[string]any{"error": e.Message}
}

// Errorf builds an Error with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from err. ok is false when err is not a
// dispatch error.
func KindOf(err error) (Kind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}
