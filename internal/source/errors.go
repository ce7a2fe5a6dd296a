package source

import (
	"errors"
	"fmt"
)

// Kind classifies a venue failure for the cycle runner's abort/skip/drop
// decisions.
type Kind int

const (
	// KindAuth covers signing and credential failures. Fatal: the whole
	// cycle aborts. A bad signature is indistinguishable from credential
	// misconfiguration, so both map here.
	KindAuth Kind = iota + 1

	// KindNetwork covers timeouts and connection failures. Retried up to a
	// small bound, then the affected market is skipped.
	KindNetwork

	// KindDataShape covers unparsable or out-of-range venue payloads. The
	// offending record is dropped and counted.
	KindDataShape
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindNetwork:
		return "network"
	case KindDataShape:
		return "data_shape"
	default:
		return "unknown"
	}
}

// Error is a classified venue failure.
type Error struct {
	Kind  Kind
	Venue string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s error: %v", e.Venue, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// AuthError wraps err as a fatal auth failure for venue.
func AuthError(venue string, err error) error {
	return &Error{Kind: KindAuth, Venue: venue, Err: err}
}

// NetworkError wraps err as a retryable network failure for venue.
func NetworkError(venue string, err error) error {
	return &Error{Kind: KindNetwork, Venue: venue, Err: err}
}

// DataShapeError wraps err as a droppable payload failure for venue.
func DataShapeError(venue string, err error) error {
	return &Error{Kind: KindDataShape, Venue: venue, Err: err}
}

// IsAuth reports whether err is classified as an auth failure.
func IsAuth(err error) bool { return hasKind(err, KindAuth) }

// IsNetwork reports whether err is classified as a network failure.
func IsNetwork(err error) bool { return hasKind(err, KindNetwork) }

// IsDataShape reports whether err is classified as a payload-shape failure.
func IsDataShape(err error) bool { return hasKind(err, KindDataShape) }

func hasKind(err error, k Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == k
}
