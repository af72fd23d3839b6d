// Package errs defines the fatal-error taxonomy shared between the
// decoder's internal layers and the public osmpbf package. It lives
// beneath both so internal packages can return typed errors without
// importing the public package that wraps them.
package errs

import "fmt"

// Kind classifies why decoding stopped.
type Kind int

const (
	// Framing covers malformed blob headers/blobs: bad length prefixes,
	// truncated streams, oversized headers or blobs.
	Framing Kind = iota
	// Decompression covers zlib failures and unsupported compression
	// (LZMA is recognized but rejected, never attempted).
	Decompression
	// Protobuf covers malformed wire-format data: bad varints, truncated
	// length-delimited fields, unknown wire types.
	Protobuf
	// Semantic covers structurally valid messages that violate an
	// OSMPBF invariant: string table index out of range, dense array
	// length mismatch, unsupported required feature, unknown primitive
	// group.
	Semantic
	// UndefinedLocation is reserved for a downstream geometry
	// collaborator; this repo never produces it.
	UndefinedLocation
	// Cancelled names cancellation in the taxonomy. No code path in
	// this repo produces it: a cancelled context ends the scheduler's
	// reader loop, and Read then reports clean EOF.
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case Framing:
		return "framing"
	case Decompression:
		return "decompression"
	case Protobuf:
		return "protobuf"
	case Semantic:
		return "semantic"
	case UndefinedLocation:
		return "undefined_location"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// DecodeError is the single error type fatal decode paths produce.
type DecodeError struct {
	Kind Kind
	Msg  string
	Err  error
}

func New(kind Kind, msg string, err error) *DecodeError {
	return &DecodeError{Kind: kind, Msg: msg, Err: err}
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("osmpbf: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("osmpbf: %s: %s", e.Kind, e.Msg)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
