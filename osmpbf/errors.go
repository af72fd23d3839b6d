package osmpbf

import (
	"errors"

	"github.com/wegman-software/go-osmpbf/internal/errs"
)

// ErrorKind classifies why a Scanner stopped decoding.
type ErrorKind int

const (
	// KindFraming covers malformed blob headers/blobs: bad length
	// prefixes, truncated streams, oversized headers or blobs.
	KindFraming ErrorKind = ErrorKind(errs.Framing)
	// KindDecompression covers zlib failures and rejected LZMA blobs.
	KindDecompression = ErrorKind(errs.Decompression)
	// KindProtobuf covers malformed wire-format data.
	KindProtobuf = ErrorKind(errs.Protobuf)
	// KindSemantic covers structurally valid messages that violate an
	// OSMPBF invariant.
	KindSemantic = ErrorKind(errs.Semantic)
	// KindUndefinedLocation is reserved for a downstream geometry
	// collaborator; this package never produces it.
	KindUndefinedLocation = ErrorKind(errs.UndefinedLocation)
)

func (k ErrorKind) String() string {
	return errs.Kind(k).String()
}

// DecodeError is the error type every fatal Scanner failure produces.
// Callers inspect Kind via errors.As.
type DecodeError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *DecodeError) Error() string {
	return (&errs.DecodeError{Kind: errs.Kind(e.Kind), Msg: e.Msg, Err: e.Err}).Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// wrapErr translates an internal *errs.DecodeError into the public
// *DecodeError type. Non-taxonomy errors pass through unchanged.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	var de *errs.DecodeError
	if errors.As(err, &de) {
		return &DecodeError{Kind: ErrorKind(de.Kind), Msg: de.Msg, Err: de.Err}
	}
	return err
}
