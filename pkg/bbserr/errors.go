// Package bbserr defines the structured error values surfaced by the bbs-2023
// pipeline. Every error returned from a package in this module carries a fixed
// code, the operation that raised it, and a human message, so callers can
// branch on Code without parsing strings.
package bbserr

import (
	"errors"
	"fmt"
)

// Code is a fixed error classification surfaced by the core pipeline.
type Code string

const (
	InvalidKeypairLength    Code = "INVALID_KEYPAIR_LENGTH"
	InvalidKeypairContent   Code = "INVALID_KEYPAIR_CONTENT"
	DecodingError           Code = "DECODING_ERROR"
	KeypairExpiredError     Code = "KEYPAIR_EXPIRED_ERROR"
	KeypairExportError      Code = "KEYPAIR_EXPORT_ERROR"
	KeypairImportError      Code = "KEYPAIR_IMPORT_ERROR"
	ProofTransformationErr  Code = "PROOF_TRANSFORMATION_ERROR"
	ProofGenerationError    Code = "PROOF_GENERATION_ERROR"
	ProofVerificationError  Code = "PROOF_VERIFICATION_ERROR"
	InvalidVerificationMeth Code = "INVALID_VERIFICATION_METHOD"
	ContextResolutionError  Code = "CONTEXT_RESOLUTION_ERROR"
)

// Error is the structured value every public operation in this module
// returns on failure.
type Error struct {
	Code Code
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs a structured error. err may be nil when the code itself is
// the whole story (e.g. a fixed-shape mismatch with no underlying cause).
func New(code Code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// Newf is New with a formatted underlying message.
func Newf(code Code, op, format string, args ...interface{}) *Error {
	return &Error{Code: code, Op: op, Err: fmt.Errorf(format, args...)}
}

// Is reports whether err is a *Error carrying the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
