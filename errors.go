// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// PDFError represents an error that occurred during PDF processing.
// It includes contextual information about where the error occurred.
type PDFError struct {
	Op   string // Operation that failed (e.g., "extract text", "parse font")
	Page int    // Page number where error occurred (0 if not page-specific)
	Path string // File path if applicable
	Err  error  // Underlying error
}

func (e *PDFError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("pdf: %s on page %d: %v", e.Op, e.Page, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("pdf: %s (%s): %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("pdf: %s: %v", e.Op, e.Err)
}

func (e *PDFError) Unwrap() error {
	return e.Err
}

// Common errors
var (
	// ErrInvalidFont indicates a font definition is malformed or unsupported
	ErrInvalidFont = errors.New("invalid or unsupported font")

	// ErrUnsupportedEncoding indicates the character encoding is not supported
	ErrUnsupportedEncoding = errors.New("unsupported character encoding")

	// ErrMalformedStream indicates a content stream is malformed
	ErrMalformedStream = errors.New("malformed content stream")

	// ErrInvalidPage indicates an invalid page number or corrupted page
	ErrInvalidPage = errors.New("invalid page")

	// ErrEncrypted indicates the PDF is encrypted and cannot be read without a password
	ErrEncrypted = errors.New("PDF is encrypted")

	// ErrCorrupted indicates the PDF file structure is corrupted
	ErrCorrupted = errors.New("PDF file is corrupted")

	// ErrUnsupportedVersion indicates the PDF version is not supported
	ErrUnsupportedVersion = errors.New("unsupported PDF version")

	// ErrNoContent indicates the page has no content
	ErrNoContent = errors.New("page has no content")
)

// Kind classifies an extraction failure, in order of severity. Structural
// kinds (InvalidHeader, InvalidXRef, CircularReference) abort extraction
// unless the active ErrorConfig sets ContinueOnParseError; the remaining
// kinds are recovered locally by the component that raised them.
type Kind int

const (
	InvalidHeader Kind = iota
	InvalidXRef
	MissingObject
	InvalidStream
	EncodingError
	SyntaxError
	CircularReference
	OutputTooLarge
	UnsupportedFilter
)

func (k Kind) String() string {
	switch k {
	case InvalidHeader:
		return "InvalidHeader"
	case InvalidXRef:
		return "InvalidXRef"
	case MissingObject:
		return "MissingObject"
	case InvalidStream:
		return "InvalidStream"
	case EncodingError:
		return "EncodingError"
	case SyntaxError:
		return "SyntaxError"
	case CircularReference:
		return "CircularReference"
	case OutputTooLarge:
		return "OutputTooLarge"
	case UnsupportedFilter:
		return "UnsupportedFilter"
	default:
		return "Unknown"
	}
}

// structural reports whether k is fatal by default (InvalidHeader,
// InvalidXRef, CircularReference) rather than locally recoverable.
func (k Kind) structural() bool {
	switch k {
	case InvalidHeader, InvalidXRef, CircularReference:
		return true
	default:
		return false
	}
}

// ExtractError records one accumulated failure during extraction: what kind
// it was, where in the byte stream or document it happened, and the
// underlying error that triggered it (wrapped with github.com/pkg/errors so
// a stack trace survives from the point of detection).
type ExtractError struct {
	Kind    Kind
	Offset  int64
	Page    int // 0 if not page-specific
	Message string
	Err     error
}

func (e *ExtractError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("pdf: %s at offset %d (page %d): %s", e.Kind, e.Offset, e.Page, e.Message)
	}
	return fmt.Sprintf("pdf: %s at offset %d: %s", e.Kind, e.Offset, e.Message)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// newExtractError wraps err with pkg/errors (capturing a stack trace from
// here) and records it as an ExtractError of the given kind.
func newExtractError(kind Kind, offset int64, page int, message string, err error) *ExtractError {
	var wrapped error
	if err != nil {
		wrapped = pkgerrors.Wrap(err, message)
	} else {
		wrapped = pkgerrors.New(message)
	}
	return &ExtractError{Kind: kind, Offset: offset, Page: page, Message: message, Err: wrapped}
}

// ErrorConfig governs how a Document tolerates malformed input, per spec
// §4.13: structural failures are fatal unless ContinueOnParseError is set;
// object-level and page-level failures are recovered locally when their
// matching Continue* flag is set, with each recovered failure appended to
// the Document's error log (subject to MaxErrors).
type ErrorConfig struct {
	MaxErrors               int
	ContinueOnParseError    bool
	ContinueOnMissingObject bool
	ContinueOnEncodingError bool
	LogErrors               bool
}

// Strict aborts extraction on the first error of any kind.
func Strict() ErrorConfig {
	return ErrorConfig{MaxErrors: 1, LogErrors: true}
}

// Default continues past individual-object failures (MissingObject,
// InvalidStream, EncodingError, SyntaxError) but still hard-fails on
// structural errors (InvalidHeader, InvalidXRef, CircularReference).
func Default() ErrorConfig {
	return ErrorConfig{
		MaxErrors:               1000,
		ContinueOnMissingObject: true,
		ContinueOnEncodingError: true,
		LogErrors:               true,
	}
}

// Permissive never aborts on a recoverable error, including structural
// ones, and only stops once MaxErrors is exceeded.
func Permissive() ErrorConfig {
	return ErrorConfig{
		MaxErrors:               1 << 30,
		ContinueOnParseError:    true,
		ContinueOnMissingObject: true,
		ContinueOnEncodingError: true,
		LogErrors:               true,
	}
}

// tolerates reports whether cfg allows extraction to continue past an error
// of the given kind rather than aborting.
func (cfg ErrorConfig) tolerates(kind Kind) bool {
	if kind.structural() {
		return cfg.ContinueOnParseError
	}
	switch kind {
	case MissingObject:
		return cfg.ContinueOnMissingObject
	case EncodingError, SyntaxError, InvalidStream:
		return cfg.ContinueOnEncodingError
	default:
		return false
	}
}

// errorLog accumulates ExtractErrors up to cfg.MaxErrors, matching spec
// §7's "when max_errors is exceeded, extraction halts and returns what has
// been produced" — Add returns false once the cap is reached, signaling the
// caller to stop rather than keep accumulating.
type errorLog struct {
	cfg     ErrorConfig
	entries []*ExtractError
}

func newErrorLog(cfg ErrorConfig) *errorLog {
	return &errorLog{cfg: cfg}
}

// add records err when cfg.LogErrors is set and reports whether the
// caller should keep going: false means either the kind is fatal under
// cfg, or MaxErrors has been reached.
func (l *errorLog) add(err *ExtractError) bool {
	if l.cfg.LogErrors {
		l.entries = append(l.entries, err)
	}
	if len(l.entries) >= l.cfg.MaxErrors && l.cfg.MaxErrors > 0 {
		return false
	}
	return l.cfg.tolerates(err.Kind)
}

// Errors returns the accumulated error records, oldest first.
func (l *errorLog) Errors() []*ExtractError {
	return l.entries
}

// errOutputTooLarge is returned by boundedReader once a decoded stream
// exceeds maxDecodedStreamBytes, surfacing as an OutputTooLarge ExtractError
// at the call site that reads the stream.
var errOutputTooLarge = errors.New("pdf: decoded stream exceeds maximum output size")

// wrapError wraps an error with operation context
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PDFError{Op: op, Err: err}
}

// wrapPageError wraps an error with page-specific context
func wrapPageError(op string, page int, err error) error {
	if err == nil {
		return nil
	}
	return &PDFError{Op: op, Page: page, Err: err}
}
