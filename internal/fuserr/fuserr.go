// Package fuserr defines the closed set of abstract error kinds used
// throughout the image-fusion toolkit.
package fuserr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is one of the toolkit's abstract error categories.
type Kind uint8

const (
	// InvalidArgument: a user- or caller-supplied value is malformed,
	// inconsistent, or empty when non-empty was required.
	InvalidArgument Kind = iota
	// ImageType: an operation cannot handle the given pixel type or
	// channel count.
	ImageType
	// Size: mismatched image dimensions.
	Size
	// FileFormat: a driver cannot decode, cannot encode, or encoded a
	// requested construct lossily.
	FileFormat
	// Runtime: a raster-driver failure at run time.
	Runtime
	// Logic: a contract violation by the caller (missing map key,
	// parsing with an empty descriptor list, ...).
	Logic
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument_error"
	case ImageType:
		return "image_type_error"
	case Size:
		return "size_error"
	case FileFormat:
		return "file_format_error"
	case Runtime:
		return "runtime_error"
	case Logic:
		return "logic_error"
	default:
		return "unknown_error"
	}
}

// Error is the concrete error type for every Kind. Context is an
// ordered chain of annotations (filename, option name, resolution tag,
// date, ...) added as the error propagates outward.
type Error struct {
	Kind    Kind
	Context []string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	for _, c := range e.Context {
		b.WriteString(": ")
		b.WriteString(c)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a Kind-tagged error with a formatted message.
func New(k Kind, format string, args ...any) error {
	return &Error{Kind: k, Err: fmt.Errorf(format, args...)}
}

// Wrap annotates err with context and a Kind, preserving the original
// error for errors.Is/As and fuserr.Is.
func Wrap(k Kind, context string, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return &Error{Kind: fe.Kind, Context: append([]string{context}, fe.Context...), Err: fe.Err}
	}
	return &Error{Kind: k, Context: []string{context}, Err: err}
}

// Is reports whether err (or any error it wraps) carries the given Kind.
func Is(err error, k Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == k
	}
	return false
}

// Invalidf is a convenience constructor for InvalidArgument.
func Invalidf(format string, args ...any) error { return New(InvalidArgument, format, args...) }

// Typef is a convenience constructor for ImageType.
func Typef(format string, args ...any) error { return New(ImageType, format, args...) }

// Sizef is a convenience constructor for Size.
func Sizef(format string, args ...any) error { return New(Size, format, args...) }

// FormatErrorf is a convenience constructor for FileFormat.
func FormatErrorf(format string, args ...any) error { return New(FileFormat, format, args...) }

// Runtimef is a convenience constructor for Runtime.
func Runtimef(format string, args ...any) error { return New(Runtime, format, args...) }

// Logicf is a convenience constructor for Logic.
func Logicf(format string, args ...any) error { return New(Logic, format, args...) }
