package manifest

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies a manifest failure
type Code string

// Failure codes
const (
	// CodeNotFound indicates the target path or every candidate file is missing
	CodeNotFound Code = "ENOENT"

	// CodeMalformed indicates the file could not be parsed
	CodeMalformed Code = "EMALFORMED"

	// CodeInvalid indicates the manifest failed a blocking validation rule
	CodeInvalid Code = "EINVALID"
)

// Sentinel errors for the manifest package, matched by code through errors.Is
var (
	// ErrNotFound indicates a manifest file or directory does not exist
	ErrNotFound = errors.New("manifest not found")

	// ErrMalformed indicates a manifest is not valid JSON or properties text
	ErrMalformed = errors.New("manifest is malformed")

	// ErrInvalid indicates a manifest failed validation
	ErrInvalid = errors.New("manifest is invalid")
)

// Error represents a classified manifest failure
type Error struct {
	Code    Code
	File    string // absolute path of the manifest, when known
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for the error's code
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == CodeNotFound
	case ErrMalformed:
		return e.Code == CodeMalformed
	case ErrInvalid:
		return e.Code == CodeInvalid
	}
	return false
}

// CodeOf returns the code of a manifest failure, or "" for raw I/O errors
func CodeOf(err error) Code {
	var merr *Error
	if errors.As(err, &merr) {
		return merr.Code
	}
	return ""
}

// FileOf returns the manifest file attached to a failure, or ""
func FileOf(err error) string {
	var merr *Error
	if errors.As(err, &merr) {
		return merr.File
	}
	return ""
}

func newNotFoundError(dir string, candidates []string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("None of %s were found in %s", strings.Join(candidates, ", "), dir),
	}
}

func newMissingFileError(file string, err error) *Error {
	return &Error{
		Code:    CodeNotFound,
		File:    file,
		Message: err.Error(),
		Err:     err,
	}
}

func newMalformedError(file string, err error) *Error {
	return &Error{
		Code:    CodeMalformed,
		File:    file,
		Message: err.Error(),
		Err:     err,
	}
}

func newInvalidError(message string) *Error {
	return &Error{
		Code:    CodeInvalid,
		Message: message,
	}
}
