package dicomweb

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound is matched by errors.Is when a CA bundle or client
	// certificate path does not exist.
	ErrFileNotFound = errors.New("dicomweb: file not found")

	// ErrDependencyMissing is matched by errors.Is when an optional capability
	// (such as cloud platform authorization) is not available in this build.
	ErrDependencyMissing = errors.New("dicomweb: dependency missing")

	// ErrNilSession is returned when a nil session is passed for augmentation.
	ErrNilSession = errors.New("dicomweb: nil session")
)

// FileNotFoundError reports a certificate file that could not be found after
// path expansion.
type FileNotFoundError struct {
	// Kind describes the file, e.g. "CA bundle" or "certificate".
	Kind string
	// Path is the resolved absolute path that was checked.
	Path string
	// Err is the underlying stat error.
	Err error
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("%s file does not exist: %s", e.Kind, e.Path)
}

// Unwrap returns the underlying stat error.
func (e *FileNotFoundError) Unwrap() error { return e.Err }

// Is reports whether target is ErrFileNotFound.
func (e *FileNotFoundError) Is(target error) bool { return target == ErrFileNotFound }

// DependencyMissingError reports an optional capability that was requested
// but is not linked into the program. It is a packaging condition and never
// says anything about the validity of credentials.
type DependencyMissingError struct {
	// Capability names what is missing, e.g. "Google Cloud Platform authorization".
	Capability string
	// Hint tells the caller how to enable the capability.
	Hint string
}

func (e *DependencyMissingError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("%s is not available", e.Capability)
	}
	return fmt.Sprintf("%s is not available: %s", e.Capability, e.Hint)
}

// Is reports whether target is ErrDependencyMissing.
func (e *DependencyMissingError) Is(target error) bool { return target == ErrDependencyMissing }
