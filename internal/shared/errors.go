package shared

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrInvalidConfig  = fmt.Errorf("invalid configuration")
	ErrUnknownStation = fmt.Errorf("unknown station")

	// Input validation errors
	ErrInvalidInput = fmt.Errorf("invalid input")
	ErrOutOfRange   = fmt.Errorf("index out of range")

	// Session state errors
	ErrNoPlaylists        = fmt.Errorf("no playlist exists")
	ErrNoPlaylistSelected = fmt.Errorf("please select a playlist first")
	ErrPlaylistExists     = fmt.Errorf("name already exists, please use another name")
	ErrDuplicateTrack     = fmt.Errorf("track already exists in playlist")
	ErrNoSearchResults    = fmt.Errorf("currently no search result, please search first")
	ErrTraversalActive    = fmt.Errorf("a playlist is already playing, stop it first")

	// Collaborator failures
	ErrSource  = fmt.Errorf("music source failure")
	ErrStorage = fmt.Errorf("playlist storage failure")
)

// SourceError is returned by music source adapters. It carries the failed operation and the cause.
type SourceError struct {
	Op  string
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Is reports whether target is [ErrSource].
func (e *SourceError) Is(target error) bool { return target == ErrSource }

// NewSourceError wraps err as a [SourceError] for op. A nil err yields nil.
func NewSourceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &SourceError{Op: op, Err: err}
}

// StorageError is returned by playlist stores when reading or writing persisted state fails.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s playlists: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s playlists (%s): %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is reports whether target is [ErrStorage].
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// ErrorKind classifies errors for user-facing reporting.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInput
	KindState
	KindSource
	KindStorage
)

func (k ErrorKind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindState:
		return "state"
	case KindSource:
		return "source"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Kind classifies err into the error taxonomy used by the console.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrStorage):
		return KindStorage
	case errors.Is(err, ErrSource):
		return KindSource
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrOutOfRange):
		return KindInput
	case errors.Is(err, ErrNoPlaylists),
		errors.Is(err, ErrNoPlaylistSelected),
		errors.Is(err, ErrPlaylistExists),
		errors.Is(err, ErrDuplicateTrack),
		errors.Is(err, ErrNoSearchResults),
		errors.Is(err, ErrTraversalActive):
		return KindState
	default:
		return KindUnknown
	}
}
