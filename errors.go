package staticcache

import "fmt"

// StorageError means the local store could not be read or written.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("Storage unavailable: %v", e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// TransportError means no usable response was received from the origin,
// e.g. because of a connection or name resolution failure.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Fetching %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError means the origin answered with a status code that neither
// validates nor replaces the stored copy. Any stored entry is untouched.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Fetching %s: got status %d", e.URL, e.StatusCode)
}
