package leads

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationErrors maps field names to human-readable messages. All
// fields are validated in one pass; nothing short-circuits.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "invalid submission"
	}
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	return fmt.Sprintf("invalid submission: %s", strings.Join(fields, ", "))
}

// StorageKind classifies why the store rejected a write. Used for
// operator diagnostics only; never shown verbatim to the end user.
type StorageKind string

const (
	StorageSchemaMissing    StorageKind = "schema_missing"
	StoragePermissionDenied StorageKind = "permission_denied"
	StorageConnectivity     StorageKind = "connectivity"
	StorageOther            StorageKind = "other"
)

// StorageError wraps a persistence failure. It is fatal to the current
// submission.
type StorageError struct {
	Kind StorageKind
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("leads: storage %s: %v", e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// AsValidationErrors unwraps err into a ValidationErrors map, if it is one.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	ok := errors.As(err, &v)
	return v, ok
}

// AsStorageError unwraps err into a StorageError, if it is one.
func AsStorageError(err error) (*StorageError, bool) {
	var s *StorageError
	ok := errors.As(err, &s)
	return s, ok
}
