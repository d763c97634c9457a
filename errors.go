// Package subgraph implements the configuration-driven query/mutation
// engine described in SPEC_FULL.md: schema synthesis from entity configs
// (see the schema package), per-backend input compilation (see
// dialect/sql, dialect/document, dialect/httpds), and cross-source
// resolution of as-type fields (see the resolver package). This root
// package holds the closed set of error kinds shared across all of them
// and the optional plan/schema descriptor Cache.
package subgraph

import (
	"errors"
	"fmt"

	"github.com/the-devoyage/subgraph-go/config"
)

// Sentinel errors for the closed error-kind set of spec.md §7. Use
// errors.Is to check which kind an error belongs to; the concrete types
// below carry the details each kind needs.
var (
	ErrInvalidInput          = errors.New("subgraph: invalid input")
	ErrUnknownField          = errors.New("subgraph: unknown field")
	ErrTypeMismatch          = errors.New("subgraph: type mismatch")
	ErrUnsupportedColumnType = errors.New("subgraph: unsupported column type")
	ErrBackend               = errors.New("subgraph: backend error")
	ErrBackendUnavailable    = errors.New("subgraph: backend unavailable")
	ErrNotFound              = errors.New("subgraph: not found")
	ErrFieldResolution       = errors.New("subgraph: field resolution failed")
	ErrConfig                = errors.New("subgraph: invalid configuration")
)

// InvalidInputError is raised by a compiler before any I/O when a request
// input violates a structural rule (empty values on CreateOne, empty query
// on Update*, a required CreateOne field missing, etc.).
type InvalidInputError struct {
	Entity string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("subgraph: invalid input for %s: %s", e.Entity, e.Reason)
}

// Is reports whether target is ErrInvalidInput.
func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// NewInvalidInputError returns an InvalidInputError for the given entity.
func NewInvalidInputError(entity, reason string) *InvalidInputError {
	return &InvalidInputError{Entity: entity, Reason: reason}
}

// IsInvalidInput reports whether err is (or wraps) an InvalidInputError.
func IsInvalidInput(err error) bool {
	var e *InvalidInputError
	return errors.As(err, &e) || errors.Is(err, ErrInvalidInput)
}

// UnknownFieldError is raised when a predicate or values document names a
// field the target entity doesn't declare.
type UnknownFieldError struct {
	Entity string
	Field  string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("subgraph: entity %s has no field %q", e.Entity, e.Field)
}

func (e *UnknownFieldError) Is(target error) bool { return target == ErrUnknownField }

// NewUnknownFieldError returns an UnknownFieldError.
func NewUnknownFieldError(entity, field string) *UnknownFieldError {
	return &UnknownFieldError{Entity: entity, Field: field}
}

// IsUnknownField reports whether err is (or wraps) an UnknownFieldError.
func IsUnknownField(err error) bool {
	var e *UnknownFieldError
	return errors.As(err, &e) || errors.Is(err, ErrUnknownField)
}

// TypeMismatchError is raised when a supplied value's shape doesn't match
// the field's declared scalar (e.g. a non-hex string for ObjectID).
type TypeMismatchError struct {
	Entity string
	Field  string
	Scalar config.Scalar
	Reason string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("subgraph: %s.%s expects %s: %s", e.Entity, e.Field, e.Scalar, e.Reason)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

// NewTypeMismatchError returns a TypeMismatchError.
func NewTypeMismatchError(entity, field string, scalar config.Scalar, reason string) *TypeMismatchError {
	return &TypeMismatchError{Entity: entity, Field: field, Scalar: scalar, Reason: reason}
}

// IsTypeMismatch reports whether err is (or wraps) a TypeMismatchError.
func IsTypeMismatch(err error) bool {
	var e *TypeMismatchError
	return errors.As(err, &e) || errors.Is(err, ErrTypeMismatch)
}

// UnsupportedColumnTypeError is raised by the SQL scalar codec when a
// column's native type has no mapping into the Value Model for its dialect.
type UnsupportedColumnTypeError struct {
	Dialect    config.Dialect
	ColumnType string
}

func (e *UnsupportedColumnTypeError) Error() string {
	return fmt.Sprintf("subgraph: unsupported column type %q for dialect %s", e.ColumnType, e.Dialect)
}

func (e *UnsupportedColumnTypeError) Is(target error) bool {
	return target == ErrUnsupportedColumnType
}

// NewUnsupportedColumnTypeError returns an UnsupportedColumnTypeError.
func NewUnsupportedColumnTypeError(dialect config.Dialect, columnType string) *UnsupportedColumnTypeError {
	return &UnsupportedColumnTypeError{Dialect: dialect, ColumnType: columnType}
}

// IsUnsupportedColumnType reports whether err is (or wraps) one.
func IsUnsupportedColumnType(err error) bool {
	var e *UnsupportedColumnTypeError
	return errors.As(err, &e) || errors.Is(err, ErrUnsupportedColumnType)
}

// BackendErrorDetail wraps an adapter-level failure with the backend's
// identity and the original message (spec.md §7).
type BackendErrorDetail struct {
	Backend string
	Op      string
	Err     error
}

func (e *BackendErrorDetail) Error() string {
	return fmt.Sprintf("subgraph: %s backend error during %s: %v", e.Backend, e.Op, e.Err)
}

func (e *BackendErrorDetail) Unwrap() error { return e.Err }

func (e *BackendErrorDetail) Is(target error) bool { return target == ErrBackend }

// NewBackendError wraps err with its backend identity and operation name.
func NewBackendError(backend, op string, err error) *BackendErrorDetail {
	return &BackendErrorDetail{Backend: backend, Op: op, Err: err}
}

// IsBackendError reports whether err is (or wraps) a BackendErrorDetail.
func IsBackendError(err error) bool {
	var e *BackendErrorDetail
	return errors.As(err, &e) || errors.Is(err, ErrBackend)
}

// BackendUnavailableError reports a timeout or connection failure talking
// to a backend. It intentionally does not embed the original error's full
// text (which may include connection strings) the way BackendErrorDetail
// does — only the backend identity and a short reason.
type BackendUnavailableError struct {
	Backend string
	Reason  string
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("subgraph: %s backend unavailable: %s", e.Backend, e.Reason)
}

func (e *BackendUnavailableError) Is(target error) bool { return target == ErrBackendUnavailable }

// NewBackendUnavailableError returns a BackendUnavailableError.
func NewBackendUnavailableError(backend, reason string) *BackendUnavailableError {
	return &BackendUnavailableError{Backend: backend, Reason: reason}
}

// IsBackendUnavailable reports whether err is (or wraps) one.
func IsBackendUnavailable(err error) bool {
	var e *BackendUnavailableError
	return errors.As(err, &e) || errors.Is(err, ErrBackendUnavailable)
}

// NotFoundErrorDetail is returned by FindOne when the backend yields no
// row/document. FindMany never raises this (spec.md §7): an empty list is
// a valid success there.
type NotFoundErrorDetail struct {
	Entity string
}

func (e *NotFoundErrorDetail) Error() string {
	return fmt.Sprintf("subgraph: %s not found", e.Entity)
}

func (e *NotFoundErrorDetail) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError returns a NotFoundErrorDetail for the given entity.
func NewNotFoundError(entity string) *NotFoundErrorDetail {
	return &NotFoundErrorDetail{Entity: entity}
}

// IsNotFound reports whether err is (or wraps) a NotFoundErrorDetail.
func IsNotFound(err error) bool {
	var e *NotFoundErrorDetail
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// FieldResolutionError is raised when decoding a required output field
// fails (e.g. a required HTTP response field is missing or JSON null).
type FieldResolutionError struct {
	Entity string
	Field  string
	Reason string
}

func (e *FieldResolutionError) Error() string {
	return fmt.Sprintf("subgraph: %s.%s: %s", e.Entity, e.Field, e.Reason)
}

func (e *FieldResolutionError) Is(target error) bool { return target == ErrFieldResolution }

// NewFieldResolutionError returns a FieldResolutionError.
func NewFieldResolutionError(entity, field, reason string) *FieldResolutionError {
	return &FieldResolutionError{Entity: entity, Field: field, Reason: reason}
}

// IsFieldResolution reports whether err is (or wraps) a FieldResolutionError.
func IsFieldResolution(err error) bool {
	var e *FieldResolutionError
	return errors.As(err, &e) || errors.Is(err, ErrFieldResolution)
}

// ConfigError wraps a configuration loading/validation failure. Per
// spec.md §9 Open Question #3, this repository surfaces config problems
// explicitly rather than logging and continuing as the Rust original does.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("subgraph: configuration error: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// NewConfigError wraps err as a ConfigError.
func NewConfigError(err error) *ConfigError {
	return &ConfigError{Err: err}
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e) || errors.Is(err, ErrConfig)
}
