package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used to classify failures across packages
var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrLeagueMismatch  = errors.New("league mismatch")
	ErrDeserialization = errors.New("deserialization error")
	ErrUpstream        = errors.New("upstream service error")
	ErrInternal        = errors.New("internal error")
)

// ValidationError reports a malformed or missing request field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a missing team, league or model artifact
type NotFoundError struct {
	Kind  string
	Name  string
	Tried []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s not found: %s", e.Kind, e.Name)
	if len(e.Tried) > 0 {
		msg += " (tried: " + strings.Join(e.Tried, ", ") + ")"
	}
	return msg
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// LeagueMismatchError reports a request scored against another league's model
type LeagueMismatchError struct {
	Requested int64
	Loaded    int64
}

func (e *LeagueMismatchError) Error() string {
	return fmt.Sprintf("league mismatch: requested league %d but loaded model belongs to league %d", e.Requested, e.Loaded)
}

func (e *LeagueMismatchError) Is(target error) bool { return target == ErrLeagueMismatch }

// DeserializationError reports a model bundle that could not be decoded.
// Incompatible is set when the bundle parsed but its format or schema version is unsupported.
type DeserializationError struct {
	Path         string
	Reason       string
	Incompatible bool
	Err          error
}

func (e *DeserializationError) Error() string {
	if e.Incompatible {
		return fmt.Sprintf("deserialization error: model bundle %s is incompatible: %s; retrain the league model with this version of the trainer", e.Path, e.Reason)
	}
	return fmt.Sprintf("deserialization error: model bundle %s is corrupted: %s; delete the cached file and re-upload the bundle", e.Path, e.Reason)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

func (e *DeserializationError) Is(target error) bool { return target == ErrDeserialization }

// UpstreamServiceError reports an unavailable third-party data source
type UpstreamServiceError struct {
	Source string
	Code   string
	Err    error
}

func (e *UpstreamServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream service error: %s: %s (%v)", e.Source, e.Code, e.Err)
	}
	return fmt.Sprintf("upstream service error: %s: %s", e.Source, e.Code)
}

func (e *UpstreamServiceError) Unwrap() error { return e.Err }

func (e *UpstreamServiceError) Is(target error) bool { return target == ErrUpstream }

// Kind maps an error onto its taxonomy name
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrLeagueMismatch):
		return "league_mismatch"
	case errors.Is(err, ErrDeserialization):
		return "deserialization"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	default:
		return "internal"
	}
}
