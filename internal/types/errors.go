package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for XyronQ operations. The API layer maps these to
// response codes; everything else wraps them with %w.
var (
	// ErrNotFound indicates a referenced domain/scope/rule/definition id
	// does not exist. Reported distinctly from validation failures.
	ErrNotFound = errors.New("not found")

	// ErrScopeNameConflict indicates a scope name already exists within
	// the target domain. A conflict kind, not a generic validation error.
	ErrScopeNameConflict = errors.New("scope name already exists in this domain")

	// ErrInvalidName indicates a domain/strategy/policy name violating
	// the identifier pattern.
	ErrInvalidName = errors.New("name must match pattern ^[A-Za-z0-9._:-]+$")

	// ErrSchemaCompile indicates a candidate schema failed to compile.
	// The previously active validator stays in effect.
	ErrSchemaCompile = errors.New("schema compilation failed")
)

// ValueTypeError reports a rule parameter value inconsistent with its
// declared type at the point of write.
type ValueTypeError struct {
	Type  ParamType
	Value string
}

func (e *ValueTypeError) Error() string {
	return fmt.Sprintf("value %q is not a valid %s", e.Value, e.Type)
}
