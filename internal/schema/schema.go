// Package schema owns the manifest validation schema: an embedded factory
// default, an optional user-supplied override persisted in the database,
// and the compiled validator built from whichever is active. Schema
// identity is a single source of truth shared by export, import and
// standalone document validation, so the active schema lives behind one
// Service instance guarded by a read/write mutex.
package schema

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/logisq/xyronq/internal/store"
	"github.com/logisq/xyronq/internal/types"
)

//go:embed factory_schema.json
var factorySchema []byte

// Issue is one validation finding against the active schema.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Result is the outcome of validating one document.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"validationErrors"`
}

// Service holds the active schema and its compiled validator. Replace and
// Reset swap both atomically; a schema that fails to compile never becomes
// active (compile-before-commit).
type Service struct {
	store *store.Store

	mu       sync.RWMutex
	raw      json.RawMessage
	compiled *jsonschema.Schema
	factory  bool
}

// NewService loads the persisted override if one exists, the factory
// default otherwise, and compiles it. A persisted override that no longer
// compiles is an initialization error, not a silent fallback.
func NewService(ctx context.Context, st *store.Store) (*Service, error) {
	s := &Service{store: st}

	raw, err := st.SchemaOverride(ctx)
	switch {
	case err == nil:
		compiled, cerr := compile(raw)
		if cerr != nil {
			return nil, fmt.Errorf("persisted schema override does not compile: %w", cerr)
		}
		s.raw = raw
		s.compiled = compiled
		s.factory = false
	case errors.Is(err, types.ErrNotFound):
		compiled, cerr := compile(factorySchema)
		if cerr != nil {
			return nil, fmt.Errorf("factory schema does not compile: %w", cerr)
		}
		s.raw = factorySchema
		s.compiled = compiled
		s.factory = true
	default:
		return nil, err
	}
	return s, nil
}

// Current returns the active schema document.
func (s *Service) Current() json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw
}

// IsUsingFactorySchema reports whether the factory default is active,
// i.e. no override is persisted.
func (s *Service) IsUsingFactorySchema() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.factory
}

// FactorySchema returns the embedded factory default regardless of what
// is currently active.
func (s *Service) FactorySchema() json.RawMessage {
	return factorySchema
}

// Replace compiles raw and, only on success, persists it as the override
// and swaps it in. On compile failure the previous schema stays active
// and the error wraps ErrSchemaCompile.
func (s *Service) Replace(ctx context.Context, raw json.RawMessage) error {
	compiled, err := compile(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrSchemaCompile, err)
	}
	if err := s.store.SetSchemaOverride(ctx, raw); err != nil {
		return err
	}

	s.mu.Lock()
	s.raw = raw
	s.compiled = compiled
	s.factory = false
	s.mu.Unlock()
	return nil
}

// Reset discards any persisted override and reactivates the factory
// default. Idempotent: resetting while already at factory is a no-op
// that still returns the factory schema.
func (s *Service) Reset(ctx context.Context) (json.RawMessage, error) {
	if err := s.store.ClearSchemaOverride(ctx); err != nil {
		return nil, err
	}
	compiled, err := compile(factorySchema)
	if err != nil {
		return nil, fmt.Errorf("factory schema does not compile: %w", err)
	}

	s.mu.Lock()
	s.raw = factorySchema
	s.compiled = compiled
	s.factory = true
	s.mu.Unlock()
	return factorySchema, nil
}

// Validate checks a document against the active schema. The document may
// be any JSON-marshalable value; it is round-tripped through JSON so that
// struct-typed manifests and raw decoded maps validate identically.
// Never returns an error for an invalid document, only for documents
// that cannot be represented as JSON at all.
func (s *Service) Validate(doc any) (Result, error) {
	value, err := toJSONValue(doc)
	if err != nil {
		return Result{}, fmt.Errorf("document is not valid JSON: %w", err)
	}

	s.mu.RLock()
	compiled := s.compiled
	s.mu.RUnlock()

	if err := compiled.Validate(value); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return Result{Valid: false, Issues: flatten(verr)}, nil
		}
		return Result{}, err
	}
	return Result{Valid: true, Issues: []Issue{}}, nil
}

func compile(raw []byte) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource("manifest.json", bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return c.Compile("manifest.json")
}

func toJSONValue(doc any) (any, error) {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var value any
	if err := json.Unmarshal(encoded, &value); err != nil {
		return nil, err
	}
	return value, nil
}

// flatten walks the validation error tree and keeps only leaf causes,
// which carry the precise instance locations. A root-level failure with
// no location reports "/".
func flatten(verr *jsonschema.ValidationError) []Issue {
	if len(verr.Causes) == 0 {
		path := verr.InstanceLocation
		if path == "" {
			path = "/"
		}
		return []Issue{{Path: path, Message: verr.Message}}
	}
	var issues []Issue
	for _, cause := range verr.Causes {
		issues = append(issues, flatten(cause)...)
	}
	return issues
}
