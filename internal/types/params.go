package types

import (
	"strconv"
	"strings"
)

// ParamType is the closed parameter type enum shared by rule parameters
// and strategy/policy inline parameters.
type ParamType string

const (
	ParamTypeBool    ParamType = "bool"
	ParamTypeInt     ParamType = "int"
	ParamTypeDecimal ParamType = "decimal"
	ParamTypeString  ParamType = "string"
	ParamTypeEnum    ParamType = "enum"
)

// Valid reports whether t is one of the five declared parameter types.
func (t ParamType) Valid() bool {
	switch t {
	case ParamTypeBool, ParamTypeInt, ParamTypeDecimal, ParamTypeString, ParamTypeEnum:
		return true
	}
	return false
}

// CheckValue verifies that a persisted text value is consistent with the
// declared type. Applies to rule parameters only: strategy/policy inline
// parameters accept arbitrary values under a declared type, and that
// asymmetry is preserved for compatibility with existing manifests.
// Empty values are always accepted (absence is not inconsistency).
func (t ParamType) CheckValue(value string) error {
	if value == "" {
		return nil
	}
	switch t {
	case ParamTypeInt:
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return &ValueTypeError{Type: t, Value: value}
		}
	case ParamTypeDecimal:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return &ValueTypeError{Type: t, Value: value}
		}
	case ParamTypeBool:
		switch strings.ToLower(value) {
		case "true", "false":
		default:
			return &ValueTypeError{Type: t, Value: value}
		}
	}
	// string and enum accept any text
	return nil
}

// ParamValue is one entry of a dynamic parameter map: a declared type
// plus an arbitrary JSON value. The ID field mirrors the map key the
// entry lives under; the manifest builder force-sets it on export.
type ParamValue struct {
	ID          string    `json:"id,omitempty"`
	Type        ParamType `json:"type"`
	Description string    `json:"description,omitempty"`
	Value       any       `json:"value,omitempty"`
}

// ParameterMap is the open string-keyed parameter collection carried by
// strategy and policy definitions. The set of keys is itself domain
// configuration, not compile-time known; the contract generator turns
// this dynamic shape into static per-entity record types downstream.
type ParameterMap map[string]ParamValue

// WithIDs returns a copy of the map where every entry's ID equals its own
// key, even if the persisted data disagrees. Self-consistency guarantee
// for exported manifests.
func (m ParameterMap) WithIDs() ParameterMap {
	if len(m) == 0 {
		return nil
	}
	out := make(ParameterMap, len(m))
	for key, val := range m {
		val.ID = key
		out[key] = val
	}
	return out
}
