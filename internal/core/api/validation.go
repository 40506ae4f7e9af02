package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/logisq/xyronq/internal/types"
)

const nameRequirement = "Name must match pattern ^[A-Za-z0-9._:-]+$"

// decodeBody reads and decodes a JSON request body into dst. Unknown
// fields are tolerated, matching the permissive behavior of the
// frontend clients.
func decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if len(body) == 0 {
		return fmt.Errorf("request body is empty")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

type createDomainRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

func (req *createDomainRequest) validate() []validationDetail {
	var details []validationDetail
	if req.Name == "" {
		details = append(details, validationDetail{Path: "name", Message: "Name is required"})
	} else if !types.NamePattern.MatchString(req.Name) {
		details = append(details, validationDetail{Path: "name", Message: nameRequirement})
	}
	return details
}

type updateDomainRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Version     *string `json:"version"`
}

func (req *updateDomainRequest) validate() []validationDetail {
	var details []validationDetail
	if req.Name != nil && !types.NamePattern.MatchString(*req.Name) {
		details = append(details, validationDetail{Path: "name", Message: nameRequirement})
	}
	return details
}

type createScopeRequest struct {
	DomainID    string `json:"domainId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (req *createScopeRequest) validate() []validationDetail {
	var details []validationDetail
	if req.Name == "" {
		details = append(details, validationDetail{Path: "name", Message: "Scope name is required"})
	}
	if !types.ValidID(req.DomainID) {
		details = append(details, validationDetail{Path: "domainId", Message: "domainId must be a valid UUID"})
	}
	return details
}

type updateScopeRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (req *updateScopeRequest) validate() []validationDetail {
	var details []validationDetail
	if req.Name != nil && *req.Name == "" {
		details = append(details, validationDetail{Path: "name", Message: "Scope name cannot be empty"})
	}
	return details
}

type createRuleRequest struct {
	ScopeID       string              `json:"scopeId"`
	ContextFilter types.ContextFilter `json:"contextFilter"`
}

func (req *createRuleRequest) validate() []validationDetail {
	var details []validationDetail
	if !types.ValidID(req.ScopeID) {
		details = append(details, validationDetail{Path: "scopeId", Message: "scopeId must be a valid UUID"})
	}
	details = append(details, validateContextFilter(req.ContextFilter)...)
	return details
}

type updateRuleRequest struct {
	ContextFilter types.ContextFilter `json:"contextFilter"`
}

func (req *updateRuleRequest) validate() []validationDetail {
	return validateContextFilter(req.ContextFilter)
}

// Filter values are scalar matching values. After JSON decoding that
// means string, float64 or bool; anything else is a nested structure
// and gets rejected before it can reach the filter column.
func validateContextFilter(filter types.ContextFilter) []validationDetail {
	var details []validationDetail
	for key, value := range filter {
		switch value.(type) {
		case string, float64, bool:
		default:
			details = append(details, validationDetail{
				Path:    "contextFilter." + key,
				Message: "Filter values must be strings, numbers or booleans",
			})
		}
	}
	return details
}

// definitionRequest covers both strategy upserts and policy
// creates/updates. Name carries the same pattern restriction as
// domains; parameter entries need at least an id and a known type.
type definitionRequest struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  types.ParameterMap `json:"parameters"`
}

func (req *definitionRequest) validate() []validationDetail {
	var details []validationDetail
	if req.Name == "" {
		details = append(details, validationDetail{Path: "name", Message: "Name is required"})
	} else if !types.NamePattern.MatchString(req.Name) {
		details = append(details, validationDetail{Path: "name", Message: nameRequirement})
	}
	details = append(details, validateParameterMap(req.Parameters)...)
	return details
}

type updateDefinitionRequest struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Parameters  types.ParameterMap `json:"parameters"`
}

func (req *updateDefinitionRequest) validate() []validationDetail {
	var details []validationDetail
	if req.Name != nil && !types.NamePattern.MatchString(*req.Name) {
		details = append(details, validationDetail{Path: "name", Message: nameRequirement})
	}
	details = append(details, validateParameterMap(req.Parameters)...)
	return details
}

func validateParameterMap(params types.ParameterMap) []validationDetail {
	var details []validationDetail
	for key, param := range params {
		if param.ID == "" {
			details = append(details, validationDetail{
				Path:    "parameters." + key + ".id",
				Message: "Parameter id is required",
			})
		}
		if !param.Type.Valid() {
			details = append(details, validationDetail{
				Path:    "parameters." + key + ".type",
				Message: fmt.Sprintf("Unknown parameter type %q", param.Type),
			})
		}
	}
	return details
}

type createParameterRequest struct {
	ParamID     string          `json:"paramId"`
	Type        types.ParamType `json:"type"`
	Description string          `json:"description"`
	Value       *string         `json:"value"`
}

func (req *createParameterRequest) validate() []validationDetail {
	var details []validationDetail
	if req.ParamID == "" {
		details = append(details, validationDetail{Path: "paramId", Message: "paramId is required"})
	}
	if !req.Type.Valid() {
		details = append(details, validationDetail{Path: "type", Message: fmt.Sprintf("Unknown parameter type %q", req.Type)})
	}
	return details
}

type updateParameterRequest struct {
	Type        *types.ParamType `json:"type"`
	Description *string          `json:"description"`
	Value       *string          `json:"value"`
}

func (req *updateParameterRequest) validate() []validationDetail {
	var details []validationDetail
	if req.Type != nil && !req.Type.Valid() {
		details = append(details, validationDetail{Path: "type", Message: fmt.Sprintf("Unknown parameter type %q", *req.Type)})
	}
	return details
}
