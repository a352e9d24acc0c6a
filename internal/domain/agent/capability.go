// Package agent contains the domain model for the remote agent action
// pipeline: the capability catalog, the action lifecycle, idempotency key
// derivation and the audit trail.
package agent

import (
	"encoding/json"
	"fmt"

	"github.com/vansales/backend/internal/domain/shared"
	"github.com/xeipuuv/gojsonschema"
)

// Capability is a static definition of one operation an agent may request.
// Capabilities are defined once at process start; they are not persisted,
// versioned, or tenant-specific.
type Capability struct {
	// Name uniquely identifies the capability in the registry
	Name string
	// Description is surfaced in the capability catalog
	Description string
	// Parameters is a JSON-schema object describing the argument shape
	Parameters map[string]any
	// AllowedRoles is the set of roles permitted to invoke the capability
	AllowedRoles []shared.Role
}

// PermitsRole reports whether role is in the capability's allowed set.
func (c Capability) PermitsRole(role shared.Role) bool {
	for _, r := range c.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}

// CapabilityView is the externally documented catalog entry.
type CapabilityView struct {
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	ParameterSchema map[string]any `json:"parameterSchema"`
	AllowedRoles    []shared.Role  `json:"allowedRoles"`
	ReadOnly        bool           `json:"readOnly"`
}

// Registry errors. Callers must distinguish an unknown name (dropped,
// counted) from a role denial (rejected, surfaced).
var (
	ErrUnknownCapability = shared.NewDomainError("UNKNOWN_CAPABILITY", "Capability is not registered")
	ErrRoleDenied        = shared.NewDomainError("AUTHORIZATION_DENIED", "Role is not allowed to invoke this capability")
	ErrInvalidArguments  = shared.NewDomainError("INVALID_ARGUMENTS", "Arguments do not match the capability's parameter schema")
)

// Registry is the static catalog of capabilities. It is immutable after
// construction and is the only process-wide shared state in the pipeline.
type Registry struct {
	capabilities map[string]Capability
	schemas      map[string]*gojsonschema.Schema
	// readOnly is a curated allow-list of read-only capability names.
	// Classification is explicit, never inferred from naming, so a new
	// write capability cannot accidentally be treated as read-only.
	readOnly map[string]bool
}

// NewRegistry builds a registry from capability definitions and the curated
// read-only allow-list. Every name in readOnlyNames must be registered.
func NewRegistry(capabilities []Capability, readOnlyNames []string) (*Registry, error) {
	r := &Registry{
		capabilities: make(map[string]Capability, len(capabilities)),
		schemas:      make(map[string]*gojsonschema.Schema, len(capabilities)),
		readOnly:     make(map[string]bool, len(readOnlyNames)),
	}

	for _, c := range capabilities {
		if c.Name == "" {
			return nil, shared.NewDomainError("INVALID_CAPABILITY", "Capability name cannot be empty")
		}
		if _, exists := r.capabilities[c.Name]; exists {
			return nil, shared.NewDomainError("INVALID_CAPABILITY", fmt.Sprintf("Duplicate capability name: %s", c.Name))
		}
		if len(c.AllowedRoles) == 0 {
			return nil, shared.NewDomainError("INVALID_CAPABILITY", fmt.Sprintf("Capability %s has no allowed roles", c.Name))
		}
		if c.Parameters != nil {
			raw, err := json.Marshal(c.Parameters)
			if err != nil {
				return nil, fmt.Errorf("marshal parameter schema for %s: %w", c.Name, err)
			}
			schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
			if err != nil {
				return nil, fmt.Errorf("compile parameter schema for %s: %w", c.Name, err)
			}
			r.schemas[c.Name] = schema
		}
		r.capabilities[c.Name] = c
	}

	for _, name := range readOnlyNames {
		if _, exists := r.capabilities[name]; !exists {
			return nil, shared.NewDomainError("INVALID_CAPABILITY", fmt.Sprintf("Read-only allow-list references unknown capability: %s", name))
		}
		r.readOnly[name] = true
	}

	return r, nil
}

// Resolve looks up a capability by name.
func (r *Registry) Resolve(name string) (Capability, error) {
	c, ok := r.capabilities[name]
	if !ok {
		return Capability{}, ErrUnknownCapability
	}
	return c, nil
}

// Authorize resolves a capability and checks the invoking role against its
// allowed set. An invocation is permitted only when the role is present.
func (r *Registry) Authorize(name string, role shared.Role) (Capability, error) {
	c, err := r.Resolve(name)
	if err != nil {
		return Capability{}, err
	}
	if !c.PermitsRole(role) {
		return Capability{}, ErrRoleDenied
	}
	return c, nil
}

// IsReadOnly reports whether the named capability is on the curated
// read-only allow-list.
func (r *Registry) IsReadOnly(name string) bool {
	return r.readOnly[name]
}

// ValidateArguments checks args against the capability's parameter schema.
// Capabilities registered without a schema accept any argument object.
func (r *Registry) ValidateArguments(name string, args map[string]any) error {
	schema, ok := r.schemas[name]
	if !ok {
		return nil
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("validate arguments for %s: %w", name, err)
	}
	if !result.Valid() {
		return ErrInvalidArguments
	}
	return nil
}

// Catalog returns the externally documented capability list.
func (r *Registry) Catalog() []CapabilityView {
	views := make([]CapabilityView, 0, len(r.capabilities))
	for name, c := range r.capabilities {
		views = append(views, CapabilityView{
			Name:            name,
			Description:     c.Description,
			ParameterSchema: c.Parameters,
			AllowedRoles:    c.AllowedRoles,
			ReadOnly:        r.readOnly[name],
		})
	}
	return views
}

// Len returns the number of registered capabilities.
func (r *Registry) Len() int {
	return len(r.capabilities)
}
