package models

import "fmt"

// ScopeKind selects how much of the subscription a run traverses
type ScopeKind int

const (
	// ScopeAllResourceGroups visits every resource group in discovery order
	ScopeAllResourceGroups ScopeKind = iota
	// ScopeResourceGroup visits a single resource group chosen up front
	ScopeResourceGroup
)

// Scope is the traversal scope of one reconciliation run
type Scope struct {
	Kind          ScopeKind `json:"kind"`
	ResourceGroup string    `json:"resource_group,omitempty"`
}

// AllResourceGroups returns the whole-subscription scope.
func AllResourceGroups() Scope {
	return Scope{Kind: ScopeAllResourceGroups}
}

// NamedResourceGroup returns a scope restricted to one resource group.
func NamedResourceGroup(name string) Scope {
	return Scope{Kind: ScopeResourceGroup, ResourceGroup: name}
}

// Validate checks that a named scope carries a group name.
func (s Scope) Validate() error {
	switch s.Kind {
	case ScopeAllResourceGroups:
		return nil
	case ScopeResourceGroup:
		if s.ResourceGroup == "" {
			return &InputValidationError{
				InputType: "resource group",
				Value:     s.ResourceGroup,
				Expected:  "a non-empty resource group name",
				Cause:     fmt.Errorf("resource group scope requires a name"),
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown scope kind %d", s.Kind)
	}
}

func (s Scope) String() string {
	if s.Kind == ScopeResourceGroup {
		return "resource group " + s.ResourceGroup
	}
	return "all resource groups"
}
