package roles

import (
	"github.com/insightlab/insight-engine-go/internal/models"
	"github.com/insightlab/insight-engine-go/internal/utils"
)

// Resolver maps a role id to its requirement profile. Unregistered ids fail
// with UnknownRoleError; there is no silent default.
type Resolver struct {
	registry *Registry
}

// NewResolver creates a resolver backed by the given registry.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve returns the requirement profile for roleID.
func (r *Resolver) Resolve(roleID string) (models.RoleRequirementProfile, error) {
	profile, ok := r.registry.Get(roleID)
	if !ok {
		return models.RoleRequirementProfile{}, utils.NewUnknownRoleError(roleID)
	}
	return profile, nil
}
