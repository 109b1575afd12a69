package roles

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/insightlab/insight-engine-go/internal/models"
)

// Registry stores role requirement profiles. It is injected into the
// resolver and scoped to the generation session; there is no process-wide
// registry. Registration is idempotent with last write wins, and stored
// profiles are copied on the way in and out so they stay immutable.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]models.RoleRequirementProfile
	logger   *logrus.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *logrus.Logger) *Registry {
	return &Registry{
		profiles: make(map[string]models.RoleRequirementProfile),
		logger:   logger,
	}
}

// NewRegistryWithDefaults creates a registry pre-loaded with the standard
// organizational roles.
func NewRegistryWithDefaults(logger *logrus.Logger) *Registry {
	r := NewRegistry(logger)
	for _, profile := range DefaultProfiles() {
		// Defaults are well-formed; Register cannot fail here.
		_ = r.Register(profile)
	}
	return r
}

// Register validates and stores a profile. Re-registering an existing role id
// replaces the stored profile.
func (r *Registry) Register(profile models.RoleRequirementProfile) error {
	if profile.RoleID == "" {
		return fmt.Errorf("role id must not be empty")
	}
	if profile.MaxInsights <= 0 {
		return fmt.Errorf("role %q: max insights must be positive, got %d", profile.RoleID, profile.MaxInsights)
	}
	if profile.MinConfidence.LessThan(decimal.Zero) || profile.MinConfidence.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("role %q: min confidence must be in [0,1], got %s", profile.RoleID, profile.MinConfidence)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_, replaced := r.profiles[profile.RoleID]
	r.profiles[profile.RoleID] = copyProfile(profile)

	r.logger.WithFields(logrus.Fields{
		"role":     profile.RoleID,
		"replaced": replaced,
	}).Info("Role profile registered")
	return nil
}

// Get returns the profile for a role id.
func (r *Registry) Get(roleID string) (models.RoleRequirementProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[roleID]
	if !ok {
		return models.RoleRequirementProfile{}, false
	}
	return copyProfile(profile), true
}

// Profiles returns all registered profiles ordered by role id.
func (r *Registry) Profiles() []models.RoleRequirementProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.RoleRequirementProfile, 0, len(r.profiles))
	for _, profile := range r.profiles {
		out = append(out, copyProfile(profile))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoleID < out[j].RoleID })
	return out
}

func copyProfile(p models.RoleRequirementProfile) models.RoleRequirementProfile {
	out := p
	out.FocusAreas = append([]string(nil), p.FocusAreas...)
	out.PreferredTypes = append([]models.InsightType(nil), p.PreferredTypes...)
	return out
}
