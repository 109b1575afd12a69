package models

import "github.com/shopspring/decimal"

// Granularity is the organizational level a role consumes insights at.
type Granularity string

const (
	GranularityEnterprise Granularity = "enterprise"
	GranularityRegional   Granularity = "regional"
	GranularityTeam       Granularity = "team"
)

// RoleRequirementProfile is the filtering and ranking policy of one role.
// Pre-defined and custom roles share this one uniform record; profiles are
// read-only once registered.
type RoleRequirementProfile struct {
	RoleID         string          `json:"role_id"`
	RoleName       string          `json:"role_name"`
	FocusAreas     []string        `json:"focus_areas"`
	PreferredTypes []InsightType   `json:"preferred_types"`
	MinConfidence  decimal.Decimal `json:"min_confidence"`
	MaxInsights    int             `json:"max_insights"`
	Granularity    Granularity     `json:"granularity"`
}
