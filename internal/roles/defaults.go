package roles

import (
	"github.com/shopspring/decimal"

	"github.com/insightlab/insight-engine-go/internal/models"
)

// DefaultProfiles returns the standard organizational roles. Pre-defined and
// custom roles share the same uniform profile record.
func DefaultProfiles() []models.RoleRequirementProfile {
	return []models.RoleRequirementProfile{
		{
			RoleID:   "cfo",
			RoleName: "Chief Financial Officer",
			FocusAreas: []string{
				"revenue", "profit", "margin", "cash", "cost", "ebitda", "expense",
			},
			PreferredTypes: []models.InsightType{
				models.InsightTrend, models.InsightComparison, models.InsightCorrelation,
			},
			MinConfidence: decimal.NewFromFloat(0.75),
			MaxInsights:   5,
			Granularity:   models.GranularityEnterprise,
		},
		{
			RoleID:   "regional_sales_manager",
			RoleName: "Regional Sales Manager",
			FocusAreas: []string{
				"sales", "revenue", "deal", "conversion", "retention", "pipeline",
			},
			PreferredTypes: []models.InsightType{
				models.InsightComparison, models.InsightTrend, models.InsightAnomaly,
			},
			MinConfidence: decimal.NewFromFloat(0.6),
			MaxInsights:   8,
			Granularity:   models.GranularityRegional,
		},
		{
			RoleID:   "financial_analyst",
			RoleName: "Financial Analyst",
			FocusAreas: []string{
				"budget", "variance", "expense", "cost", "capital", "inventory",
			},
			PreferredTypes: []models.InsightType{
				models.InsightAnomaly, models.InsightTrend,
				models.InsightCorrelation, models.InsightComparison,
			},
			MinConfidence: decimal.NewFromFloat(0.55),
			MaxInsights:   10,
			Granularity:   models.GranularityTeam,
		},
		{
			RoleID:   "marketing_director",
			RoleName: "Marketing Director",
			FocusAreas: []string{
				"roi", "lead", "campaign", "acquisition", "traffic", "conversion",
			},
			PreferredTypes: []models.InsightType{
				models.InsightTrend, models.InsightComparison, models.InsightCorrelation,
			},
			MinConfidence: decimal.NewFromFloat(0.65),
			MaxInsights:   6,
			Granularity:   models.GranularityRegional,
		},
		{
			RoleID:   "operations_manager",
			RoleName: "Operations Manager",
			FocusAreas: []string{
				"efficiency", "delivery", "defect", "utilization", "cycle", "throughput",
			},
			PreferredTypes: []models.InsightType{
				models.InsightAnomaly, models.InsightComparison, models.InsightTrend,
			},
			MinConfidence: decimal.NewFromFloat(0.6),
			MaxInsights:   8,
			Granularity:   models.GranularityTeam,
		},
	}
}
