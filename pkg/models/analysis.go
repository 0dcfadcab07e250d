package models

// Conflict severities used by cross-model analysis.
const (
	ConflictSeverityLow      = "LOW"
	ConflictSeverityMedium   = "MEDIUM"
	ConflictSeverityHigh     = "HIGH"
	ConflictSeverityCritical = "CRITICAL"
)

// Conflict is a semantic conflict between two dashboards: the same concept
// defined differently in each.
type Conflict struct {
	Concept     string `json:"concept"`
	Dashboard1  string `json:"dashboard1"`
	Definition1 string `json:"definition1"`
	Dashboard2  string `json:"dashboard2"`
	Definition2 string `json:"definition2"`
	Severity    string `json:"severity"`
	Description string `json:"description,omitempty"`
}

// Duplication is the same measure logic appearing in more than one
// dashboard, under the same or different names.
type Duplication struct {
	MeasureName string   `json:"measure_name"`
	Dashboards  []string `json:"dashboards"`
	DAXFormula  string   `json:"dax_formula"`
	Description string   `json:"description,omitempty"`
}

// SemanticDebtReport scores the reconciliation cost of conflicts and
// duplications across a set of dashboards.
type SemanticDebtReport struct {
	TotalConflicts      int            `json:"total_conflicts"`
	TotalDuplications   int            `json:"total_duplications"`
	CostPerConflict     float64        `json:"cost_per_conflict"`
	TotalCost           float64        `json:"total_cost"`
	ConflictsBySeverity map[string]int `json:"conflicts_by_severity"`
	Message             string         `json:"message"`
}

// CanonicalEntity is a suggested canonical definition for a concept defined
// differently across dashboards, with the most common definition winning.
type CanonicalEntity struct {
	Name                   string            `json:"name"`
	SuggestedDefinition    string            `json:"suggested_definition"`
	DashboardsUsing        []string          `json:"dashboards_using"`
	AlternativeDefinitions map[string]string `json:"alternative_definitions,omitempty"` // source -> formula
	Confidence             float64           `json:"confidence"`
}
