package models

import "time"

// ContractPermissions defines what an AI agent may read, write and execute
// under a semantic contract.
type ContractPermissions struct {
	ReadEntities      []string            `json:"read_entities"`
	WriteProperties   map[string][]string `json:"write_properties,omitempty"` // entity -> properties
	ExecutableActions []string            `json:"executable_actions,omitempty"`
	RequiredRole      string              `json:"required_role,omitempty"`
	ContextFilters    map[string]string   `json:"context_filters,omitempty"` // entity -> filter condition
}

// AuditConfig controls what contract activity is logged.
type AuditConfig struct {
	LogReads         bool `json:"log_reads"`
	LogWrites        bool `json:"log_writes"`
	LogActions       bool `json:"log_actions"`
	AlertOnViolation bool `json:"alert_on_violation"`
}

// DefaultAuditConfig returns the audit settings applied to new contracts:
// everything logged, violations alerted.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		LogReads:         true,
		LogWrites:        true,
		LogActions:       true,
		AlertOnViolation: true,
	}
}

// SemanticContract binds an AI agent to an ontology version: the entities it
// may touch, the business rules that govern it, and the validation
// constraints it must honor.
type SemanticContract struct {
	AgentName             string              `json:"agent_name"`
	OntologyVersion       string              `json:"ontology_version"`
	OntologySource        string              `json:"ontology_source,omitempty"`
	Permissions           ContractPermissions `json:"permissions"`
	BusinessRules         []BusinessRule      `json:"business_rules,omitempty"`
	ValidationConstraints []Constraint        `json:"validation_constraints,omitempty"`
	AuditSettings         AuditConfig         `json:"audit_settings"`
	CreatedAt             time.Time           `json:"created_at"`
}
