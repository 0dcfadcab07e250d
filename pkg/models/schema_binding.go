package models

import "github.com/google/uuid"

// Physical source types inferred from table naming.
const (
	SourceTypeSQL      = "sql"
	SourceTypeAzureSQL = "azure_sql"
	SourceTypeFabric   = "fabric"
)

// Drift severities, lowest to highest.
const (
	SeverityInfo     = "INFO"
	SeverityWarning  = "WARNING"
	SeverityCritical = "CRITICAL"
)

// Fix types suggested for drift remediation.
const (
	FixUpdateMapping = "update_mapping"
	FixAddColumn     = "add_column"
	FixRemoveColumn  = "remove_column"
)

// SchemaBinding maps an ontology entity's logical properties to a physical
// storage location. Bindings are owned exclusively by the schema mapper:
// one binding per entity name, last write wins on re-creation.
type SchemaBinding struct {
	ID               uuid.UUID         `json:"id"`
	Entity           string            `json:"entity"`
	PhysicalSource   string            `json:"physical_source"`   // e.g. "dbo.customers"
	PropertyMappings map[string]string `json:"property_mappings"` // logical name -> physical column name
	SourceType       string            `json:"source_type"`       // "sql", "azure_sql", "fabric"
}

// ValidationResult reports the structural check of a schema binding.
// Mapped properties absent from the entity are warnings, not errors; the
// binding is still usable pending correction.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Message  string   `json:"message"`
}

// DriftReport describes a detected discrepancy between a schema binding's
// expectations and an observed physical schema. Reports are ephemeral:
// recomputed on every drift check, never persisted.
type DriftReport struct {
	Entity         string            `json:"entity"`
	MissingColumns []string          `json:"missing_columns,omitempty"`
	NewColumns     []string          `json:"new_columns,omitempty"`
	TypeChanges    map[string]string `json:"type_changes,omitempty"`    // column -> "old -> new"
	RenamedColumns map[string]string `json:"renamed_columns,omitempty"` // old name -> new name
	Severity       string            `json:"severity"`                  // "INFO", "WARNING", "CRITICAL"
	Message        string            `json:"message"`
}

// Fix is a suggested remediation for detected drift. Fixes are proposals
// only; the mapper never edits a binding on the caller's behalf.
type Fix struct {
	Type        string `json:"type"` // "update_mapping", "add_column", "remove_column"
	Description string `json:"description"`
	Action      string `json:"action"`
	Entity      string `json:"entity,omitempty"`
	Property    string `json:"property,omitempty"`
}
