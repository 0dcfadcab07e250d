package models

import (
	"time"

	"github.com/google/uuid"
)

// Entity type classifications assigned during ontology generation.
const (
	EntityTypeStandard  = "standard"
	EntityTypeDimension = "dimension"
	EntityTypeFact      = "fact"
	EntityTypeBridge    = "bridge"
	EntityTypeDate      = "date"
)

// Semantic relationship labels.
const (
	RelationshipHas         = "has"
	RelationshipBelongsTo   = "belongs_to"
	RelationshipContainedIn = "contained_in"
	RelationshipRelatedTo   = "related_to"
)

// Constraint types attached to ontology properties or entities.
const (
	ConstraintRange     = "range"
	ConstraintRegex     = "regex"
	ConstraintEnum      = "enum"
	ConstraintReference = "reference"
)

// Ontology is the semantic model after classification and business-rule
// synthesis; it is the unit exported to downstream formats. Business rules
// are append-only after generation.
type Ontology struct {
	ID            uuid.UUID              `json:"id"`
	Name          string                 `json:"name"`
	Version       string                 `json:"version"`
	Source        string                 `json:"source"`
	Entities      []OntologyEntity       `json:"entities"`
	Relationships []OntologyRelationship `json:"relationships"`
	BusinessRules []BusinessRule         `json:"business_rules"`
	GeneratedAt   time.Time              `json:"generated_at"`
}

// AddBusinessRule appends a manually authored rule to the ontology.
func (o *Ontology) AddBusinessRule(rule BusinessRule) {
	o.BusinessRules = append(o.BusinessRules, rule)
}

// Entity returns the named entity, or nil if the ontology has no such entity.
func (o *Ontology) Entity(name string) *OntologyEntity {
	for i := range o.Entities {
		if o.Entities[i].Name == name {
			return &o.Entities[i]
		}
	}
	return nil
}

// OntologyEntity is a semantic entity plus its classified role and any
// constraints attached during or after generation.
type OntologyEntity struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Properties  []OntologyProperty `json:"properties"`
	Constraints []Constraint       `json:"constraints,omitempty"`
	SourceTable string             `json:"source_table"`
	EntityType  string             `json:"entity_type"` // "standard", "dimension", "fact", "bridge", "date"
}

// Property returns the named property, or nil if absent.
func (e *OntologyEntity) Property(name string) *OntologyProperty {
	for i := range e.Properties {
		if e.Properties[i].Name == name {
			return &e.Properties[i]
		}
	}
	return nil
}

// OntologyProperty is a typed entity attribute carrying validation
// constraints.
type OntologyProperty struct {
	Name         string       `json:"name"`
	DataType     DataType     `json:"data_type"`
	Required     bool         `json:"required"`
	Unique       bool         `json:"unique"`
	Constraints  []Constraint `json:"constraints,omitempty"`
	Description  string       `json:"description,omitempty"`
	SourceColumn string       `json:"source_column"`
}

// OntologyRelationship is a relationship with its inferred semantic label.
type OntologyRelationship struct {
	FromEntity         string `json:"from_entity"`
	FromProperty       string `json:"from_property"`
	ToEntity           string `json:"to_entity"`
	ToProperty         string `json:"to_property"`
	RelationshipType   string `json:"relationship_type"` // "has", "belongs_to", "contained_in", "related_to"
	Cardinality        string `json:"cardinality"`
	Description        string `json:"description,omitempty"`
	SourceRelationship string `json:"source_relationship,omitempty"`
}

// Constraint restricts the values a property (or entity) may take.
type Constraint struct {
	Type    string `json:"type"` // "range", "regex", "enum", "reference"
	Value   any    `json:"value"`
	Message string `json:"message,omitempty"`
}

// BusinessRule is a rule synthesized from a measure's formula via the
// formula-parsing collaborator, or authored manually after generation.
type BusinessRule struct {
	Name           string `json:"name"`
	Entity         string `json:"entity"`
	Condition      string `json:"condition"`
	Action         string `json:"action,omitempty"`
	Classification string `json:"classification,omitempty"`
	Description    string `json:"description,omitempty"`
	Priority       int    `json:"priority"`
	SourceMeasure  string `json:"source_measure,omitempty"`
}

// Enhancement is an advisory suggestion surfaced for human review. The
// ontology itself is never mutated by suggestion generation.
type Enhancement struct {
	Type           string `json:"type"` // "validation_constraint", "missing_rule", "semantic_relationship"
	Description    string `json:"description"`
	Entity         string `json:"entity,omitempty"`
	Property       string `json:"property,omitempty"`
	SuggestedValue any    `json:"suggested_value,omitempty"`
}
