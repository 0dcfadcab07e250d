package models

import "regexp"

// DataType is the closed set of property types in a semantic model.
type DataType string

const (
	DataTypeString  DataType = "String"
	DataTypeInteger DataType = "Integer"
	DataTypeDecimal DataType = "Decimal"
	DataTypeDate    DataType = "Date"
	DataTypeBoolean DataType = "Boolean"
)

// Relationship cardinality values.
const (
	CardinalityOneToOne   = "one-to-one"
	CardinalityOneToMany  = "one-to-many"
	CardinalityManyToOne  = "many-to-one"
	CardinalityManyToMany = "many-to-many"
)

// SemanticModel is the stable, format-independent representation of a BI
// project's logical data model. Independent extractions produce independent
// models; callers comparing several dashboards hold one model per source.
type SemanticModel struct {
	Name          string         `json:"name"`
	SourceFile    string         `json:"source_file"`
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
	Measures      []Measure      `json:"measures"`
}

// Entity is a typed logical entity extracted from a source table.
// Property names are unique within an entity; at most one property carries
// the primary key flag (first flagged column in declaration order wins).
type Entity struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Properties  []Property `json:"properties"`
	SourceTable string     `json:"source_table"`
	PrimaryKey  string     `json:"primary_key,omitempty"`
}

// Property returns the named property, or nil if the entity has no such
// property.
func (e *Entity) Property(name string) *Property {
	for i := range e.Properties {
		if e.Properties[i].Name == name {
			return &e.Properties[i]
		}
	}
	return nil
}

// Property is a typed entity attribute mapped from a source column.
type Property struct {
	Name         string   `json:"name"`
	DataType     DataType `json:"data_type"`
	Required     bool     `json:"required"`
	Unique       bool     `json:"unique"`
	Description  string   `json:"description,omitempty"`
	SourceColumn string   `json:"source_column"`
}

// Relationship connects two entity properties. Referential integrity is a
// soft invariant here: endpoints are expected to exist in the same
// extraction batch but are only validated later, by the schema mapper.
type Relationship struct {
	Name                 string `json:"name"`
	FromEntity           string `json:"from_entity"`
	FromProperty         string `json:"from_property"`
	ToEntity             string `json:"to_entity"`
	ToProperty           string `json:"to_property"`
	Cardinality          string `json:"cardinality"`
	CrossFilterDirection string `json:"cross_filter_direction"`
	IsActive             bool   `json:"is_active"`
}

// Measure is a named DAX formula attached to a table.
type Measure struct {
	Name        string `json:"name"`
	DAXFormula  string `json:"dax_formula"`
	Description string `json:"description,omitempty"`
	Table       string `json:"table"`
}

// fieldRefPattern matches Table[Column] style field references, with the
// table identifier optionally single-quoted ('Order Details'[Qty]).
var fieldRefPattern = regexp.MustCompile(`'([^']+)'\[([^\[\]]+)\]|([A-Za-z_][A-Za-z0-9_]*)\[([^\[\]]+)\]`)

// Dependencies scans the formula text for Table[Column] field references and
// returns a deduplicated, order-preserving list of "Table.Column" tokens.
// This is a lexical scan, not a grammar parse: nested parentheses and string
// literals in the formula are tolerated, and the scan is recomputed on every
// call. A formula with no references yields an empty list.
func (m *Measure) Dependencies() []string {
	matches := fieldRefPattern.FindAllStringSubmatch(m.DAXFormula, -1)
	deps := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))

	for _, match := range matches {
		table, column := match[1], match[2]
		if table == "" {
			table, column = match[3], match[4]
		}
		token := table + "." + column
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		deps = append(deps, token)
	}
	return deps
}
