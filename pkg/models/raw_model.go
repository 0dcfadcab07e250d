package models

// Cardinality endpoint values as they appear in Power BI model descriptions.
const (
	RawCardinalityOne  = "one"
	RawCardinalityMany = "many"
)

// Cross-filter behavior values as they appear in Power BI model descriptions.
const (
	CrossFilterSingleDirection = "singleDirection"
	CrossFilterBothDirections  = "bothDirections"
)

// RawModel is the format-neutral intermediate representation produced by the
// model reader. It is built once per extraction and not mutated afterward,
// regardless of whether the source was a packaged archive or a TMDL project.
type RawModel struct {
	Name          string            `json:"name"`
	Tables        []RawTable        `json:"tables"`
	Relationships []RawRelationship `json:"relationships"`
}

// RawTable is a table definition as declared in the source model. A table's
// definition may be split across multiple project fragments; the reader
// merges fragments by table name before the RawModel is handed downstream.
type RawTable struct {
	Name     string       `json:"name"`
	Columns  []RawColumn  `json:"columns"`
	Measures []RawMeasure `json:"measures"`
}

// RawColumn is a column declaration with its source-format type string
// (e.g. "string", "int64", "dateTime"). Type mapping happens in extraction.
type RawColumn struct {
	Name       string `json:"name"`
	DataType   string `json:"dataType"`
	IsKey      bool   `json:"isKey,omitempty"`
	IsUnique   bool   `json:"isUnique,omitempty"`
	IsNullable bool   `json:"isNullable,omitempty"`
}

// RawMeasure is a named DAX expression attached to a table.
type RawMeasure struct {
	Name        string `json:"name"`
	Expression  string `json:"expression"`
	Description string `json:"description,omitempty"`
}

// RawRelationship is a relationship declaration between two table columns.
// The TMDL grammar does not always carry cardinality explicitly; when absent
// the reader defaults FromCardinality to "many", ToCardinality to "one" and
// CrossFilterBehavior to "singleDirection".
type RawRelationship struct {
	Name                string `json:"name"`
	FromTable           string `json:"fromTable"`
	FromColumn          string `json:"fromColumn"`
	ToTable             string `json:"toTable"`
	ToColumn            string `json:"toColumn"`
	FromCardinality     string `json:"fromCardinality"`
	ToCardinality       string `json:"toCardinality"`
	CrossFilterBehavior string `json:"crossFilteringBehavior"`
	IsActive            bool   `json:"isActive"`
}
