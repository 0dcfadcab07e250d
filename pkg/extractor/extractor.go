// Package extractor maps a RawModel into the stable, format-independent
// SemanticModel. The mapping is lossless and deterministic: the same
// RawModel always yields the same SemanticModel.
package extractor

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/cloudbadal007/powerbi-ontology-extractor/pkg/models"
)

// typeMap is the fixed lookup from source-format type strings to semantic
// data types. Lookups are case-insensitive. Unrecognized types fall back to
// String; downstream constraint generation relies on that fallback.
var typeMap = map[string]models.DataType{
	"string":   models.DataTypeString,
	"text":     models.DataTypeString,
	"int64":    models.DataTypeInteger,
	"integer":  models.DataTypeInteger,
	"int":      models.DataTypeInteger,
	"double":   models.DataTypeDecimal,
	"decimal":  models.DataTypeDecimal,
	"currency": models.DataTypeDecimal,
	"datetime": models.DataTypeDate,
	"date":     models.DataTypeDate,
	"boolean":  models.DataTypeBoolean,
	"bool":     models.DataTypeBoolean,
}

// MapDataType maps a source type string to a semantic data type. The
// mapping is pure and total: every input yields exactly one output, and an
// unrecognized string always yields String.
func MapDataType(sourceType string) models.DataType {
	if dt, ok := typeMap[strings.ToLower(strings.TrimSpace(sourceType))]; ok {
		return dt
	}
	return models.DataTypeString
}

// Extractor maps raw models into semantic models.
type Extractor struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger.Named("extractor")}
}

// Extract builds a SemanticModel from a raw model. sourceFile identifies
// the originating BI project and keys the model when callers compare
// several extractions.
func (x *Extractor) Extract(raw *models.RawModel, sourceFile string) *models.SemanticModel {
	model := &models.SemanticModel{
		Name:       raw.Name,
		SourceFile: sourceFile,
	}

	for _, table := range raw.Tables {
		model.Entities = append(model.Entities, x.extractEntity(table))
		for _, measure := range table.Measures {
			model.Measures = append(model.Measures, models.Measure{
				Name:        measure.Name,
				DAXFormula:  measure.Expression,
				Description: measure.Description,
				Table:       table.Name,
			})
		}
	}

	for _, rel := range raw.Relationships {
		model.Relationships = append(model.Relationships, models.Relationship{
			Name:                 rel.Name,
			FromEntity:           rel.FromTable,
			FromProperty:         rel.FromColumn,
			ToEntity:             rel.ToTable,
			ToProperty:           rel.ToColumn,
			Cardinality:          mapCardinality(rel.FromCardinality, rel.ToCardinality),
			CrossFilterDirection: rel.CrossFilterBehavior,
			IsActive:             rel.IsActive,
		})
	}

	x.logger.Info("extracted semantic model",
		zap.String("model", model.Name),
		zap.Int("entities", len(model.Entities)),
		zap.Int("relationships", len(model.Relationships)),
		zap.Int("measures", len(model.Measures)))
	return model
}

// extractEntity maps one table. The first column flagged key or unique, in
// declaration order, becomes the entity's primary key; a table without a
// flagged column simply has no primary key.
func (x *Extractor) extractEntity(table models.RawTable) models.Entity {
	entity := models.Entity{
		Name:        table.Name,
		Description: describeEntity(table.Name),
		SourceTable: table.Name,
	}

	seen := make(map[string]struct{}, len(table.Columns))
	for _, col := range table.Columns {
		if _, ok := seen[col.Name]; ok {
			continue
		}
		seen[col.Name] = struct{}{}

		prop := models.Property{
			Name:         col.Name,
			DataType:     MapDataType(col.DataType),
			Required:     !col.IsNullable,
			Unique:       col.IsUnique,
			SourceColumn: col.Name,
		}
		if entity.PrimaryKey == "" && (col.IsKey || col.IsUnique) {
			entity.PrimaryKey = col.Name
			prop.Required = true
			prop.Unique = true
		}
		entity.Properties = append(entity.Properties, prop)
	}

	return entity
}

// describeEntity derives a default description from the table name, e.g.
// "customers" -> "Represents a customer".
func describeEntity(tableName string) string {
	name := tableName
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	singular := inflection.Singular(strings.ToLower(name))
	if singular == "" {
		return ""
	}
	return fmt.Sprintf("Represents a %s", singular)
}

// mapCardinality combines the raw endpoint cardinalities into the semantic
// relationship cardinality. Metadata passes through unchanged; no inference
// happens at this stage.
func mapCardinality(from, to string) string {
	switch {
	case from == models.RawCardinalityOne && to == models.RawCardinalityOne:
		return models.CardinalityOneToOne
	case from == models.RawCardinalityOne && to == models.RawCardinalityMany:
		return models.CardinalityOneToMany
	case from == models.RawCardinalityMany && to == models.RawCardinalityMany:
		return models.CardinalityManyToMany
	default:
		return models.CardinalityManyToOne
	}
}
