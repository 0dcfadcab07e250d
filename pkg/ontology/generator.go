// Package ontology classifies a semantic model's entities into semantic
// roles and synthesizes business rules from measure formulas, producing the
// portable ontology exported to downstream formats.
package ontology

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cloudbadal007/powerbi-ontology-extractor/pkg/models"
)

// Generator builds ontologies from semantic models. The formula-parsing
// collaborator is injected so it can be substituted with a test double.
type Generator struct {
	model  *models.SemanticModel
	parser FormulaParser
	logger *zap.Logger
}

// NewGenerator creates a generator for one semantic model. A nil parser
// falls back to NopParser (no rules are synthesized).
func NewGenerator(model *models.SemanticModel, parser FormulaParser, logger *zap.Logger) *Generator {
	if parser == nil {
		parser = NopParser{}
	}
	return &Generator{
		model:  model,
		parser: parser,
		logger: logger.Named("ontology-generator"),
	}
}

// Generate builds the complete ontology: classified entities, labeled
// relationships, and business rules synthesized from measures. Missing
// optional data (no measures, no relationships) yields empty collections,
// never an error; the only error path is the parser collaborator itself
// failing (e.g. context cancellation).
func (g *Generator) Generate(ctx context.Context) (*models.Ontology, error) {
	onto := &models.Ontology{
		ID:          uuid.New(),
		Name:        g.model.Name + "_Ontology",
		Version:     "1.0.0",
		Source:      "Power BI: " + g.model.SourceFile,
		GeneratedAt: time.Now().UTC(),
	}

	for i := range g.model.Entities {
		onto.Entities = append(onto.Entities, g.mapEntity(&g.model.Entities[i]))
	}
	for _, rel := range g.model.Relationships {
		onto.Relationships = append(onto.Relationships, mapRelationship(rel))
	}

	for _, measure := range g.model.Measures {
		result, err := g.parser.Parse(ctx, measure.Name, measure.DAXFormula)
		if err != nil {
			return nil, fmt.Errorf("parse measure %q: %w", measure.Name, err)
		}
		for _, rule := range result.Rules {
			onto.BusinessRules = append(onto.BusinessRules, mapRule(measure, rule))
		}
	}

	g.logger.Info("generated ontology",
		zap.String("ontology", onto.Name),
		zap.Int("entities", len(onto.Entities)),
		zap.Int("relationships", len(onto.Relationships)),
		zap.Int("business_rules", len(onto.BusinessRules)))
	return onto, nil
}

// mapEntity copies the semantic entity and assigns its classified role.
func (g *Generator) mapEntity(entity *models.Entity) models.OntologyEntity {
	mapped := models.OntologyEntity{
		Name:        entity.Name,
		Description: entity.Description,
		SourceTable: entity.SourceTable,
		EntityType:  classifyEntity(entity, g.statsFor(entity)),
	}
	for _, prop := range entity.Properties {
		mapped.Properties = append(mapped.Properties, models.OntologyProperty{
			Name:         prop.Name,
			DataType:     prop.DataType,
			Required:     prop.Required,
			Unique:       prop.Unique,
			Description:  prop.Description,
			SourceColumn: prop.SourceColumn,
		})
	}
	return mapped
}

func (g *Generator) statsFor(entity *models.Entity) entityStats {
	stats := entityStats{propertyCount: len(entity.Properties)}
	for _, rel := range g.model.Relationships {
		if rel.FromEntity == entity.Name || rel.ToEntity == entity.Name {
			stats.relationshipCount++
		}
	}
	for _, measure := range g.model.Measures {
		if measure.Table == entity.SourceTable {
			stats.measureCount++
		}
	}
	return stats
}

func mapRelationship(rel models.Relationship) models.OntologyRelationship {
	return models.OntologyRelationship{
		FromEntity:         rel.FromEntity,
		FromProperty:       rel.FromProperty,
		ToEntity:           rel.ToEntity,
		ToProperty:         rel.ToProperty,
		RelationshipType:   labelRelationship(rel),
		Cardinality:        rel.Cardinality,
		Description:        fmt.Sprintf("Relationship from %s to %s", rel.FromEntity, rel.ToEntity),
		SourceRelationship: rel.Name,
	}
}

// mapRule materializes one parsed rule descriptor, defaulting the entity to
// the measure's owning table when the parser does not supply one.
func mapRule(measure models.Measure, rule ParsedRule) models.BusinessRule {
	entity := rule.Entity
	if entity == "" {
		entity = measure.Table
	}
	description := rule.Description
	if description == "" {
		description = measure.Description
	}
	priority := rule.Priority
	if priority == 0 {
		priority = 1
	}
	return models.BusinessRule{
		Name:           rule.Name,
		Entity:         entity,
		Condition:      rule.Condition,
		Action:         rule.Action,
		Classification: rule.Classification,
		Description:    description,
		Priority:       priority,
		SourceMeasure:  measure.Name,
	}
}

// SuggestEnhancements flags properties that look like candidates for
// validation constraints: email/URL regex patterns and numeric ranges for
// age and score/rating fields. Suggestions are advisory only, surfaced for
// a human reviewer; the ontology itself is never mutated.
func (g *Generator) SuggestEnhancements() []models.Enhancement {
	var enhancements []models.Enhancement

	for _, entity := range g.model.Entities {
		for _, prop := range entity.Properties {
			name := strings.ToLower(prop.Name)

			if strings.Contains(name, "email") && prop.DataType == models.DataTypeString {
				enhancements = append(enhancements, models.Enhancement{
					Type:        "validation_constraint",
					Description: fmt.Sprintf("Add email format validation to %s.%s", entity.Name, prop.Name),
					Entity:      entity.Name,
					Property:    prop.Name,
					SuggestedValue: models.Constraint{
						Type:  models.ConstraintRegex,
						Value: `^[^\s@]+@[^\s@]+\.[^\s@]+$`,
					},
				})
			}
			if strings.Contains(name, "url") || strings.Contains(name, "website") {
				enhancements = append(enhancements, models.Enhancement{
					Type:        "validation_constraint",
					Description: fmt.Sprintf("Add URL format validation to %s.%s", entity.Name, prop.Name),
					Entity:      entity.Name,
					Property:    prop.Name,
					SuggestedValue: models.Constraint{
						Type:  models.ConstraintRegex,
						Value: `^https?://`,
					},
				})
			}
			if prop.DataType == models.DataTypeInteger || prop.DataType == models.DataTypeDecimal {
				switch {
				case strings.Contains(name, "age"):
					enhancements = append(enhancements, rangeEnhancement(entity.Name, prop.Name, "age", 0, 150))
				case strings.Contains(name, "score"), strings.Contains(name, "rating"):
					enhancements = append(enhancements, rangeEnhancement(entity.Name, prop.Name, "score", 0, 100))
				}
			}
		}
	}

	return enhancements
}

func rangeEnhancement(entity, property, kind string, min, max int) models.Enhancement {
	return models.Enhancement{
		Type:        "validation_constraint",
		Description: fmt.Sprintf("Add %s range constraint (%d-%d) to %s.%s", kind, min, max, entity, property),
		Entity:      entity,
		Property:    property,
		SuggestedValue: models.Constraint{
			Type:  models.ConstraintRange,
			Value: map[string]int{"min": min, "max": max},
		},
	}
}
