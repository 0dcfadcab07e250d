package ontology

import (
	"strings"

	"github.com/cloudbadal007/powerbi-ontology-extractor/pkg/models"
)

// entityStats are the structural facts classification predicates see for
// one entity.
type entityStats struct {
	propertyCount     int
	relationshipCount int // relationships touching the entity, either end
	measureCount      int // measures attached to the entity's source table
}

// classificationRule pairs a predicate with the entity type it assigns.
// Rules are evaluated top-down, first match wins, so the tie-break policy
// between dimension and fact is visible here rather than buried in
// conditionals.
type classificationRule struct {
	entityType string
	matches    func(e *models.Entity, stats entityStats) bool
}

var dateNameKeywords = []string{"date", "calendar", "time"}
var calendarUnitKeywords = []string{"year", "month", "day", "quarter", "week"}

var classificationRules = []classificationRule{
	{
		entityType: models.EntityTypeDate,
		matches: func(e *models.Entity, _ entityStats) bool {
			if !containsAny(strings.ToLower(e.Name), dateNameKeywords) {
				return false
			}
			for _, prop := range e.Properties {
				if containsAny(strings.ToLower(prop.Name), calendarUnitKeywords) {
					return true
				}
			}
			return false
		},
	},
	{
		entityType: models.EntityTypeDimension,
		matches: func(_ *models.Entity, stats entityStats) bool {
			return stats.relationshipCount >= 3 && stats.propertyCount < 20
		},
	},
	{
		entityType: models.EntityTypeFact,
		matches: func(_ *models.Entity, stats entityStats) bool {
			return stats.measureCount >= 1 && stats.relationshipCount <= 3
		},
	},
}

// classifyEntity runs the ordered rule list; entities matching no rule are
// standard.
func classifyEntity(e *models.Entity, stats entityStats) string {
	for _, rule := range classificationRules {
		if rule.matches(e, stats) {
			return rule.entityType
		}
	}
	return models.EntityTypeStandard
}

// relationshipLabelRule assigns a semantic label when the from/to entity
// names contain the given keywords. Evaluated top-down, first match wins.
type relationshipLabelRule struct {
	fromKeyword string
	toKeyword   string
	label       string
}

var relationshipLabelRules = []relationshipLabelRule{
	{"customer", "order", models.RelationshipHas},
	{"order", "customer", models.RelationshipBelongsTo},
	{"product", "order", models.RelationshipContainedIn},
	{"shipment", "customer", models.RelationshipBelongsTo},
}

// labelRelationship picks the semantic label for a relationship: keyword
// match on the entity name pair first, cardinality-based default otherwise.
func labelRelationship(rel models.Relationship) string {
	from := strings.ToLower(rel.FromEntity)
	to := strings.ToLower(rel.ToEntity)
	for _, rule := range relationshipLabelRules {
		if strings.Contains(from, rule.fromKeyword) && strings.Contains(to, rule.toKeyword) {
			return rule.label
		}
	}

	switch rel.Cardinality {
	case models.CardinalityOneToMany:
		return models.RelationshipHas
	case models.CardinalityManyToOne:
		return models.RelationshipBelongsTo
	default:
		return models.RelationshipRelatedTo
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
