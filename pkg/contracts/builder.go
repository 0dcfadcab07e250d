// Package contracts builds semantic contracts for AI agents from a
// completed ontology: the entities an agent may read or write, the business
// rules that govern it, and the validation constraints it must honor.
package contracts

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/cloudbadal007/powerbi-ontology-extractor/pkg/models"
)

// Builder derives semantic contracts from one ontology.
type Builder struct {
	ontology *models.Ontology
	logger   *zap.Logger
}

func NewBuilder(ontology *models.Ontology, logger *zap.Logger) *Builder {
	return &Builder{
		ontology: ontology,
		logger:   logger.Named("contract-builder"),
	}
}

// BuildContract assembles a contract for one agent: the supplied
// permissions plus the business rules and validation constraints relevant
// to the entities those permissions touch. Default audit settings log
// everything and alert on violations.
func (b *Builder) BuildContract(agentName string, permissions models.ContractPermissions) *models.SemanticContract {
	contract := &models.SemanticContract{
		AgentName:       agentName,
		OntologyVersion: b.ontology.Version,
		OntologySource:  b.ontology.Source,
		Permissions:     permissions,
		AuditSettings:   models.DefaultAuditConfig(),
		CreatedAt:       time.Now().UTC(),
	}

	relevant := relevantEntities(permissions)
	contract.BusinessRules = b.relevantRules(relevant)
	contract.ValidationConstraints = b.relevantConstraints(relevant)

	b.logger.Info("built contract",
		zap.String("agent", agentName),
		zap.Int("business_rules", len(contract.BusinessRules)),
		zap.Int("constraints", len(contract.ValidationConstraints)))
	return contract
}

// SuggestPermissions derives read-only viewer permissions from a semantic
// model: every extracted entity, every relationship endpoint, and every
// table a measure formula depends on.
func (b *Builder) SuggestPermissions(model *models.SemanticModel) models.ContractPermissions {
	entities := make(map[string]struct{})
	for _, entity := range model.Entities {
		entities[entity.Name] = struct{}{}
	}
	for _, rel := range model.Relationships {
		entities[rel.FromEntity] = struct{}{}
		entities[rel.ToEntity] = struct{}{}
	}
	for i := range model.Measures {
		for _, dep := range model.Measures[i].Dependencies() {
			if table, _, ok := splitDependency(dep); ok {
				entities[table] = struct{}{}
			}
		}
	}

	read := make([]string, 0, len(entities))
	for name := range entities {
		read = append(read, name)
	}
	sort.Strings(read)

	return models.ContractPermissions{
		ReadEntities: read,
		RequiredRole: "Viewer",
	}
}

// ExportJSON serializes a contract as an indented JSON document.
func (b *Builder) ExportJSON(contract *models.SemanticContract) ([]byte, error) {
	out, err := json.MarshalIndent(contract, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal contract: %w", err)
	}
	return out, nil
}

func relevantEntities(permissions models.ContractPermissions) map[string]struct{} {
	relevant := make(map[string]struct{})
	for _, entity := range permissions.ReadEntities {
		relevant[entity] = struct{}{}
	}
	for entity := range permissions.WriteProperties {
		relevant[entity] = struct{}{}
	}
	return relevant
}

func (b *Builder) relevantRules(relevant map[string]struct{}) []models.BusinessRule {
	var rules []models.BusinessRule
	for _, rule := range b.ontology.BusinessRules {
		if _, ok := relevant[rule.Entity]; ok {
			rules = append(rules, rule)
		}
	}
	return rules
}

func (b *Builder) relevantConstraints(relevant map[string]struct{}) []models.Constraint {
	var constraints []models.Constraint
	for i := range b.ontology.Entities {
		entity := &b.ontology.Entities[i]
		if _, ok := relevant[entity.Name]; !ok {
			continue
		}
		for _, prop := range entity.Properties {
			constraints = append(constraints, prop.Constraints...)
		}
		constraints = append(constraints, entity.Constraints...)
	}
	return constraints
}

func splitDependency(dep string) (table, column string, ok bool) {
	for i := 0; i < len(dep); i++ {
		if dep[i] == '.' {
			return dep[:i], dep[i+1:], true
		}
	}
	return "", "", false
}
