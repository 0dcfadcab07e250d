// Package analyzer compares semantic models extracted from independent
// dashboards: it detects conflicting definitions of the same concept,
// identifies duplicated measure logic, scores the resulting semantic debt,
// and suggests canonical definitions.
package analyzer

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cloudbadal007/powerbi-ontology-extractor/pkg/config"
	"github.com/cloudbadal007/powerbi-ontology-extractor/pkg/models"
)

// thresholdPattern extracts the numeric threshold from a comparison like
// "RiskScore > 80".
var thresholdPattern = regexp.MustCompile(`[><=]+\s*(\d+)`)

// Analyzer inspects a batch of independently extracted semantic models.
// Each model is keyed by its source file; the analyzer never mutates them.
type Analyzer struct {
	semanticModels []*models.SemanticModel
	costs          config.AnalyzerConfig
	logger         *zap.Logger
}

// New creates an analyzer over the given models with the configured
// semantic-debt unit costs.
func New(semanticModels []*models.SemanticModel, costs config.AnalyzerConfig, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		semanticModels: semanticModels,
		costs:          costs,
		logger:         logger.Named("semantic-analyzer"),
	}
}

type modelMeasure struct {
	source  string
	measure models.Measure
}

// DetectConflicts finds concepts defined differently across dashboards:
// measures sharing a name but not a formula, and entities sharing a name
// but not a property shape.
func (a *Analyzer) DetectConflicts() []models.Conflict {
	var conflicts []models.Conflict

	byName := a.measuresByName()
	for _, name := range sortedMapKeys(byName) {
		group := byName[name]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				m1, m2 := group[i], group[j]
				if m1.measure.DAXFormula == m2.measure.DAXFormula {
					continue
				}
				conflicts = append(conflicts, models.Conflict{
					Concept:     name,
					Dashboard1:  m1.source,
					Definition1: m1.measure.DAXFormula,
					Dashboard2:  m2.source,
					Definition2: m2.measure.DAXFormula,
					Severity:    conflictSeverity(m1.measure.DAXFormula, m2.measure.DAXFormula),
					Description: fmt.Sprintf("%q defined differently in %s vs %s", name, m1.source, m2.source),
				})
			}
		}
	}

	conflicts = append(conflicts, a.detectEntityConflicts()...)
	a.logger.Info("detected conflicts", zap.Int("count", len(conflicts)))
	return conflicts
}

func (a *Analyzer) detectEntityConflicts() []models.Conflict {
	type modelEntity struct {
		source string
		entity *models.Entity
	}
	byName := make(map[string][]modelEntity)
	for _, model := range a.semanticModels {
		for i := range model.Entities {
			entity := &model.Entities[i]
			key := strings.ToLower(entity.Name)
			byName[key] = append(byName[key], modelEntity{source: model.SourceFile, entity: entity})
		}
	}

	var conflicts []models.Conflict
	for _, name := range sortedMapKeys(byName) {
		group := byName[name]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				e1, e2 := group[i], group[j]
				if samePropertyShape(e1.entity, e2.entity) {
					continue
				}
				conflicts = append(conflicts, models.Conflict{
					Concept:     name,
					Dashboard1:  e1.source,
					Definition1: fmt.Sprintf("%d properties", len(e1.entity.Properties)),
					Dashboard2:  e2.source,
					Definition2: fmt.Sprintf("%d properties", len(e2.entity.Properties)),
					Severity:    models.ConflictSeverityMedium,
					Description: fmt.Sprintf("entity %q has different properties across dashboards", name),
				})
			}
		}
	}
	return conflicts
}

func samePropertyShape(a, b *models.Entity) bool {
	if len(a.Properties) != len(b.Properties) {
		return false
	}
	types := make(map[string]models.DataType, len(a.Properties))
	for _, p := range a.Properties {
		types[p.Name] = p.DataType
	}
	for _, p := range b.Properties {
		if dt, ok := types[p.Name]; !ok || dt != p.DataType {
			return false
		}
	}
	return true
}

// IdentifyDuplicateLogic finds measures whose normalized formulas are
// identical across dashboards: the same name means a true duplication,
// different names mean a consolidation opportunity.
func (a *Analyzer) IdentifyDuplicateLogic() []models.Duplication {
	byFormula := make(map[string][]modelMeasure)
	var order []string
	for _, model := range a.semanticModels {
		for _, measure := range model.Measures {
			key := normalizeFormula(measure.DAXFormula)
			if _, ok := byFormula[key]; !ok {
				order = append(order, key)
			}
			byFormula[key] = append(byFormula[key], modelMeasure{source: model.SourceFile, measure: measure})
		}
	}

	var duplications []models.Duplication
	for _, formula := range order {
		group := byFormula[formula]
		if len(group) < 2 {
			continue
		}

		dashboards := make([]string, 0, len(group))
		names := make([]string, 0, len(group))
		uniqueNames := make(map[string]struct{})
		for _, m := range group {
			dashboards = append(dashboards, m.source)
			names = append(names, m.measure.Name)
			uniqueNames[m.measure.Name] = struct{}{}
		}

		dup := models.Duplication{
			Dashboards: dashboards,
			DAXFormula: group[0].measure.DAXFormula,
		}
		if len(uniqueNames) == 1 {
			dup.MeasureName = names[0]
			dup.Description = fmt.Sprintf("Same measure %q duplicated across %d dashboards", names[0], len(dashboards))
		} else {
			dup.MeasureName = fmt.Sprintf("%s (and %d others)", names[0], len(names)-1)
			dup.Description = fmt.Sprintf("Same logic with different names: %s", strings.Join(names, ", "))
		}
		duplications = append(duplications, dup)
	}

	a.logger.Info("identified duplications", zap.Int("count", len(duplications)))
	return duplications
}

// CalculateSemanticDebt scores the reconciliation cost of the batch:
// conflicts at the configured cost per conflict plus duplications at the
// (lower) cost per duplication.
func (a *Analyzer) CalculateSemanticDebt() *models.SemanticDebtReport {
	conflicts := a.DetectConflicts()
	duplications := a.IdentifyDuplicateLogic()

	bySeverity := make(map[string]int)
	for _, c := range conflicts {
		bySeverity[c.Severity]++
	}

	totalCost := float64(len(conflicts))*a.costs.CostPerConflict +
		float64(len(duplications))*a.costs.CostPerDuplication

	report := &models.SemanticDebtReport{
		TotalConflicts:      len(conflicts),
		TotalDuplications:   len(duplications),
		CostPerConflict:     a.costs.CostPerConflict,
		TotalCost:           totalCost,
		ConflictsBySeverity: bySeverity,
		Message: fmt.Sprintf("Total semantic debt: $%.0f (%d conflicts x $%.0f + %d duplications x $%.0f)",
			totalCost, len(conflicts), a.costs.CostPerConflict, len(duplications), a.costs.CostPerDuplication),
	}

	a.logger.Info("calculated semantic debt", zap.Float64("total_cost", totalCost))
	return report
}

// SuggestCanonicalDefinitions proposes, for every measure defined
// differently across dashboards, the most common normalized formula as the
// canonical definition. Confidence is the share of definitions using it.
func (a *Analyzer) SuggestCanonicalDefinitions() []models.CanonicalEntity {
	var canonical []models.CanonicalEntity

	byName := a.measuresByName()
	for _, name := range sortedMapKeys(byName) {
		group := byName[name]
		if len(group) < 2 {
			continue
		}

		formulaCounts := make(map[string]int)
		var formulaOrder []string
		for _, m := range group {
			key := normalizeFormula(m.measure.DAXFormula)
			if _, ok := formulaCounts[key]; !ok {
				formulaOrder = append(formulaOrder, key)
			}
			formulaCounts[key]++
		}

		suggested := formulaOrder[0]
		for _, f := range formulaOrder {
			if formulaCounts[f] > formulaCounts[suggested] {
				suggested = f
			}
		}

		entry := models.CanonicalEntity{
			Name:                   name,
			SuggestedDefinition:    suggested,
			Confidence:             float64(formulaCounts[suggested]) / float64(len(group)),
			AlternativeDefinitions: make(map[string]string),
		}
		for _, m := range group {
			if normalizeFormula(m.measure.DAXFormula) == suggested {
				entry.DashboardsUsing = append(entry.DashboardsUsing, m.source)
			} else {
				entry.AlternativeDefinitions[m.source] = m.measure.DAXFormula
			}
		}
		if len(entry.AlternativeDefinitions) == 0 {
			entry.AlternativeDefinitions = nil
		}
		canonical = append(canonical, entry)
	}

	a.logger.Info("suggested canonical definitions", zap.Int("count", len(canonical)))
	return canonical
}

func (a *Analyzer) measuresByName() map[string][]modelMeasure {
	byName := make(map[string][]modelMeasure)
	for _, model := range a.semanticModels {
		for _, measure := range model.Measures {
			key := strings.ToLower(measure.Name)
			byName[key] = append(byName[key], modelMeasure{source: model.SourceFile, measure: measure})
		}
	}
	return byName
}

// conflictSeverity grades a definition conflict: case-only differences are
// LOW; two threshold comparisons more than 20 apart are HIGH; everything
// else is MEDIUM.
func conflictSeverity(formula1, formula2 string) string {
	if strings.EqualFold(formula1, formula2) {
		return models.ConflictSeverityLow
	}

	t1 := thresholdPattern.FindStringSubmatch(formula1)
	t2 := thresholdPattern.FindStringSubmatch(formula2)
	if t1 != nil && t2 != nil {
		v1, err1 := strconv.Atoi(t1[1])
		v2, err2 := strconv.Atoi(t2[1])
		if err1 == nil && err2 == nil {
			diff := v1 - v2
			if diff < 0 {
				diff = -diff
			}
			if diff > 20 {
				return models.ConflictSeverityHigh
			}
		}
	}
	return models.ConflictSeverityMedium
}

// normalizeFormula strips whitespace and case so formulas differing only in
// formatting compare equal.
func normalizeFormula(formula string) string {
	normalized := strings.ToLower(formula)
	for _, ws := range []string{" ", "\n", "\t", "\r"} {
		normalized = strings.ReplaceAll(normalized, ws, "")
	}
	return normalized
}

func sortedMapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
