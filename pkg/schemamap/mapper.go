// Package schemamap binds ontology entities to physical data-source
// locations and detects schema drift: the silent divergence of a physical
// schema from what the ontology expects.
package schemamap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cloudbadal007/powerbi-ontology-extractor/pkg/apperrors"
	"github.com/cloudbadal007/powerbi-ontology-extractor/pkg/models"
)

// DriftOptions are the rename-detection tunables. The defaults preserve
// the thresholds the binding format was designed against; they are not
// invariants and can under- or over-match on real column-naming schemes.
type DriftOptions struct {
	// RenameLengthSlack is the maximum length difference between a missing
	// and a new column name for the character-overlap rule to apply.
	RenameLengthSlack int
	// RenameOverlapThreshold is the minimum fraction of the shorter name's
	// characters that must appear in the longer name.
	RenameOverlapThreshold float64
}

// DefaultDriftOptions returns the compatibility thresholds.
func DefaultDriftOptions() DriftOptions {
	return DriftOptions{
		RenameLengthSlack:      3,
		RenameOverlapThreshold: 0.7,
	}
}

// Mapper owns the schema bindings for one ontology: one binding per entity
// name, last write wins on re-creation.
type Mapper struct {
	ontology *models.Ontology
	bindings map[string]*models.SchemaBinding
	opts     DriftOptions
	logger   *zap.Logger
}

// NewMapper creates a mapper for the given ontology.
func NewMapper(ontology *models.Ontology, opts DriftOptions, logger *zap.Logger) *Mapper {
	return &Mapper{
		ontology: ontology,
		bindings: make(map[string]*models.SchemaBinding),
		opts:     opts,
		logger:   logger.Named("schema-mapper"),
	}
}

// Binding returns the stored binding for an entity, or nil if none exists.
func (m *Mapper) Binding(entityName string) *models.SchemaBinding {
	return m.bindings[entityName]
}

// CreateBinding binds an ontology entity to a physical table. When explicit
// property mappings are not supplied, physical column names are derived by
// snake-casing each property's logical name. Fails fast with ErrNotFound
// for an unknown entity; no partial binding is ever stored.
func (m *Mapper) CreateBinding(entityName, physicalTable string, propertyMappings map[string]string) (*models.SchemaBinding, error) {
	entity := m.ontology.Entity(entityName)
	if entity == nil {
		return nil, fmt.Errorf("entity %q: %w", entityName, apperrors.ErrNotFound)
	}

	if len(propertyMappings) == 0 {
		propertyMappings = make(map[string]string, len(entity.Properties))
		for _, prop := range entity.Properties {
			propertyMappings[prop.Name] = toSnakeCase(prop.Name)
		}
	}

	binding := &models.SchemaBinding{
		ID:               uuid.New(),
		Entity:           entityName,
		PhysicalSource:   physicalTable,
		PropertyMappings: propertyMappings,
		SourceType:       detectSourceType(physicalTable),
	}
	m.bindings[entityName] = binding

	m.logger.Info("created binding",
		zap.String("entity", entityName),
		zap.String("physical_source", physicalTable),
		zap.String("source_type", binding.SourceType))
	return binding, nil
}

// ValidateBinding performs the structural check: the entity must exist, and
// each mapped logical property should exist on the entity. A missing entity
// is an error; a mapped property absent from the entity is a warning and
// the binding stays usable pending correction.
func (m *Mapper) ValidateBinding(binding *models.SchemaBinding) *models.ValidationResult {
	entity := m.ontology.Entity(binding.Entity)
	if entity == nil {
		return &models.ValidationResult{
			IsValid: false,
			Errors:  []string{fmt.Sprintf("entity %q not found in ontology", binding.Entity)},
			Message: fmt.Sprintf("entity %q not found", binding.Entity),
		}
	}

	var warnings []string
	for _, logicalProp := range sortedKeys(binding.PropertyMappings) {
		if entity.Property(logicalProp) == nil {
			warnings = append(warnings,
				fmt.Sprintf("property %q mapped but not found in entity %q", logicalProp, binding.Entity))
		}
	}

	return &models.ValidationResult{
		IsValid:  true,
		Warnings: warnings,
		Message:  "binding is valid",
	}
}

// DetectDrift compares a binding's expectations against the current
// physical schema, supplied as a column-name to type-name mapping. Drift of
// any severity is a successful result, never an error: "different" is data.
func (m *Mapper) DetectDrift(binding *models.SchemaBinding, currentSchema map[string]string) *models.DriftReport {
	expected := make(map[string]struct{}, len(binding.PropertyMappings))
	for _, physical := range binding.PropertyMappings {
		expected[physical] = struct{}{}
	}

	var missing, newCols []string
	for col := range expected {
		if _, ok := currentSchema[col]; !ok {
			missing = append(missing, col)
		}
	}
	for col := range currentSchema {
		if _, ok := expected[col]; !ok {
			newCols = append(newCols, col)
		}
	}
	sort.Strings(missing)
	sort.Strings(newCols)

	typeChanges := m.detectTypeChanges(binding, currentSchema)
	missing, newCols, renamed := m.inferRenames(missing, newCols)

	severity := models.SeverityInfo
	switch {
	case len(missing) > 0:
		// A column the ontology depends on is gone and not explained by a
		// rename: the condition drift detection exists to catch.
		severity = models.SeverityCritical
	case len(typeChanges) > 0 || len(renamed) > 0:
		severity = models.SeverityWarning
	}

	report := &models.DriftReport{
		Entity:         binding.Entity,
		MissingColumns: missing,
		NewColumns:     newCols,
		TypeChanges:    typeChanges,
		RenamedColumns: renamed,
		Severity:       severity,
		Message:        driftMessage(missing, renamed, typeChanges, newCols),
	}

	if severity != models.SeverityInfo {
		m.logger.Warn("schema drift detected",
			zap.String("entity", binding.Entity),
			zap.String("severity", severity),
			zap.Strings("missing_columns", missing))
	}
	return report
}

// detectTypeChanges compares the declared ontology type of every mapped
// property still present in the current schema against the actual declared
// type.
func (m *Mapper) detectTypeChanges(binding *models.SchemaBinding, currentSchema map[string]string) map[string]string {
	entity := m.ontology.Entity(binding.Entity)
	if entity == nil {
		return nil
	}

	changes := make(map[string]string)
	for logicalProp, physicalCol := range binding.PropertyMappings {
		actualType, ok := currentSchema[physicalCol]
		if !ok {
			continue
		}
		prop := entity.Property(logicalProp)
		if prop == nil {
			continue
		}
		if string(prop.DataType) != actualType {
			changes[physicalCol] = fmt.Sprintf("%s -> %s", prop.DataType, actualType)
		}
	}
	if len(changes) == 0 {
		return nil
	}
	return changes
}

// inferRenames pairs missing columns with new columns whose names are
// similar enough to be rename candidates. Each confirmed pair is removed
// from both sets and recorded old -> new.
func (m *Mapper) inferRenames(missing, newCols []string) (remainingMissing, remainingNew []string, renamed map[string]string) {
	renamed = make(map[string]string)
	claimed := make(map[string]struct{})

	for _, miss := range missing {
		matched := false
		for _, candidate := range newCols {
			if _, taken := claimed[candidate]; taken {
				continue
			}
			if m.similarNames(miss, candidate) {
				renamed[miss] = candidate
				claimed[candidate] = struct{}{}
				matched = true
				break
			}
		}
		if !matched {
			remainingMissing = append(remainingMissing, miss)
		}
	}
	for _, candidate := range newCols {
		if _, taken := claimed[candidate]; !taken {
			remainingNew = append(remainingNew, candidate)
		}
	}
	if len(renamed) == 0 {
		renamed = nil
	}
	return remainingMissing, remainingNew, renamed
}

// similarNames decides whether two column names plausibly refer to the same
// column. After lowercasing and removing underscores/hyphens: substring
// containment either way, or, when lengths differ by at most the configured
// slack, the fraction of the shorter name's characters present in the
// longer name exceeding the configured threshold.
func (m *Mapper) similarNames(a, b string) bool {
	na := normalizeColumnName(a)
	nb := normalizeColumnName(b)
	if na == "" || nb == "" {
		return false
	}

	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}

	diff := len(na) - len(nb)
	if diff < 0 {
		diff = -diff
	}
	if diff > m.opts.RenameLengthSlack {
		return false
	}

	shorter, longer := na, nb
	if len(nb) < len(na) {
		shorter, longer = nb, na
	}
	common := 0
	for _, c := range shorter {
		if strings.ContainsRune(longer, c) {
			common++
		}
	}
	return float64(common)/float64(len(shorter)) > m.opts.RenameOverlapThreshold
}

func normalizeColumnName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", "")
	return strings.ReplaceAll(name, "-", "")
}

// driftMessage concatenates a human-readable clause per non-empty category:
// missing first (with its severity callout), then renamed, type changes,
// and new columns.
func driftMessage(missing []string, renamed, typeChanges map[string]string, newCols []string) string {
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("CRITICAL: missing columns: %s", strings.Join(missing, ", ")))
	}
	if len(renamed) > 0 {
		parts = append(parts, fmt.Sprintf("columns may have been renamed: %s", joinPairs(renamed)))
	}
	if len(typeChanges) > 0 {
		parts = append(parts, fmt.Sprintf("type changes detected: %s", joinPairs(typeChanges)))
	}
	if len(newCols) > 0 {
		parts = append(parts, fmt.Sprintf("new columns found: %s", strings.Join(newCols, ", ")))
	}
	if len(parts) == 0 {
		return "no drift detected"
	}
	return strings.Join(parts, " | ")
}

func joinPairs(pairs map[string]string) string {
	keys := sortedKeys(pairs)
	formatted := make([]string, 0, len(keys))
	for _, k := range keys {
		formatted = append(formatted, fmt.Sprintf("%s -> %s", k, pairs[k]))
	}
	return strings.Join(formatted, ", ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// toSnakeCase converts a logical property name to its default physical
// column name: uppercase-letter boundaries become underscores, e.g.
// "RiskScore" -> "risk_score".
func toSnakeCase(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				prev := rune(name[i-1])
				next := i+1 < len(name)
				if (prev >= 'a' && prev <= 'z') || (prev >= '0' && prev <= '9') ||
					(next && name[i+1] >= 'a' && name[i+1] <= 'z' && prev >= 'A' && prev <= 'Z') {
					b.WriteByte('_')
				}
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// detectSourceType infers the physical source type from keywords in the
// table name.
func detectSourceType(physicalTable string) string {
	lower := strings.ToLower(physicalTable)
	switch {
	case strings.Contains(lower, "azure") || strings.Contains(lower, "sql"):
		return models.SourceTypeAzureSQL
	case strings.Contains(lower, "fabric") || strings.Contains(lower, "onelake"):
		return models.SourceTypeFabric
	default:
		return models.SourceTypeSQL
	}
}
