package schemamap

import (
	"fmt"

	"github.com/cloudbadal007/powerbi-ontology-extractor/pkg/models"
)

// SuggestFix proposes remediations for a drift report: mapping updates for
// rename candidates, manual verification for missing columns, and ontology
// review for new columns. Fixes are proposals only; the mapper never edits
// a binding on the caller's behalf. Returns no fixes when the report's
// entity has no stored binding.
func (m *Mapper) SuggestFix(report *models.DriftReport) []models.Fix {
	binding := m.bindings[report.Entity]
	if binding == nil {
		return nil
	}

	var fixes []models.Fix

	for _, oldName := range sortedKeys(report.RenamedColumns) {
		newName := report.RenamedColumns[oldName]
		fixes = append(fixes, models.Fix{
			Type:        models.FixUpdateMapping,
			Description: fmt.Sprintf("Update mapping: %s -> %s", oldName, newName),
			Action:      fmt.Sprintf("Set property mapping %q to %q on entity %q", oldName, newName, report.Entity),
			Entity:      report.Entity,
			Property:    oldName,
		})
	}

	for _, missing := range report.MissingColumns {
		fixes = append(fixes, models.Fix{
			Type:        models.FixUpdateMapping,
			Description: fmt.Sprintf("Column %q not found. Check if renamed or deleted.", missing),
			Action:      fmt.Sprintf("Verify column exists: SELECT * FROM %s WHERE 1=0", binding.PhysicalSource),
			Entity:      report.Entity,
			Property:    missing,
		})
	}

	for _, newCol := range report.NewColumns {
		fixes = append(fixes, models.Fix{
			Type:        models.FixAddColumn,
			Description: fmt.Sprintf("New column %q found. Consider adding to ontology.", newCol),
			Action:      fmt.Sprintf("Review and potentially add %q to entity %q", newCol, report.Entity),
			Entity:      report.Entity,
			Property:    newCol,
		})
	}

	return fixes
}
