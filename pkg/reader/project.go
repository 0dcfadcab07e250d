package reader

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf16"

	"go.uber.org/zap"

	"github.com/cloudbadal007/powerbi-ontology-extractor/pkg/apperrors"
	"github.com/cloudbadal007/powerbi-ontology-extractor/pkg/models"
)

// TMDL declaration grammar. Table, column and measure declarations are
// line-anchored; relationship declarations pair a fromColumn and toColumn
// table-bracket-column reference anywhere in the fragment.
var (
	tmdlTablePattern   = regexp.MustCompile(`(?im)^[ \t]*table[ \t]+(.+?)[ \t]*\r?$`)
	tmdlColumnPattern  = regexp.MustCompile(`(?im)^[ \t]*column[ \t]+(.+?)[ \t]*\r?$`)
	tmdlMeasurePattern = regexp.MustCompile(`(?im)^[ \t]*measure[ \t]+(.+?)[ \t]*=[ \t]*(.+?)[ \t]*\r?$`)
	tmdlTypePattern    = regexp.MustCompile(`(?i)\bdataType[ \t]*:[ \t]*([A-Za-z0-9_]+)`)
	tmdlKeyPattern     = regexp.MustCompile(`(?i)\bisKey\b`)

	tmdlRelationshipPattern = regexp.MustCompile(
		`(?is)fromColumn[ \t]*:[ \t]*['"]?([A-Za-z0-9_ ]+)['"]?\[([A-Za-z0-9_ ]+)\]` +
			`.*?toColumn[ \t]*:[ \t]*['"]?([A-Za-z0-9_ ]+)['"]?\[([A-Za-z0-9_ ]+)\]`)
)

// typeAnnotationWindow bounds how far past a column declaration the parser
// looks for its dataType annotation.
const typeAnnotationWindow = 240

// projectSource reads a directory-based PBIP/TMDL project. The project root
// is caller-owned: this source performs no filesystem mutation and Close
// never deletes anything.
type projectSource struct {
	root   string
	logger *zap.Logger
}

func newProjectSource(root string, logger *zap.Logger) *projectSource {
	return &projectSource{
		root:   root,
		logger: logger.Named("pbip-reader"),
	}
}

var _ Source = (*projectSource)(nil)

// ToRawModel enumerates every .tmdl fragment under the project root and
// merges the declarations into one RawModel. A table's definition may be
// split across files: fragments declaring the same table contribute the
// union of their columns and measures, first occurrence winning on name
// collisions. Fails with ErrNotFound when the project holds no fragments.
func (s *projectSource) ToRawModel() (*models.RawModel, error) {
	fragments, err := s.findFragments()
	if err != nil {
		return nil, err
	}
	if len(fragments) == 0 {
		return nil, fmt.Errorf("no TMDL model files in project %q: %w", s.root, apperrors.ErrNotFound)
	}

	tablesByName := make(map[string]*models.RawTable)
	var tableOrder []string
	var relationships []models.RawRelationship

	for _, fragment := range fragments {
		content, err := readFragment(fragment)
		if err != nil {
			return nil, err
		}
		s.mergeTables(content, fragment, tablesByName, &tableOrder)
		relationships = append(relationships, extractRelationships(content)...)
	}

	raw := &models.RawModel{
		Name:          filepath.Base(s.root),
		Tables:        make([]models.RawTable, 0, len(tableOrder)),
		Relationships: relationships,
	}
	for _, name := range tableOrder {
		raw.Tables = append(raw.Tables, *tablesByName[name])
	}

	s.logger.Info("read model description from project",
		zap.String("root", s.root),
		zap.Int("fragments", len(fragments)),
		zap.Int("tables", len(raw.Tables)),
		zap.Int("relationships", len(raw.Relationships)))
	return raw, nil
}

func (s *projectSource) findFragments() ([]string, error) {
	var fragments []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".tmdl") {
			fragments = append(fragments, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate project %q: %w", s.root, err)
	}
	return fragments, nil
}

// mergeTables extracts the table declarations from one fragment and merges
// them into the accumulated table map.
func (s *projectSource) mergeTables(content, fragment string, tablesByName map[string]*models.RawTable, tableOrder *[]string) {
	var tableNames []string
	for _, match := range tmdlTablePattern.FindAllStringSubmatch(content, -1) {
		if name := cleanIdentifier(match[1]); name != "" {
			tableNames = append(tableNames, name)
		}
	}

	// Fragments directly under a "tables" directory implicitly declare a
	// table named after the file when no explicit declaration exists.
	if len(tableNames) == 0 {
		parent := strings.ToLower(filepath.Base(filepath.Dir(fragment)))
		if parent == "tables" || parent == "table" {
			stem := strings.TrimSuffix(filepath.Base(fragment), filepath.Ext(fragment))
			if name := cleanIdentifier(stem); name != "" {
				tableNames = append(tableNames, name)
			}
		}
	}
	if len(tableNames) == 0 {
		return
	}

	columns := extractColumns(content)
	measures := extractMeasures(content)

	for _, tableName := range tableNames {
		table, ok := tablesByName[tableName]
		if !ok {
			table = &models.RawTable{Name: tableName}
			tablesByName[tableName] = table
			*tableOrder = append(*tableOrder, tableName)
		}

		existingCols := make(map[string]struct{}, len(table.Columns))
		for _, c := range table.Columns {
			existingCols[c.Name] = struct{}{}
		}
		for _, col := range columns {
			if _, ok := existingCols[col.Name]; ok {
				continue
			}
			existingCols[col.Name] = struct{}{}
			table.Columns = append(table.Columns, col)
		}

		existingMeasures := make(map[string]struct{}, len(table.Measures))
		for _, m := range table.Measures {
			existingMeasures[m.Name] = struct{}{}
		}
		for _, msr := range measures {
			if _, ok := existingMeasures[msr.Name]; ok {
				continue
			}
			existingMeasures[msr.Name] = struct{}{}
			table.Measures = append(table.Measures, msr)
		}
	}
}

// extractColumns finds column declarations, reading the optional dataType
// annotation from a bounded window after each declaration. Absent
// annotations default to "string".
func extractColumns(content string) []models.RawColumn {
	var columns []models.RawColumn
	for _, loc := range tmdlColumnPattern.FindAllStringSubmatchIndex(content, -1) {
		name := cleanIdentifier(content[loc[2]:loc[3]])
		if name == "" {
			continue
		}

		dataType := "string"
		window := content[loc[1]:min(loc[1]+typeAnnotationWindow, len(content))]
		if typeMatch := tmdlTypePattern.FindStringSubmatch(window); typeMatch != nil {
			dataType = typeMatch[1]
		}

		// A column doubling as the table key is marked with an isKey
		// annotation in the same metadata window.
		isKey := tmdlKeyPattern.MatchString(window)

		columns = append(columns, models.RawColumn{
			Name:       name,
			DataType:   dataType,
			IsKey:      isKey,
			IsNullable: true,
		})
	}
	return columns
}

func extractMeasures(content string) []models.RawMeasure {
	var measures []models.RawMeasure
	for _, match := range tmdlMeasurePattern.FindAllStringSubmatch(content, -1) {
		name := cleanIdentifier(match[1])
		if name == "" {
			continue
		}
		measures = append(measures, models.RawMeasure{
			Name:       name,
			Expression: strings.TrimSpace(match[2]),
		})
	}
	return measures
}

// extractRelationships finds fromColumn/toColumn reference pairs. The TMDL
// grammar does not always carry cardinality; the documented defaults are
// many-to-one with single-direction cross-filtering.
func extractRelationships(content string) []models.RawRelationship {
	var rels []models.RawRelationship
	for _, match := range tmdlRelationshipPattern.FindAllStringSubmatch(content, -1) {
		fromTable := cleanIdentifier(match[1])
		fromColumn := cleanIdentifier(match[2])
		toTable := cleanIdentifier(match[3])
		toColumn := cleanIdentifier(match[4])
		rels = append(rels, models.RawRelationship{
			Name:                fromTable + "_" + toTable,
			FromTable:           fromTable,
			FromColumn:          fromColumn,
			ToTable:             toTable,
			ToColumn:            toColumn,
			FromCardinality:     models.RawCardinalityMany,
			ToCardinality:       models.RawCardinalityOne,
			CrossFilterBehavior: models.CrossFilterSingleDirection,
			IsActive:            true,
		})
	}
	return rels
}

// cleanIdentifier normalizes a TMDL identifier: trailing brace-delimited
// metadata blocks are discarded, surrounding quotes stripped, whitespace
// trimmed.
func cleanIdentifier(value string) string {
	cleaned := strings.TrimSpace(value)
	if idx := strings.Index(cleaned, "{"); idx >= 0 {
		cleaned = strings.TrimSpace(cleaned[:idx])
	}
	if len(cleaned) >= 2 {
		if (cleaned[0] == '"' && cleaned[len(cleaned)-1] == '"') ||
			(cleaned[0] == '\'' && cleaned[len(cleaned)-1] == '\'') {
			cleaned = strings.TrimSpace(cleaned[1 : len(cleaned)-1])
		}
	}
	return cleaned
}

// readFragment reads a TMDL fragment as UTF-8, falling back to UTF-16 when
// the file carries a byte-order mark (some Power BI Desktop versions emit
// UTF-16 TMDL).
func readFragment(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read fragment %q: %w", path, err)
	}
	return decodeText(data), nil
}

func decodeText(data []byte) string {
	if len(data) >= 2 {
		le := data[0] == 0xFF && data[1] == 0xFE
		be := data[0] == 0xFE && data[1] == 0xFF
		if le || be {
			return decodeUTF16(data[2:], le)
		}
	}
	// Strip a UTF-8 BOM if present.
	return string(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
}

func decodeUTF16(data []byte, littleEndian bool) string {
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		if littleEndian {
			units = append(units, uint16(data[i])|uint16(data[i+1])<<8)
		} else {
			units = append(units, uint16(data[i])<<8|uint16(data[i+1]))
		}
	}
	return string(utf16.Decode(units))
}

// Close is a no-op: the project directory belongs to the caller.
func (s *projectSource) Close() error {
	return nil
}
