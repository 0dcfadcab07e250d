package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cloudbadal007/powerbi-ontology-extractor/pkg/config"
	"github.com/cloudbadal007/powerbi-ontology-extractor/pkg/models"
)

func testCosts() config.AnalyzerConfig {
	return config.AnalyzerConfig{CostPerConflict: 50000, CostPerDuplication: 10000}
}

func modelWithMeasures(source string, measures ...models.Measure) *models.SemanticModel {
	return &models.SemanticModel{Name: source, SourceFile: source, Measures: measures}
}

func TestDetectConflictsMeasureDefinitions(t *testing.T) {
	sales := modelWithMeasures("sales.pbix",
		models.Measure{Name: "High Risk Shipments", DAXFormula: "CALCULATE(COUNTROWS(Shipment), Shipment[RiskScore] > 80)"})
	ops := modelWithMeasures("ops.pbix",
		models.Measure{Name: "High Risk Shipments", DAXFormula: "CALCULATE(COUNTROWS(Shipment), Shipment[RiskScore] > 50)"})

	a := New([]*models.SemanticModel{sales, ops}, testCosts(), zap.NewNop())
	conflicts := a.DetectConflicts()

	require.Len(t, conflicts, 1)
	c := conflicts[0]
	assert.Equal(t, "high risk shipments", c.Concept)
	assert.Equal(t, "sales.pbix", c.Dashboard1)
	assert.Equal(t, "ops.pbix", c.Dashboard2)
	// Thresholds 80 vs 50 differ by more than 20.
	assert.Equal(t, models.ConflictSeverityHigh, c.Severity)
}

func TestDetectConflictsIdenticalFormulasNoConflict(t *testing.T) {
	formula := "SUM(Sales[Amount])"
	a := New([]*models.SemanticModel{
		modelWithMeasures("a.pbix", models.Measure{Name: "Revenue", DAXFormula: formula}),
		modelWithMeasures("b.pbix", models.Measure{Name: "Revenue", DAXFormula: formula}),
	}, testCosts(), zap.NewNop())

	assert.Empty(t, a.DetectConflicts())
}

func TestDetectConflictsEntityShape(t *testing.T) {
	m1 := &models.SemanticModel{
		SourceFile: "a.pbix",
		Entities: []models.Entity{{Name: "Customer", Properties: []models.Property{
			{Name: "CustomerID", DataType: models.DataTypeInteger},
			{Name: "Name", DataType: models.DataTypeString},
		}}},
	}
	m2 := &models.SemanticModel{
		SourceFile: "b.pbix",
		Entities: []models.Entity{{Name: "Customer", Properties: []models.Property{
			{Name: "CustomerID", DataType: models.DataTypeInteger},
		}}},
	}

	a := New([]*models.SemanticModel{m1, m2}, testCosts(), zap.NewNop())
	conflicts := a.DetectConflicts()

	require.Len(t, conflicts, 1)
	assert.Equal(t, "customer", conflicts[0].Concept)
	assert.Equal(t, models.ConflictSeverityMedium, conflicts[0].Severity)
}

func TestConflictSeverity(t *testing.T) {
	tests := []struct {
		name     string
		f1, f2   string
		expected string
	}{
		{"case only", "SUM(Sales[Amount])", "sum(sales[amount])", models.ConflictSeverityLow},
		{"thresholds far apart", "Score > 90", "Score > 10", models.ConflictSeverityHigh},
		{"thresholds close", "Score > 80", "Score > 70", models.ConflictSeverityMedium},
		{"no thresholds", "SUM(A[X])", "AVERAGE(A[X])", models.ConflictSeverityMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, conflictSeverity(tt.f1, tt.f2))
		})
	}
}

func TestIdentifyDuplicateLogicSameName(t *testing.T) {
	a := New([]*models.SemanticModel{
		modelWithMeasures("a.pbix", models.Measure{Name: "Revenue", DAXFormula: "SUM(Sales[Amount])"}),
		modelWithMeasures("b.pbix", models.Measure{Name: "Revenue", DAXFormula: "sum( sales[amount] )"}),
	}, testCosts(), zap.NewNop())

	dups := a.IdentifyDuplicateLogic()
	require.Len(t, dups, 1)
	assert.Equal(t, "Revenue", dups[0].MeasureName)
	assert.ElementsMatch(t, []string{"a.pbix", "b.pbix"}, dups[0].Dashboards)
	assert.Contains(t, dups[0].Description, "duplicated across 2 dashboards")
}

func TestIdentifyDuplicateLogicDifferentNames(t *testing.T) {
	a := New([]*models.SemanticModel{
		modelWithMeasures("a.pbix", models.Measure{Name: "Revenue", DAXFormula: "SUM(Sales[Amount])"}),
		modelWithMeasures("b.pbix", models.Measure{Name: "Total Sales", DAXFormula: "SUM(Sales[Amount])"}),
	}, testCosts(), zap.NewNop())

	dups := a.IdentifyDuplicateLogic()
	require.Len(t, dups, 1)
	assert.Equal(t, "Revenue (and 1 others)", dups[0].MeasureName)
	assert.Contains(t, dups[0].Description, "Same logic with different names")
}

func TestIdentifyDuplicateLogicNoDuplicates(t *testing.T) {
	a := New([]*models.SemanticModel{
		modelWithMeasures("a.pbix", models.Measure{Name: "Revenue", DAXFormula: "SUM(Sales[Amount])"}),
		modelWithMeasures("b.pbix", models.Measure{Name: "Units", DAXFormula: "SUM(Sales[Qty])"}),
	}, testCosts(), zap.NewNop())

	assert.Empty(t, a.IdentifyDuplicateLogic())
}

func TestCalculateSemanticDebt(t *testing.T) {
	a := New([]*models.SemanticModel{
		modelWithMeasures("a.pbix",
			models.Measure{Name: "Revenue", DAXFormula: "SUM(Sales[Amount])"},
			models.Measure{Name: "Margin", DAXFormula: "DIVIDE([Profit], [Revenue])"}),
		modelWithMeasures("b.pbix",
			models.Measure{Name: "Revenue", DAXFormula: "SUMX(Sales, Sales[Qty] * Sales[Price])"},
			models.Measure{Name: "Gross Margin", DAXFormula: "DIVIDE([Profit], [Revenue])"}),
	}, testCosts(), zap.NewNop())

	report := a.CalculateSemanticDebt()
	assert.Equal(t, 1, report.TotalConflicts)
	assert.Equal(t, 1, report.TotalDuplications)
	assert.Equal(t, 60000.0, report.TotalCost)
	assert.Equal(t, 1, report.ConflictsBySeverity[models.ConflictSeverityMedium])
	assert.Contains(t, report.Message, "$60000")
}

func TestCalculateSemanticDebtEmptyBatch(t *testing.T) {
	a := New(nil, testCosts(), zap.NewNop())
	report := a.CalculateSemanticDebt()
	assert.Zero(t, report.TotalConflicts)
	assert.Zero(t, report.TotalDuplications)
	assert.Equal(t, 0.0, report.TotalCost)
}

func TestSuggestCanonicalDefinitions(t *testing.T) {
	a := New([]*models.SemanticModel{
		modelWithMeasures("a.pbix", models.Measure{Name: "Revenue", DAXFormula: "SUM(Sales[Amount])"}),
		modelWithMeasures("b.pbix", models.Measure{Name: "Revenue", DAXFormula: "SUM(Sales[Amount])"}),
		modelWithMeasures("c.pbix", models.Measure{Name: "Revenue", DAXFormula: "SUMX(Sales, Sales[Qty] * Sales[Price])"}),
	}, testCosts(), zap.NewNop())

	canonical := a.SuggestCanonicalDefinitions()
	require.Len(t, canonical, 1)

	entry := canonical[0]
	assert.Equal(t, "revenue", entry.Name)
	assert.Equal(t, "sum(sales[amount])", entry.SuggestedDefinition)
	assert.InDelta(t, 2.0/3.0, entry.Confidence, 0.001)
	assert.ElementsMatch(t, []string{"a.pbix", "b.pbix"}, entry.DashboardsUsing)
	require.Len(t, entry.AlternativeDefinitions, 1)
	assert.Contains(t, entry.AlternativeDefinitions["c.pbix"], "SUMX")
}

func TestSuggestCanonicalDefinitionsSingleUseSkipped(t *testing.T) {
	a := New([]*models.SemanticModel{
		modelWithMeasures("a.pbix", models.Measure{Name: "Revenue", DAXFormula: "SUM(Sales[Amount])"}),
	}, testCosts(), zap.NewNop())

	assert.Empty(t, a.SuggestCanonicalDefinitions())
}

func TestNormalizeFormula(t *testing.T) {
	assert.Equal(t, normalizeFormula("SUM( Sales[Amount] )"), normalizeFormula("sum(sales[amount])"))
	assert.NotEqual(t, normalizeFormula("SUM(Sales[Amount])"), normalizeFormula("SUM(Sales[Qty])"))
}
