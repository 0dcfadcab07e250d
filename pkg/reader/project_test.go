package reader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cloudbadal007/powerbi-ontology-extractor/pkg/apperrors"
	"github.com/cloudbadal007/powerbi-ontology-extractor/pkg/models"
)

func writeFragment(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestProjectSourceParsesTableColumnsAndMeasures(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, "definition/tables/Shipment.tmdl", `
table Shipment
	column ShipmentID
		dataType: int64
		isKey
	column Temperature
		dataType: double
	column Status
	measure AvgTemperature = AVERAGE(Shipment[Temperature])
`)

	src, err := Open(root, Options{}, zap.NewNop())
	require.NoError(t, err)
	defer src.Close()

	raw, err := src.ToRawModel()
	require.NoError(t, err)

	require.Len(t, raw.Tables, 1)
	table := raw.Tables[0]
	assert.Equal(t, "Shipment", table.Name)

	require.Len(t, table.Columns, 3)
	assert.Equal(t, "ShipmentID", table.Columns[0].Name)
	assert.Equal(t, "int64", table.Columns[0].DataType)
	assert.True(t, table.Columns[0].IsKey)
	assert.Equal(t, "double", table.Columns[1].DataType)
	// Absent dataType annotation defaults to string.
	assert.Equal(t, "string", table.Columns[2].DataType)

	require.Len(t, table.Measures, 1)
	assert.Equal(t, "AvgTemperature", table.Measures[0].Name)
	assert.Equal(t, "AVERAGE(Shipment[Temperature])", table.Measures[0].Expression)
}

func TestProjectSourceMergesTableAcrossFragments(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, "a/Customer.tmdl", `
table Customer
	column CustomerID
		dataType: int64
	column Name
`)
	writeFragment(t, root, "b/CustomerExtra.tmdl", `
table Customer
	column Name
		dataType: string
	column Email
`)

	src := newProjectSource(root, zap.NewNop())
	raw, err := src.ToRawModel()
	require.NoError(t, err)

	require.Len(t, raw.Tables, 1)
	table := raw.Tables[0]
	// Union of columns from both fragments, no duplicates, first wins.
	require.Len(t, table.Columns, 3)
	names := []string{table.Columns[0].Name, table.Columns[1].Name, table.Columns[2].Name}
	assert.Equal(t, []string{"CustomerID", "Name", "Email"}, names)
}

func TestProjectSourceDirectoryNameFallback(t *testing.T) {
	root := t.TempDir()
	// No explicit table declaration; fragment lives directly under "tables".
	writeFragment(t, root, "tables/Orders.tmdl", `
	column OrderID
		dataType: int64
	column Total
		dataType: double
`)

	src := newProjectSource(root, zap.NewNop())
	raw, err := src.ToRawModel()
	require.NoError(t, err)

	require.Len(t, raw.Tables, 1)
	assert.Equal(t, "Orders", raw.Tables[0].Name)
	assert.Len(t, raw.Tables[0].Columns, 2)
}

func TestProjectSourceRelationshipDefaults(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, "relationships.tmdl", `
relationship shipment-customer
	fromColumn: Shipment[CustomerID]
	toColumn: Customer[CustomerID]
`)
	writeFragment(t, root, "tables/Shipment.tmdl", "table Shipment\n\tcolumn CustomerID\n")

	src := newProjectSource(root, zap.NewNop())
	raw, err := src.ToRawModel()
	require.NoError(t, err)

	require.Len(t, raw.Relationships, 1)
	rel := raw.Relationships[0]
	assert.Equal(t, "Shipment", rel.FromTable)
	assert.Equal(t, "CustomerID", rel.FromColumn)
	assert.Equal(t, "Customer", rel.ToTable)
	assert.Equal(t, "CustomerID", rel.ToColumn)
	// The TMDL grammar carries no cardinality here: documented defaults apply.
	assert.Equal(t, models.RawCardinalityMany, rel.FromCardinality)
	assert.Equal(t, models.RawCardinalityOne, rel.ToCardinality)
	assert.Equal(t, models.CrossFilterSingleDirection, rel.CrossFilterBehavior)
	assert.True(t, rel.IsActive)
}

func TestProjectSourceQuotedIdentifiers(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, "tables/details.tmdl", `
table 'Order Details'
	column Quantity
		dataType: int64
`)

	src := newProjectSource(root, zap.NewNop())
	raw, err := src.ToRawModel()
	require.NoError(t, err)

	require.Len(t, raw.Tables, 1)
	assert.Equal(t, "Order Details", raw.Tables[0].Name)
}

func TestProjectSourceNoFragments(t *testing.T) {
	src := newProjectSource(t.TempDir(), zap.NewNop())
	_, err := src.ToRawModel()
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProjectSourceCloseNeverDeletes(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, "tables/T.tmdl", "table T\n\tcolumn A\n")

	src := newProjectSource(root, zap.NewNop())
	_, err := src.ToRawModel()
	require.NoError(t, err)
	require.NoError(t, src.Close())

	// The caller-owned project directory must survive Close.
	_, err = os.Stat(filepath.Join(root, "tables", "T.tmdl"))
	assert.NoError(t, err)
}

func TestOpenPbipDescriptorUsesParentDirectory(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, "project.pbip", "{}")
	writeFragment(t, root, "tables/T.tmdl", "table T\n\tcolumn A\n")

	src, err := Open(filepath.Join(root, "project.pbip"), Options{}, zap.NewNop())
	require.NoError(t, err)
	defer src.Close()

	raw, err := src.ToRawModel()
	require.NoError(t, err)
	require.Len(t, raw.Tables, 1)
	assert.Equal(t, "T", raw.Tables[0].Name)
}

func TestOpenMissingPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.pbix"), Options{}, zap.NewNop())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCleanIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Customer  ", "Customer"},
		{"'Order Details'", "Order Details"},
		{`"Sales"`, "Sales"},
		{"Shipment { lineageTag: abc }", "Shipment"},
		{"'Dates' {tag}", "Dates"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanIdentifier(tt.in), "input %q", tt.in)
	}
}
