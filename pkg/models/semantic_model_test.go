package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeasureDependencies(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		want    []string
	}{
		{
			name:    "simple reference",
			formula: "SUM(Sales[Amount])",
			want:    []string{"Sales.Amount"},
		},
		{
			name:    "quoted table name",
			formula: "SUM('Order Details'[Quantity])",
			want:    []string{"Order Details.Quantity"},
		},
		{
			name:    "deduplicated order preserving",
			formula: "DIVIDE(SUM(Sales[Amount]), COUNT(Customers[ID])) + SUM(Sales[Amount])",
			want:    []string{"Sales.Amount", "Customers.ID"},
		},
		{
			name:    "nested parentheses and string literals",
			formula: `IF(Shipment[Temperature] > 8, "OUT_OF_RANGE [alert]", CALCULATE(SUM(Shipment[Temperature])))`,
			want:    []string{"Shipment.Temperature"},
		},
		{
			name:    "no references",
			formula: "1 + 1",
			want:    []string{},
		},
		{
			name:    "empty formula",
			formula: "",
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Measure{Name: "test", DAXFormula: tt.formula}
			assert.Equal(t, tt.want, m.Dependencies())
		})
	}
}

// A second scan of the same measure must yield the same tokens: the
// dependency list is derived from the formula on every call, not cached.
func TestMeasureDependenciesRestartable(t *testing.T) {
	m := Measure{Name: "Total", DAXFormula: "SUM(Sales[Amount]) + SUM(Tax[Amount])"}
	first := m.Dependencies()
	second := m.Dependencies()
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"Sales.Amount", "Tax.Amount"}, second)
}

func TestOntologyAddBusinessRuleAppendOnly(t *testing.T) {
	onto := &Ontology{Name: "Test_Ontology"}
	onto.AddBusinessRule(BusinessRule{Name: "rule1", Entity: "Shipment"})
	onto.AddBusinessRule(BusinessRule{Name: "rule2", Entity: "Customer"})

	assert.Len(t, onto.BusinessRules, 2)
	assert.Equal(t, "rule1", onto.BusinessRules[0].Name)
	assert.Equal(t, "rule2", onto.BusinessRules[1].Name)
}

func TestEntityPropertyLookup(t *testing.T) {
	entity := Entity{
		Name: "Customer",
		Properties: []Property{
			{Name: "CustomerID", DataType: DataTypeInteger},
			{Name: "Name", DataType: DataTypeString},
		},
	}

	assert.NotNil(t, entity.Property("CustomerID"))
	assert.Equal(t, DataTypeInteger, entity.Property("CustomerID").DataType)
	assert.Nil(t, entity.Property("Missing"))
}
