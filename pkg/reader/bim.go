package reader

import (
	"encoding/json"
	"fmt"

	"github.com/cloudbadal007/powerbi-ontology-extractor/pkg/apperrors"
	"github.com/cloudbadal007/powerbi-ontology-extractor/pkg/jsonutil"
	"github.com/cloudbadal007/powerbi-ontology-extractor/pkg/models"
)

// model.bim document shapes. Different Power BI schema versions nest the
// model under a "model" key or put tables at the top level; both are
// accepted.
type bimDocument struct {
	Name          string            `json:"name"`
	Model         *bimModelBody     `json:"model"`
	Tables        []bimTable        `json:"tables"`
	Relationships []bimRelationship `json:"relationships"`
}

type bimModelBody struct {
	Name          string            `json:"name"`
	Tables        []bimTable        `json:"tables"`
	Relationships []bimRelationship `json:"relationships"`
}

type bimTable struct {
	Name     string       `json:"name"`
	Columns  []bimColumn  `json:"columns"`
	Measures []bimMeasure `json:"measures"`
}

type bimColumn struct {
	Name       string `json:"name"`
	DataType   string `json:"dataType"`
	IsKey      bool   `json:"isKey"`
	IsUnique   bool   `json:"isUnique"`
	IsNullable *bool  `json:"isNullable"`
}

type bimMeasure struct {
	Name        string          `json:"name"`
	Expression  json.RawMessage `json:"expression"` // string or array of lines
	Description string          `json:"description"`
}

type bimRelationship struct {
	Name                string `json:"name"`
	FromTable           string `json:"fromTable"`
	FromColumn          string `json:"fromColumn"`
	ToTable             string `json:"toTable"`
	ToColumn            string `json:"toColumn"`
	FromCardinality     string `json:"fromCardinality"`
	ToCardinality       string `json:"toCardinality"`
	CrossFilterBehavior string `json:"crossFilteringBehavior"`
	IsActive            *bool  `json:"isActive"`
}

// decodeBIM parses a model.bim JSON document into a RawModel. Malformed
// JSON surfaces as ErrInvalidFormat; no partial recovery is attempted.
func decodeBIM(data []byte) (*models.RawModel, error) {
	var doc bimDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("model description is not well-formed JSON (%v): %w", err, apperrors.ErrInvalidFormat)
	}

	name := doc.Name
	tables := doc.Tables
	relationships := doc.Relationships
	if doc.Model != nil {
		if doc.Model.Name != "" {
			name = doc.Model.Name
		}
		tables = doc.Model.Tables
		relationships = doc.Model.Relationships
	}

	raw := &models.RawModel{
		Name:          name,
		Tables:        make([]models.RawTable, 0, len(tables)),
		Relationships: make([]models.RawRelationship, 0, len(relationships)),
	}

	for _, t := range tables {
		table := models.RawTable{
			Name:     t.Name,
			Columns:  make([]models.RawColumn, 0, len(t.Columns)),
			Measures: make([]models.RawMeasure, 0, len(t.Measures)),
		}
		for _, c := range t.Columns {
			dataType := c.DataType
			if dataType == "" {
				dataType = "string"
			}
			// Columns are nullable unless the model says otherwise.
			nullable := true
			if c.IsNullable != nil {
				nullable = *c.IsNullable
			}
			table.Columns = append(table.Columns, models.RawColumn{
				Name:       c.Name,
				DataType:   dataType,
				IsKey:      c.IsKey,
				IsUnique:   c.IsUnique,
				IsNullable: nullable,
			})
		}
		for _, m := range t.Measures {
			table.Measures = append(table.Measures, models.RawMeasure{
				Name:        m.Name,
				Expression:  jsonutil.FlexibleString(m.Expression),
				Description: m.Description,
			})
		}
		raw.Tables = append(raw.Tables, table)
	}

	for _, r := range relationships {
		raw.Relationships = append(raw.Relationships, normalizeRelationship(r))
	}

	return raw, nil
}

// normalizeRelationship applies the documented defaults for fields the
// source format does not always carry: many-to-one cardinality with
// single-direction cross-filtering, active unless marked otherwise.
func normalizeRelationship(r bimRelationship) models.RawRelationship {
	rel := models.RawRelationship{
		Name:                r.Name,
		FromTable:           r.FromTable,
		FromColumn:          r.FromColumn,
		ToTable:             r.ToTable,
		ToColumn:            r.ToColumn,
		FromCardinality:     r.FromCardinality,
		ToCardinality:       r.ToCardinality,
		CrossFilterBehavior: r.CrossFilterBehavior,
		IsActive:            true,
	}
	if rel.FromCardinality == "" {
		rel.FromCardinality = models.RawCardinalityMany
	}
	if rel.ToCardinality == "" {
		rel.ToCardinality = models.RawCardinalityOne
	}
	if rel.CrossFilterBehavior == "" {
		rel.CrossFilterBehavior = models.CrossFilterSingleDirection
	}
	if r.IsActive != nil {
		rel.IsActive = *r.IsActive
	}
	if rel.Name == "" {
		rel.Name = rel.FromTable + "_" + rel.ToTable
	}
	return rel
}
