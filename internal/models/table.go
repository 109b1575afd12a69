package models

import (
	"math"
	"time"
)

// ColumnType identifies the declared type of a table column.
type ColumnType string

const (
	ColumnNumeric     ColumnType = "numeric"
	ColumnCategorical ColumnType = "categorical"
	ColumnDatetime    ColumnType = "datetime"
)

// Column is a single typed column of a rectangular table. Values holds one
// entry per row; nil marks a null cell. Numeric cells are float64 (the JSON
// decoder produces float64 for all numbers), categorical cells are strings
// and datetime cells are either time.Time or RFC3339 strings.
type Column struct {
	Name   string        `json:"name"`
	Type   ColumnType    `json:"type"`
	Unit   string        `json:"unit,omitempty"`
	Values []interface{} `json:"values"`
}

// Float64s returns the non-null numeric values together with a parallel slice
// of their row indexes and the fraction of rows that were non-null.
func (c *Column) Float64s() ([]float64, []int, float64) {
	values := make([]float64, 0, len(c.Values))
	rows := make([]int, 0, len(c.Values))
	for i, v := range c.Values {
		f, ok := toFloat(v)
		if !ok {
			continue
		}
		values = append(values, f)
		rows = append(rows, i)
	}
	completeness := 0.0
	if len(c.Values) > 0 {
		completeness = float64(len(values)) / float64(len(c.Values))
	}
	return values, rows, completeness
}

// Labels returns string labels per row; null cells are returned as "".
func (c *Column) Labels() []string {
	labels := make([]string, len(c.Values))
	for i, v := range c.Values {
		if s, ok := v.(string); ok {
			labels[i] = s
		}
	}
	return labels
}

func toFloat(v interface{}) (float64, bool) {
	switch value := v.(type) {
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return 0, false
		}
		return value, true
	case float32:
		return float64(value), true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	default:
		return 0, false
	}
}

// Table is an in-memory rectangular dataset handed over by the ingestion
// layer. TimeColumn and GroupColumn name optional categorical/datetime
// columns used for ordering and group comparison.
type Table struct {
	ID          string   `json:"id"`
	Columns     []Column `json:"columns"`
	TimeColumn  string   `json:"time_column,omitempty"`
	GroupColumn string   `json:"group_column,omitempty"`
}

// Column returns the named column or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// NumericColumns returns pointers to all columns declared numeric, in table
// order.
func (t *Table) NumericColumns() []*Column {
	var cols []*Column
	for i := range t.Columns {
		if t.Columns[i].Type == ColumnNumeric {
			cols = append(cols, &t.Columns[i])
		}
	}
	return cols
}

// RowCount returns the number of rows of the longest column.
func (t *Table) RowCount() int {
	rows := 0
	for i := range t.Columns {
		if len(t.Columns[i].Values) > rows {
			rows = len(t.Columns[i].Values)
		}
	}
	return rows
}

// MetricSeries is a named numeric sequence extracted from one table column.
// It is immutable once built and owned by the analyzer call that produced it.
type MetricSeries struct {
	Name         string      `json:"name"`
	TableID      string      `json:"table_id"`
	Values       []float64   `json:"values"`
	Rows         []int       `json:"rows"`
	Timestamps   []time.Time `json:"timestamps,omitempty"`
	Groups       []string    `json:"groups,omitempty"`
	Completeness float64     `json:"completeness"`
}
