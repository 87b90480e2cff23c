// Package query builds SQL statements from projection maps with
// automatic parameter numbering.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap binds logical field names to aliased column references
// for one table, fixing the SELECT list and the WHERE/ORDER BY column
// resolution.
type ProjectionMap struct {
	schema   string
	table    string
	alias    string
	columns  map[string]string
	selected []string
}

// NewProjectionMap creates a ProjectionMap for schema.table under the
// given alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:  schema,
		table:   table,
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project maps a database column to a logical field name and adds it to
// the SELECT list.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	qualified := p.alias + "." + column
	p.columns[field] = qualified
	p.selected = append(p.selected, qualified)
	return p
}

// Table returns the aliased table reference (schema.table alias).
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Column resolves a logical field name to its qualified column.
// Unmapped names pass through unchanged.
func (p *ProjectionMap) Column(field string) string {
	if col, ok := p.columns[field]; ok {
		return col
	}
	return field
}

// Columns returns the SELECT list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.selected, ", ")
}
