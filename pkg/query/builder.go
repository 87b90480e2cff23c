package query

import (
	"fmt"
	"reflect"
	"strings"
)

// SortField is one ORDER BY column, addressed by logical field name.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSortFields parses the compact sort form "name,-createdAt" into
// sort fields; a leading "-" marks a descending column. Empty input
// yields nil.
func ParseSortFields(s string) []SortField {
	if s == "" {
		return nil
	}

	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		field := SortField{Field: part}
		if after, ok := strings.CutPrefix(part, "-"); ok {
			field = SortField{Field: after, Descending: true}
		}
		fields = append(fields, field)
	}

	return fields
}

type condition struct {
	clause string
	args   []any
}

// Builder accumulates WHERE conditions and ordering against a
// projection and renders SELECT variants with sequential $n parameters.
type Builder struct {
	projection *ProjectionMap
	conditions []condition
	orderBy    []SortField
	defaults   []SortField
}

// NewBuilder creates a Builder over projection, sorting by defaultSort
// unless OrderByFields overrides it.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{
		projection: projection,
		defaults:   defaultSort,
	}
}

// WhereEquals adds an equality condition. Nil values are skipped.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	return b.where(b.projection.Column(field)+" = $%d", value)
}

// WhereExpr adds a raw condition with no bound parameters.
func (b *Builder) WhereExpr(clause string) *Builder {
	return b.where(clause)
}

// WhereIn adds an IN condition. Empty value sets are skipped.
func (b *Builder) WhereIn(field string, values []any) *Builder {
	if len(values) == 0 {
		return b
	}

	placeholders := strings.TrimSuffix(strings.Repeat("$%d, ", len(values)), ", ")
	clause := fmt.Sprintf("%s IN (%s)", b.projection.Column(field), placeholders)
	return b.where(clause, values...)
}

// WhereSearch adds a case-insensitive substring match ORed across the
// given fields. Nil or empty search terms are skipped.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}

	clauses := make([]string, len(fields))
	args := make([]any, len(fields))
	for i, field := range fields {
		clauses[i] = b.projection.Column(field) + " ILIKE $%d"
		args[i] = "%" + *search + "%"
	}

	return b.where("("+strings.Join(clauses, " OR ")+")", args...)
}

// OrderByFields replaces the default sort order.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.orderBy = fields
	return b
}

// Build renders the full SELECT.
func (b *Builder) Build() (string, []any) {
	where, args := b.renderWhere()
	sql := fmt.Sprintf("SELECT %s FROM %s%s%s",
		b.projection.Columns(), b.projection.Table(), where, b.renderOrderBy())
	return sql, args
}

// BuildCount renders a COUNT(*) over the current conditions.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.renderWhere()
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", b.projection.Table(), where), args
}

// BuildPage renders the SELECT with LIMIT/OFFSET for the given page.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	where, args := b.renderWhere()
	sql := fmt.Sprintf("SELECT %s FROM %s%s%s LIMIT %d OFFSET %d",
		b.projection.Columns(), b.projection.Table(), where, b.renderOrderBy(),
		pageSize, (page-1)*pageSize)
	return sql, args
}

// BuildSingle renders a lookup by a single field, ignoring accumulated
// conditions.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		b.projection.Columns(), b.projection.Table(), b.projection.Column(idField))
	return sql, []any{id}
}

// BuildSingleOrNull renders the SELECT limited to one row.
func (b *Builder) BuildSingleOrNull() (string, []any) {
	where, args := b.renderWhere()
	sql := fmt.Sprintf("SELECT %s FROM %s%s LIMIT 1",
		b.projection.Columns(), b.projection.Table(), where)
	return sql, args
}

func (b *Builder) where(clause string, args ...any) *Builder {
	b.conditions = append(b.conditions, condition{clause: clause, args: args})
	return b
}

// renderWhere joins the conditions with AND, numbering each $%d
// placeholder in order of appearance.
func (b *Builder) renderWhere() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	param := 1
	clauses := make([]string, 0, len(b.conditions))
	args := make([]any, 0)

	for _, cond := range b.conditions {
		clause := cond.clause
		for _, arg := range cond.args {
			clause = strings.Replace(clause, "$%d", fmt.Sprintf("$%d", param), 1)
			args = append(args, arg)
			param++
		}
		clauses = append(clauses, clause)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (b *Builder) renderOrderBy() string {
	fields := b.orderBy
	if len(fields) == 0 {
		fields = b.defaults
	}
	if len(fields) == 0 {
		return ""
	}

	parts := make([]string, len(fields))
	for i, f := range fields {
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		parts[i] = b.projection.Column(f.Field) + " " + dir
	}

	return " ORDER BY " + strings.Join(parts, ", ")
}

func isNil(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}

	return false
}
