package query

import (
	"reflect"
	"testing"
)

func jobProjection() *ProjectionMap {
	return NewProjectionMap("public", "jobs", "j").
		Project("id", "id").
		Project("status", "status").
		Project("owner_key_hash", "ownerKeyHash").
		Project("created_at", "createdAt")
}

func TestBuildNoConditions(t *testing.T) {
	b := NewBuilder(jobProjection(), SortField{Field: "createdAt", Descending: true})

	sql, args := b.Build()

	want := "SELECT j.id, j.status, j.owner_key_hash, j.created_at FROM public.jobs j ORDER BY j.created_at DESC"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestBuildParameterNumbering(t *testing.T) {
	b := NewBuilder(jobProjection()).
		WhereEquals("ownerKeyHash", "abc").
		WhereEquals("status", "pending")

	sql, args := b.Build()

	want := "SELECT j.id, j.status, j.owner_key_hash, j.created_at FROM public.jobs j" +
		" WHERE j.owner_key_hash = $1 AND j.status = $2"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"abc", "pending"}) {
		t.Errorf("args = %v", args)
	}
}

func TestWhereExprMixesWithParams(t *testing.T) {
	b := NewBuilder(jobProjection()).
		WhereEquals("ownerKeyHash", "abc").
		WhereExpr("j.ttl_expires_at > now()").
		WhereEquals("status", "completed")

	sql, args := b.BuildCount()

	want := "SELECT COUNT(*) FROM public.jobs j" +
		" WHERE j.owner_key_hash = $1 AND j.ttl_expires_at > now() AND j.status = $2"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"abc", "completed"}) {
		t.Errorf("args = %v", args)
	}
}

func TestWhereEqualsNilSkipped(t *testing.T) {
	var status *string
	b := NewBuilder(jobProjection()).WhereEquals("status", status)

	sql, args := b.Build()

	if sql != "SELECT j.id, j.status, j.owner_key_hash, j.created_at FROM public.jobs j" {
		t.Errorf("sql = %q, want no WHERE clause", sql)
	}
	if len(args) != 0 {
		t.Errorf("args = %v", args)
	}
}

func TestWhereIn(t *testing.T) {
	b := NewBuilder(jobProjection()).
		WhereIn("status", []any{"completed", "failed"})

	sql, args := b.BuildCount()

	want := "SELECT COUNT(*) FROM public.jobs j WHERE j.status IN ($1, $2)"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"completed", "failed"}) {
		t.Errorf("args = %v", args)
	}
}

func TestBuildPage(t *testing.T) {
	b := NewBuilder(jobProjection(), SortField{Field: "createdAt", Descending: true}).
		WhereEquals("ownerKeyHash", "abc")

	sql, args := b.BuildPage(3, 20)

	want := "SELECT j.id, j.status, j.owner_key_hash, j.created_at FROM public.jobs j" +
		" WHERE j.owner_key_hash = $1 ORDER BY j.created_at DESC LIMIT 20 OFFSET 40"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"abc"}) {
		t.Errorf("args = %v", args)
	}
}

func TestBuildSingle(t *testing.T) {
	sql, args := NewBuilder(jobProjection()).BuildSingle("id", "abc-123")

	want := "SELECT j.id, j.status, j.owner_key_hash, j.created_at FROM public.jobs j WHERE j.id = $1"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"abc-123"}) {
		t.Errorf("args = %v", args)
	}
}

func TestWhereSearch(t *testing.T) {
	search := "report"
	b := NewBuilder(jobProjection()).WhereSearch(&search, "status", "ownerKeyHash")

	sql, args := b.BuildCount()

	want := "SELECT COUNT(*) FROM public.jobs j WHERE (j.status ILIKE $1 OR j.owner_key_hash ILIKE $2)"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"%report%", "%report%"}) {
		t.Errorf("args = %v", args)
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []SortField
	}{
		{"empty", "", nil},
		{"single ascending", "name", []SortField{{Field: "name"}}},
		{"mixed directions", "name,-createdAt", []SortField{
			{Field: "name"},
			{Field: "createdAt", Descending: true},
		}},
		{"whitespace and empties", " name , ,-status", []SortField{
			{Field: "name"},
			{Field: "status", Descending: true},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSortFields(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSortFields(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestOrderByOverridesDefault(t *testing.T) {
	b := NewBuilder(jobProjection(), SortField{Field: "createdAt", Descending: true}).
		OrderByFields([]SortField{{Field: "status"}})

	sql, _ := b.Build()

	want := "SELECT j.id, j.status, j.owner_key_hash, j.created_at FROM public.jobs j ORDER BY j.status ASC"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
}
