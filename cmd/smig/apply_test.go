package main

import (
	"fmt"
	"testing"

	"github.com/mkarpenko/smig/internal/migrations"
	"github.com/mkarpenko/smig/internal/schema"
)

func TestErrorKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("apply: %w", schema.ErrTableMissing), "table_missing"},
		{fmt.Errorf("open: %w", schema.ErrStorageUnavailable), "storage_unavailable"},
		{fmt.Errorf("boom"), "apply_failed"},
	}
	for _, tc := range cases {
		if got := errorKind(tc.err); got != tc.want {
			t.Errorf("errorKind(%v): got %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestResolvePlansBuiltin(t *testing.T) {
	plans := resolvePlans(nil, true)
	if len(plans) != len(migrations.All()) {
		t.Fatalf("expected %d plans, got %d", len(migrations.All()), len(plans))
	}
	if plans[0].Table != "users" {
		t.Errorf("unexpected table: %q", plans[0].Table)
	}
}

func TestColumnIndex(t *testing.T) {
	p := schema.Plan{
		Table: "users",
		Columns: []schema.Column{
			{Name: "first_name", Type: "TEXT"},
			{Name: "last_name", Type: "TEXT"},
		},
	}
	if i := columnIndex(p, "last_name"); i != 1 {
		t.Errorf("columnIndex(last_name) = %d", i)
	}
	if i := columnIndex(p, "nope"); i != -1 {
		t.Errorf("columnIndex(nope) = %d", i)
	}
}
