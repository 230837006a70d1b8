package repository

import (
	"reflect"
	"testing"
)

func TestNormalizeOrder(t *testing.T) {
	cases := map[string]string{
		"asc":  OrderAsc,
		"desc": OrderDesc,
		"ASC":  OrderDesc,
		"":     OrderDesc,
		"up":   OrderDesc,
	}
	for in, want := range cases {
		if got := normalizeOrder(in); got != want {
			t.Errorf("normalizeOrder(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveSortFallsBack(t *testing.T) {
	if got := resolveSort(sampleSortColumns, "metric_a", "timestamp"); got != "metric_a" {
		t.Errorf("known key resolved to %q", got)
	}
	for _, key := range []string{"", "password", "id; DROP TABLE samples", "Metric_A"} {
		if got := resolveSort(sampleSortColumns, key, "timestamp"); got != "timestamp" {
			t.Errorf("resolveSort(%q) = %q, want default", key, got)
		}
	}
}

func TestNormalizePage(t *testing.T) {
	cases := []struct{ page, per, wantPage, wantPer int }{
		{0, 0, 1, DefaultPerPage},
		{-3, 5, 1, 5},
		{2, 500, 2, MaxPerPage},
		{7, 10, 7, 10},
	}
	for _, tc := range cases {
		p, pp := normalizePage(tc.page, tc.per)
		if p != tc.wantPage || pp != tc.wantPer {
			t.Errorf("normalizePage(%d,%d) = %d,%d want %d,%d", tc.page, tc.per, p, pp, tc.wantPage, tc.wantPer)
		}
	}
}

func TestWhereBuilder(t *testing.T) {
	var w whereBuilder
	if w.clause() != "" {
		t.Fatalf("empty builder should produce no clause")
	}
	w.eq("line_name", "")
	w.eq("line_name", "A")
	w.contains("vendor", "50%_off!")
	if got, want := w.clause(), " WHERE line_name = ? AND INSTR(vendor, ?) > 0"; got != want {
		t.Errorf("clause = %q, want %q", got, want)
	}
	if want := []any{"A", "50%_off!"}; !reflect.DeepEqual(w.args, want) {
		t.Errorf("args = %#v, want %#v", w.args, want)
	}
}

func TestInClause(t *testing.T) {
	sql, args := inClause([]uint64{3, 1, 2})
	if sql != "(?, ?, ?)" {
		t.Errorf("sql = %q", sql)
	}
	if !reflect.DeepEqual(args, []any{uint64(3), uint64(1), uint64(2)}) {
		t.Errorf("args = %#v", args)
	}
}
