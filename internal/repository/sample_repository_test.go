package repository

import (
	"context"
	"errors"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/iliyamo/line-monitor/internal/model"
	"github.com/iliyamo/line-monitor/internal/testutil"
)

func strp(s string) *string    { return &s }
func fltp(f float64) *float64 { return &f }

var baseTime = time.Date(2025, 6, 27, 14, 0, 0, 0, time.UTC)

// seedSamples inserts n samples one minute apart, alternating between two
// lines, with metric_a = 10*(i+1).
func seedSamples(t *testing.T, repo *SampleRepo, n int) []model.Sample {
	t.Helper()
	out := make([]model.Sample, 0, n)
	for i := 0; i < n; i++ {
		line := "Line A"
		if i%2 == 1 {
			line = "Line B"
		}
		s := model.Sample{
			LineName:  line,
			Timestamp: baseTime.Add(time.Duration(i) * time.Minute),
			MetricA:   fltp(float64(10 * (i + 1))),
			MetricB:   fltp(float64(i)),
			Operator:  strp("op"),
		}
		if err := repo.Create(context.Background(), &s); err != nil {
			t.Fatalf("create sample %d: %v", i, err)
		}
		out = append(out, s)
	}
	return out
}

func ids(samples []model.Sample) []uint64 {
	out := make([]uint64, len(samples))
	for i, s := range samples {
		out[i] = s.ID
	}
	return out
}

func TestSampleRepoCreateDefaultsTimestamp(t *testing.T) {
	repo := NewSampleRepo(testutil.OpenDB(t))
	before := time.Now().UTC().Add(-time.Second)
	s := model.Sample{LineName: "Line A"}
	if err := repo.Create(context.Background(), &s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.ID == 0 {
		t.Fatal("expected generated id")
	}
	got, _, err := repo.List(context.Background(), SampleQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Timestamp.Before(before) {
		t.Errorf("timestamp %v not defaulted to now", got[0].Timestamp)
	}
	if got[0].ProductName != nil || got[0].MetricA != nil {
		t.Errorf("optional fields should stay NULL: %+v", got[0])
	}
}

func TestSampleRepoListPagination(t *testing.T) {
	repo := NewSampleRepo(testutil.OpenDB(t))
	seeded := seedSamples(t, repo, 7)
	ctx := context.Background()

	for page := 1; page <= 4; page++ {
		items, p, err := repo.List(ctx, SampleQuery{Page: page, PerPage: 3})
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		wantLen := 3
		switch page {
		case 3:
			wantLen = 1
		case 4:
			wantLen = 0
		}
		if len(items) != wantLen {
			t.Errorf("page %d: len = %d, want %d", page, len(items), wantLen)
		}
		if p.TotalItems != 7 || p.TotalPages != 3 || p.CurrentPage != page || p.PerPage != 3 {
			t.Errorf("page %d: pagination = %+v", page, p)
		}
		if p.HasNext != (page < 3) || p.HasPrev != (page > 1) {
			t.Errorf("page %d: has_next/has_prev = %v/%v", page, p.HasNext, p.HasPrev)
		}
	}

	// A page whose offset would not fit in an int is still just past the end.
	for _, perPage := range []int{1, MaxPerPage} {
		items, p, err := repo.List(ctx, SampleQuery{Page: math.MaxInt, PerPage: perPage})
		if err != nil {
			t.Fatalf("huge page, per_page %d: %v", perPage, err)
		}
		if items == nil || len(items) != 0 {
			t.Errorf("huge page, per_page %d: items = %v, want empty", perPage, ids(items))
		}
		if p.CurrentPage != math.MaxInt || p.HasNext || !p.HasPrev || p.TotalItems != 7 {
			t.Errorf("huge page, per_page %d: pagination = %+v", perPage, p)
		}
	}

	// Default order is newest timestamp first.
	items, _, err := repo.List(ctx, SampleQuery{Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if items[0].ID != seeded[6].ID || items[1].ID != seeded[5].ID {
		t.Errorf("default order = %v, want newest first", ids(items))
	}
}

func TestSampleRepoListEmpty(t *testing.T) {
	repo := NewSampleRepo(testutil.OpenDB(t))
	items, p, err := repo.List(context.Background(), SampleQuery{Page: 1, PerPage: 20})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("items = %#v, want empty non-nil slice", items)
	}
	want := model.Pagination{TotalItems: 0, TotalPages: 0, CurrentPage: 1, PerPage: 20}
	if p != want {
		t.Errorf("pagination = %+v, want %+v", p, want)
	}
}

func TestSampleRepoListSorting(t *testing.T) {
	repo := NewSampleRepo(testutil.OpenDB(t))
	seeded := seedSamples(t, repo, 4)
	ctx := context.Background()

	asc, _, err := repo.List(ctx, SampleQuery{SortBy: "metric_a", Order: "asc"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i := 1; i < len(asc); i++ {
		if *asc[i-1].MetricA > *asc[i].MetricA {
			t.Fatalf("not ascending by metric_a: %v", ids(asc))
		}
	}

	// Anything other than exactly "asc" sorts descending.
	for _, order := range []string{"desc", "ASC", "", "sideways"} {
		got, _, err := repo.List(ctx, SampleQuery{SortBy: "metric_a", Order: order})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if got[0].ID != seeded[3].ID {
			t.Errorf("order %q: first = %d, want %d", order, got[0].ID, seeded[3].ID)
		}
	}

	// Unknown sort keys fall back to timestamp.
	got, _, err := repo.List(ctx, SampleQuery{SortBy: "password_hash", Order: "asc"})
	if err != nil {
		t.Fatalf("unknown sort key should not fail: %v", err)
	}
	if got[0].ID != seeded[0].ID || got[3].ID != seeded[3].ID {
		t.Errorf("fallback order = %v, want oldest first", ids(got))
	}
}

func TestSampleRepoListFilters(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewSampleRepo(db)
	seedSamples(t, repo, 6)
	other := model.Sample{LineName: "Line A", Operator: strp("zoe"), Timestamp: baseTime}
	if err := repo.Create(context.Background(), &other); err != nil {
		t.Fatalf("Create: %v", err)
	}
	ctx := context.Background()

	lineA, p, err := repo.List(ctx, SampleQuery{PerPage: 100, Filter: SampleFilter{LineName: "Line A"}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if p.TotalItems != 4 || len(lineA) != 4 {
		t.Fatalf("line filter: total=%d len=%d, want 4", p.TotalItems, len(lineA))
	}
	for _, s := range lineA {
		if s.LineName != "Line A" {
			t.Errorf("unexpected line %q", s.LineName)
		}
	}

	// Filters AND together and commute.
	ab, _, err := repo.List(ctx, SampleQuery{PerPage: 100, Filter: SampleFilter{LineName: "Line A", Operator: "zoe"}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	ba, _, err := repo.List(ctx, SampleQuery{PerPage: 100, Filter: SampleFilter{Operator: "zoe", LineName: "Line A"}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ab) != 1 || ab[0].ID != other.ID || len(ba) != 1 || ba[0].ID != other.ID {
		t.Errorf("combined filters = %v / %v, want [%d]", ids(ab), ids(ba), other.ID)
	}

	none, p, err := repo.List(ctx, SampleQuery{Filter: SampleFilter{LineName: "Line Z"}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(none) != 0 || p.TotalPages != 0 || p.HasNext || p.HasPrev {
		t.Errorf("no match: len=%d pagination=%+v", len(none), p)
	}
}

func TestSampleRepoDeleteByIDs(t *testing.T) {
	repo := NewSampleRepo(testutil.OpenDB(t))
	seeded := seedSamples(t, repo, 3)
	ctx := context.Background()

	if _, err := repo.DeleteByIDs(ctx, []uint64{9001, 9002}); !errors.Is(err, ErrSampleNotFound) {
		t.Fatalf("missing ids: err = %v, want ErrSampleNotFound", err)
	}

	n, err := repo.DeleteByIDs(ctx, []uint64{seeded[0].ID, seeded[2].ID, 9001})
	if err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
	left, _, err := repo.List(ctx, SampleQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(left) != 1 || left[0].ID != seeded[1].ID {
		t.Errorf("remaining = %v, want [%d]", ids(left), seeded[1].ID)
	}
}

func TestSampleRepoAggregates(t *testing.T) {
	repo := NewSampleRepo(testutil.OpenDB(t))
	ctx := context.Background()

	agg, err := repo.Aggregates(ctx)
	if err != nil {
		t.Fatalf("Aggregates on empty: %v", err)
	}
	if agg.Count != 0 || agg.AvgMetricA != nil || agg.LatestAt != nil || agg.PrevAvgMetricA != nil {
		t.Errorf("empty aggregates = %+v", agg)
	}

	seeded := seedSamples(t, repo, 3) // metric_a 10, 20, 30
	agg, err = repo.Aggregates(ctx)
	if err != nil {
		t.Fatalf("Aggregates: %v", err)
	}
	if agg.Count != 3 {
		t.Errorf("count = %d", agg.Count)
	}
	if agg.AvgMetricA == nil || math.Abs(*agg.AvgMetricA-20) > 1e-9 {
		t.Errorf("avg metric_a = %v, want 20", agg.AvgMetricA)
	}
	if agg.LatestID != seeded[2].ID || agg.LatestAt == nil || !agg.LatestAt.Equal(seeded[2].Timestamp) {
		t.Errorf("latest = %d @ %v, want %d @ %v", agg.LatestID, agg.LatestAt, seeded[2].ID, seeded[2].Timestamp)
	}
	if agg.PrevAvgMetricA == nil || math.Abs(*agg.PrevAvgMetricA-15) > 1e-9 {
		t.Errorf("previous avg metric_a = %v, want 15", agg.PrevAvgMetricA)
	}
}

func TestSampleRepoAggregatesSingleRow(t *testing.T) {
	repo := NewSampleRepo(testutil.OpenDB(t))
	seedSamples(t, repo, 1)
	agg, err := repo.Aggregates(context.Background())
	if err != nil {
		t.Fatalf("Aggregates: %v", err)
	}
	if agg.Count != 1 || agg.LatestAt == nil {
		t.Errorf("aggregates = %+v", agg)
	}
	if agg.PrevAvgMetricA != nil || agg.PrevAvgMetricB != nil {
		t.Errorf("previous averages must not be computed for one row: %+v", agg)
	}
}

func TestSampleRepoListLatest(t *testing.T) {
	repo := NewSampleRepo(testutil.OpenDB(t))
	seeded := seedSamples(t, repo, 5)
	got, err := repo.ListLatest(context.Background(), 3)
	if err != nil {
		t.Fatalf("ListLatest: %v", err)
	}
	want := []uint64{seeded[4].ID, seeded[3].ID, seeded[2].ID}
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("ids = %v, want %v", gotIDs, want)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("ids = %v, want %v", gotIDs, want)
		}
	}
	if !sort.SliceIsSorted(got, func(i, j int) bool { return got[i].Timestamp.After(got[j].Timestamp) }) {
		t.Errorf("not newest first")
	}
}
