package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/iliyamo/line-monitor/internal/model"
)

func TestBuildLineComparisonEmpty(t *testing.T) {
	b, err := json.Marshal(BuildLineComparison(nil))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"labels":[],"datasets":[]}` {
		t.Errorf("empty chart = %s", b)
	}
}

func TestBuildLineComparison(t *testing.T) {
	base := time.Date(2025, 6, 27, 8, 0, 0, 0, time.UTC)
	// Newest first, as the repository returns them.
	samples := []model.Sample{
		{LineName: "產線A", Timestamp: base.Add(3 * time.Second), MetricA: f(4)},
		{LineName: "Line X", Timestamp: base.Add(2 * time.Second), MetricA: f(3)},
		{LineName: "產線A", Timestamp: base.Add(1 * time.Second)},
		{LineName: "產線B", Timestamp: base, MetricA: f(1)},
	}
	got := BuildLineComparison(samples)

	wantLabels := []string{"08:00:00", "08:00:01", "08:00:02", "08:00:03"}
	if len(got.Labels) != len(wantLabels) {
		t.Fatalf("labels = %v", got.Labels)
	}
	for i := range wantLabels {
		if got.Labels[i] != wantLabels[i] {
			t.Fatalf("labels = %v, want %v", got.Labels, wantLabels)
		}
	}

	if len(got.Datasets) != 3 {
		t.Fatalf("datasets = %+v", got.Datasets)
	}
	b, a, x := got.Datasets[0], got.Datasets[1], got.Datasets[2]
	if b.Label != "產線B" || a.Label != "產線A" || x.Label != "Line X" {
		t.Errorf("dataset order = %s, %s, %s", b.Label, a.Label, x.Label)
	}
	if b.BorderColor != "rgba(54, 162, 235, 1)" || b.BackgroundColor != "rgba(54, 162, 235, 0.5)" {
		t.Errorf("產線B colours = %s / %s", b.BorderColor, b.BackgroundColor)
	}
	if x.BorderColor != "rgba(201, 203, 207, 1)" || x.BackgroundColor != "rgba(201, 203, 207, 0.5)" {
		t.Errorf("unknown line colours = %s / %s", x.BorderColor, x.BackgroundColor)
	}
	if len(a.Data) != 2 || a.Data[0] != nil || *a.Data[1] != 4 {
		t.Errorf("產線A data = %v", a.Data)
	}
	if a.Tension != 0.1 {
		t.Errorf("tension = %v", a.Tension)
	}
}
