package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/line-monitor/internal/model"
)

// LineComparisonWindow is how many of the most recent samples the line
// comparison chart covers.
const LineComparisonWindow = 30

type rgb struct{ r, g, b int }

func (c rgb) rgba(alpha string) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.r, c.g, c.b, alpha)
}

var (
	lineColors = map[string]rgb{
		"產線A": {255, 99, 132},
		"產線B": {54, 162, 235},
		"產線C": {75, 192, 192},
	}
	fallbackColor = rgb{201, 203, 207}
)

// ChartDataset is one Chart.js line series.
type ChartDataset struct {
	Label           string     `json:"label"`
	Data            []*float64 `json:"data"`
	BorderColor     string     `json:"borderColor"`
	BackgroundColor string     `json:"backgroundColor"`
	Tension         float64    `json:"tension"`
}

// LineComparison is the Chart.js payload for GET /charts/line-comparison.
type LineComparison struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// BuildLineComparison turns samples given newest first into a chart running
// oldest to newest.  Every sample adds one HH:MM:SS label and one metric_a
// point to its line's series; series appear in the order their line is
// first seen.
func BuildLineComparison(newestFirst []model.Sample) LineComparison {
	out := LineComparison{Labels: []string{}, Datasets: []ChartDataset{}}
	index := map[string]int{}
	for i := len(newestFirst) - 1; i >= 0; i-- {
		s := newestFirst[i]
		out.Labels = append(out.Labels, s.Timestamp.UTC().Format("15:04:05"))

		pos, ok := index[s.LineName]
		if !ok {
			c, known := lineColors[s.LineName]
			if !known {
				c = fallbackColor
			}
			pos = len(out.Datasets)
			index[s.LineName] = pos
			out.Datasets = append(out.Datasets, ChartDataset{
				Label:           s.LineName,
				Data:            []*float64{},
				BorderColor:     c.rgba("1"),
				BackgroundColor: c.rgba("0.5"),
				Tension:         0.1,
			})
		}
		out.Datasets[pos].Data = append(out.Datasets[pos].Data, s.MetricA)
	}
	return out
}

// LatestSampleLister is the slice of the sample repository charts need.
type LatestSampleLister interface {
	ListLatest(ctx context.Context, limit int) ([]model.Sample, error)
}

type ChartService struct {
	samples LatestSampleLister
}

func NewChartService(samples LatestSampleLister) *ChartService {
	return &ChartService{samples: samples}
}

func (s *ChartService) LineComparison(ctx context.Context) (LineComparison, error) {
	latest, err := s.samples.ListLatest(ctx, LineComparisonWindow)
	if err != nil {
		return LineComparison{}, err
	}
	return BuildLineComparison(latest), nil
}
