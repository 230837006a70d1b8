// Package service holds the read models computed from the store and the
// outbound report event publisher.
package service

import (
	"context"
	"math"
	"time"

	"github.com/iliyamo/line-monitor/internal/repository"
)

// MainMetrics is the body of GET /statistics/main-metrics.  Averages are
// rounded to two decimals and never null; LatestRecordTime is null when no
// sample exists.
type MainMetrics struct {
	TotalRecords       int64   `json:"total_records"`
	AvgMetricA         float64 `json:"avg_metric_a"`
	AvgMetricB         float64 `json:"avg_metric_b"`
	LatestRecordTime   *string `json:"latest_record_time"`
	PreviousAvgMetricA float64 `json:"previous_avg_metric_a"`
	PreviousAvgMetricB float64 `json:"previous_avg_metric_b"`
	MetricAChange      float64 `json:"metric_a_change"`
	MetricBChange      float64 `json:"metric_b_change"`
}

// SampleAggregator is the slice of the sample repository statistics need.
type SampleAggregator interface {
	Aggregates(ctx context.Context) (repository.SampleAggregates, error)
}

type StatisticsService struct {
	samples SampleAggregator
}

func NewStatisticsService(samples SampleAggregator) *StatisticsService {
	return &StatisticsService{samples: samples}
}

// MainMetrics reads the current aggregates and shapes them for the API.
func (s *StatisticsService) MainMetrics(ctx context.Context) (MainMetrics, error) {
	agg, err := s.samples.Aggregates(ctx)
	if err != nil {
		return MainMetrics{}, err
	}
	return ComputeMainMetrics(agg), nil
}

// ComputeMainMetrics converts raw aggregates into MainMetrics.  The
// "previous" averages exclude only the latest record and stay 0 below two
// rows, as do the changes derived from them.
func ComputeMainMetrics(agg repository.SampleAggregates) MainMetrics {
	m := MainMetrics{TotalRecords: agg.Count}
	if agg.Count == 0 {
		return m
	}
	avgA, avgB := orZero(agg.AvgMetricA), orZero(agg.AvgMetricB)
	m.AvgMetricA, m.AvgMetricB = round2(avgA), round2(avgB)
	if agg.LatestAt != nil {
		ts := agg.LatestAt.UTC().Format(time.RFC3339)
		m.LatestRecordTime = &ts
	}
	if agg.Count < 2 {
		return m
	}
	prevA, prevB := orZero(agg.PrevAvgMetricA), orZero(agg.PrevAvgMetricB)
	m.PreviousAvgMetricA, m.PreviousAvgMetricB = round2(prevA), round2(prevB)
	m.MetricAChange = round2(avgA - prevA)
	m.MetricBChange = round2(avgB - prevB)
	return m
}

func orZero(f *float64) float64 {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return 0
	}
	return *f
}

func round2(f float64) float64 {
	r := math.Round(f*100) / 100
	if r == 0 {
		return 0 // no -0 in JSON
	}
	return r
}
