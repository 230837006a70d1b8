package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/line-monitor/internal/model"
)

// sampleSortColumns enumerates the accepted sort_by keys.
var sampleSortColumns = map[string]string{
	"id":           "id",
	"line_name":    "line_name",
	"product_name": "product_name",
	"timestamp":    "timestamp",
	"metric_a":     "metric_a",
	"metric_b":     "metric_b",
	"operator":     "operator",
}

const defaultSampleSort = "timestamp"

const sampleColumns = `id, line_name, product_name, timestamp, metric_a, metric_b, operator`

// SampleFilter holds the equality filters supported on sample listings.
// Empty fields are not applied.
type SampleFilter struct {
	LineName    string
	ProductName string
	Operator    string
}

// SampleQuery defines filters, ordering & pagination for listing samples.
type SampleQuery struct {
	Page    int
	PerPage int
	SortBy  string
	Order   string
	Filter  SampleFilter
}

// SampleAggregates are the raw aggregates over the samples table.  Nil
// averages mean the store returned NULL (no qualifying rows).
type SampleAggregates struct {
	Count      int64
	AvgMetricA *float64
	AvgMetricB *float64
	LatestID   uint64
	LatestAt   *time.Time
	// Averages over every row except the latest one; only computed when
	// Count >= 2.
	PrevAvgMetricA *float64
	PrevAvgMetricB *float64
}

// SampleRepo manages persistence for production-line samples.
type SampleRepo struct {
	db *sql.DB
}

// NewSampleRepo constructs a SampleRepo with the given DB handle.
func NewSampleRepo(db *sql.DB) *SampleRepo {
	return &SampleRepo{db: db}
}

// Create inserts a sample and assigns the generated ID.  A zero Timestamp
// is replaced by the current UTC time.
func (r *SampleRepo) Create(ctx context.Context, s *model.Sample) error {
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now()
	}
	s.Timestamp = s.Timestamp.UTC()
	const q = `INSERT INTO samples (line_name, product_name, timestamp, metric_a, metric_b, operator)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.LineName, s.ProductName, s.Timestamp, s.MetricA, s.MetricB, s.Operator)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// List returns one page of samples matching q together with pagination
// metadata.  A page past the end yields an empty slice, not an error.
func (r *SampleRepo) List(ctx context.Context, q SampleQuery) ([]model.Sample, model.Pagination, error) {
	page, perPage := normalizePage(q.Page, q.PerPage)

	var w whereBuilder
	w.eq("line_name", q.Filter.LineName)
	w.eq("product_name", q.Filter.ProductName)
	w.eq("operator", q.Filter.Operator)
	where := w.clause()

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM samples`+where, w.args...).Scan(&total); err != nil {
		return nil, model.Pagination{}, fmt.Errorf("count samples: %w", err)
	}

	pagination := model.NewPagination(total, page, perPage)
	// Pages past the end never reach the store, so the offset below cannot
	// overflow.
	if int64(page-1) >= pagination.TotalPages {
		return []model.Sample{}, pagination, nil
	}

	col := resolveSort(sampleSortColumns, q.SortBy, defaultSampleSort)
	dir := normalizeOrder(q.Order)
	dataSQL := `SELECT ` + sampleColumns + ` FROM samples` + where +
		` ORDER BY ` + col + ` ` + dir + `, id ` + dir + ` LIMIT ? OFFSET ?`
	args := append(append([]any{}, w.args...), perPage, int64(page-1)*int64(perPage))

	rows, err := r.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, model.Pagination{}, fmt.Errorf("list samples: %w", err)
	}
	out, err := scanSamples(rows, perPage)
	if err != nil {
		return nil, model.Pagination{}, err
	}
	return out, pagination, nil
}

// ListLatest returns up to limit samples, newest first.
func (r *SampleRepo) ListLatest(ctx context.Context, limit int) ([]model.Sample, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sampleColumns+` FROM samples ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list latest samples: %w", err)
	}
	return scanSamples(rows, limit)
}

// DeleteByIDs removes every sample whose id is listed and returns how many
// rows went away.  ErrSampleNotFound is returned when none matched.
func (r *SampleRepo) DeleteByIDs(ctx context.Context, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrSampleNotFound
	}
	in, args := inClause(ids)
	res, err := r.db.ExecContext(ctx, `DELETE FROM samples WHERE id IN `+in, args...)
	if err != nil {
		return 0, fmt.Errorf("delete samples: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrSampleNotFound
	}
	return n, nil
}

// Aggregates computes count, averages and the latest record in one read
// transaction so that the "previous" averages exclude exactly the row
// reported as latest.
func (r *SampleRepo) Aggregates(ctx context.Context) (SampleAggregates, error) {
	var agg SampleAggregates
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var avgA, avgB sql.NullFloat64
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*), AVG(metric_a), AVG(metric_b) FROM samples`,
		).Scan(&agg.Count, &avgA, &avgB); err != nil {
			return fmt.Errorf("aggregate samples: %w", err)
		}
		agg.AvgMetricA, agg.AvgMetricB = nullFloatPtr(avgA), nullFloatPtr(avgB)
		if agg.Count == 0 {
			return nil
		}

		// Selecting the column itself (not MAX()) keeps its declared type so
		// every driver scans it as time.Time.
		var latest time.Time
		err := tx.QueryRowContext(ctx,
			`SELECT id, timestamp FROM samples ORDER BY timestamp DESC, id DESC LIMIT 1`,
		).Scan(&agg.LatestID, &latest)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("latest sample: %w", err)
		}
		latest = latest.UTC()
		agg.LatestAt = &latest

		if agg.Count < 2 {
			return nil
		}
		var prevA, prevB sql.NullFloat64
		if err := tx.QueryRowContext(ctx,
			`SELECT AVG(metric_a), AVG(metric_b) FROM samples WHERE id <> ?`, agg.LatestID,
		).Scan(&prevA, &prevB); err != nil {
			return fmt.Errorf("previous averages: %w", err)
		}
		agg.PrevAvgMetricA, agg.PrevAvgMetricB = nullFloatPtr(prevA), nullFloatPtr(prevB)
		return nil
	})
	return agg, err
}

func scanSamples(rows *sql.Rows, capHint int) ([]model.Sample, error) {
	defer rows.Close()
	if capHint < 0 {
		capHint = 0
	}
	out := make([]model.Sample, 0, capHint)
	for rows.Next() {
		var (
			s                 model.Sample
			product, operator sql.NullString
			metricA, metricB  sql.NullFloat64
		)
		if err := rows.Scan(&s.ID, &s.LineName, &product, &s.Timestamp, &metricA, &metricB, &operator); err != nil {
			return nil, err
		}
		s.Timestamp = s.Timestamp.UTC()
		s.ProductName = nullStringPtr(product)
		s.Operator = nullStringPtr(operator)
		s.MetricA = nullFloatPtr(metricA)
		s.MetricB = nullFloatPtr(metricB)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
