package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/line-monitor/internal/model"
)

// ReportFilter narrows report listings.  Status is an exact match; Search is
// a substring match on the vendor name.  Empty fields are not applied.
type ReportFilter struct {
	Status string
	Search string
}

// ReportRepo persists wastewater reports together with their items.  Every
// write treats the report and its items as one unit inside a single
// transaction.
type ReportRepo struct {
	db *sql.DB
}

// NewReportRepo constructs a ReportRepo with the given DB handle.
func NewReportRepo(db *sql.DB) *ReportRepo {
	return &ReportRepo{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// List returns reports matching f, newest report date first, each with its
// items.
func (r *ReportRepo) List(ctx context.Context, f ReportFilter) ([]model.WastewaterReport, error) {
	var w whereBuilder
	w.eq("status", f.Status)
	w.contains("vendor", f.Search)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, report_date, vendor, status FROM wastewater_reports`+w.clause()+
			` ORDER BY report_date DESC, id DESC`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	reports := []model.WastewaterReport{}
	ids := []uint64{}
	for rows.Next() {
		var rep model.WastewaterReport
		if err := rows.Scan(&rep.ID, &rep.ReportDate, &rep.Vendor, &rep.Status); err != nil {
			rows.Close()
			return nil, err
		}
		rep.ReportDate = rep.ReportDate.UTC()
		reports = append(reports, rep)
		ids = append(ids, rep.ID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	items, err := loadItems(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range reports {
		reports[i].Items = items[reports[i].ID]
	}
	return reports, nil
}

// GetByID loads a report and its items.  It returns ErrReportNotFound when
// no row matches.
func (r *ReportRepo) GetByID(ctx context.Context, id uint64) (*model.WastewaterReport, error) {
	return getReport(ctx, r.db, id)
}

// Create inserts the report and every item in one transaction.  On success
// the generated ids are set on rep and its items.
func (r *ReportRepo) Create(ctx context.Context, rep *model.WastewaterReport) error {
	normalizeReport(rep)
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO wastewater_reports (report_date, vendor, status) VALUES (?, ?, ?)`,
			rep.ReportDate, rep.Vendor, rep.Status)
		if err != nil {
			return fmt.Errorf("insert report: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		rep.ID = uint64(id)
		return insertItemsTx(ctx, tx, rep.ID, rep.Items)
	})
}

// Update overwrites the report's scalar fields and replaces its items
// wholesale: every existing item is deleted and every item in rep is
// inserted as a new row.  Item ids are therefore not preserved.  The whole
// replacement commits or rolls back as one transaction.
func (r *ReportRepo) Update(ctx context.Context, rep *model.WastewaterReport) error {
	normalizeReport(rep)
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := requireReportTx(ctx, tx, rep.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE wastewater_reports SET report_date = ?, vendor = ?, status = ? WHERE id = ?`,
			rep.ReportDate, rep.Vendor, rep.Status, rep.ID); err != nil {
			return fmt.Errorf("update report: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM wastewater_report_items WHERE report_id = ?`, rep.ID); err != nil {
			return fmt.Errorf("clear report items: %w", err)
		}
		return insertItemsTx(ctx, tx, rep.ID, rep.Items)
	})
}

// Delete removes a report and all of its items.  The items are deleted
// explicitly before the parent so that no orphan survives even where the
// engine does not enforce ON DELETE CASCADE.
func (r *ReportRepo) Delete(ctx context.Context, id uint64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := requireReportTx(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM wastewater_report_items WHERE report_id = ?`, id); err != nil {
			return fmt.Errorf("delete report items: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM wastewater_reports WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete report: %w", err)
		}
		return nil
	})
}

// CountItems returns how many items reference the given report id.
func (r *ReportRepo) CountItems(ctx context.Context, reportID uint64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM wastewater_report_items WHERE report_id = ?`, reportID).Scan(&n)
	return n, err
}

// requireReportTx verifies the report exists inside tx.
func requireReportTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM wastewater_reports WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrReportNotFound
	}
	return err
}

func getReport(ctx context.Context, q querier, id uint64) (*model.WastewaterReport, error) {
	var rep model.WastewaterReport
	err := q.QueryRowContext(ctx,
		`SELECT id, report_date, vendor, status FROM wastewater_reports WHERE id = ?`, id,
	).Scan(&rep.ID, &rep.ReportDate, &rep.Vendor, &rep.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	rep.ReportDate = rep.ReportDate.UTC()
	items, err := loadItems(ctx, q, []uint64{id})
	if err != nil {
		return nil, err
	}
	rep.Items = items[id]
	if rep.Items == nil {
		rep.Items = []model.WastewaterReportItem{}
	}
	return &rep, nil
}

// loadItems fetches the items of the given reports keyed by report id, each
// list ordered by item id.
func loadItems(ctx context.Context, q querier, reportIDs []uint64) (map[uint64][]model.WastewaterReportItem, error) {
	out := make(map[uint64][]model.WastewaterReportItem, len(reportIDs))
	if len(reportIDs) == 0 {
		return out, nil
	}
	in, args := inClause(reportIDs)
	rows, err := q.QueryContext(ctx,
		`SELECT id, report_id, item_name, value, unit, standard, is_compliant
		 FROM wastewater_report_items WHERE report_id IN `+in+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("load report items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			it             model.WastewaterReportItem
			unit, standard sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.ReportID, &it.ItemName, &it.Value, &unit, &standard, &it.IsCompliant); err != nil {
			return nil, err
		}
		it.Unit = nullStringPtr(unit)
		it.Standard = nullStringPtr(standard)
		out[it.ReportID] = append(out[it.ReportID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, id := range reportIDs {
		if out[id] == nil {
			out[id] = []model.WastewaterReportItem{}
		}
	}
	return out, nil
}

// insertItemsTx inserts items as fresh rows owned by reportID and writes the
// generated ids back into the slice.
func insertItemsTx(ctx context.Context, tx *sql.Tx, reportID uint64, items []model.WastewaterReportItem) error {
	if len(items) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO wastewater_report_items (report_id, item_name, value, unit, standard, is_compliant)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i := range items {
		it := &items[i]
		res, err := stmt.ExecContext(ctx, reportID, it.ItemName, it.Value, it.Unit, it.Standard, it.IsCompliant)
		if err != nil {
			return fmt.Errorf("insert report item %q: %w", it.ItemName, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		it.ID = uint64(id)
		it.ReportID = reportID
	}
	return nil
}

// normalizeReport applies defaults and reduces the report date to a UTC
// calendar date.
func normalizeReport(rep *model.WastewaterReport) {
	if rep.Status == "" {
		rep.Status = model.DefaultReportStatus
	}
	d := rep.ReportDate
	rep.ReportDate = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	if rep.Items == nil {
		rep.Items = []model.WastewaterReportItem{}
	}
}
