package repository

import (
	"context"
	"database/sql"
	"strings"
)

// Page size bounds applied to every paginated query.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Sort directions as emitted into SQL.
const (
	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

// normalizeOrder maps exactly "asc" to ascending; everything else,
// including the empty string, is descending.
func normalizeOrder(order string) string {
	if order == "asc" {
		return OrderAsc
	}
	return OrderDesc
}

// resolveSort looks key up in the accepted sort keys and returns the column
// to order by, or def for unknown keys.  Column names never come from the
// request directly.
func resolveSort(columns map[string]string, key, def string) string {
	if col, ok := columns[key]; ok {
		return col
	}
	return def
}

// normalizePage clamps page/perPage to the accepted ranges.
func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// whereBuilder accumulates AND-ed predicates and their arguments.  Empty
// filter values are skipped so absent filters are no-ops.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) eq(col, val string) {
	if val == "" {
		return
	}
	w.conds = append(w.conds, col+" = ?")
	w.args = append(w.args, val)
}

// contains adds a case-sensitive substring match.  INSTR takes val
// literally, so % and _ need no escaping; on MySQL the column's binary
// collation keeps the comparison case-sensitive.
func (w *whereBuilder) contains(col, val string) {
	if val == "" {
		return
	}
	w.conds = append(w.conds, "INSTR("+col+", ?) > 0")
	w.args = append(w.args, val)
}

// clause returns " WHERE a AND b" or "" when no predicate was added.
func (w *whereBuilder) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// inClause returns "(?, ?, ?)" with n placeholders and the ids as arguments.
func inClause(ids []uint64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ") + ")", args
}

// withTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()
	return fn(tx)
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullFloatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}
