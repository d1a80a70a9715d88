package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/invoice-management/internal/invoice"
	"github.com/jmoiron/sqlx"
)

// sortColumns is the only source of ORDER BY text.
var sortColumns = map[invoice.SortField]string{
	invoice.SortByInvoiceDate:   "i.invoice_date",
	invoice.SortByDueDate:       "i.due_date",
	invoice.SortByStatus:        "i.status",
	invoice.SortByTotalHours:    "i.total_hours",
	invoice.SortByTotalCost:     "i.total_cost",
	invoice.SortBySubmittedDate: "i.submitted_date",
	invoice.SortByApprovedDate:  "i.approved_date",
	invoice.SortByEmployee:      "COALESCE(u.name, u.email)",
}

const listSelect = `
SELECT i.id, i.user_id, u.name AS employee_name, u.email AS employee_email,
       i.payment_schedule_id, ps.name AS payment_schedule_name,
       i.invoice_date, i.due_date, i.status, i.total_hours, i.total_cost,
       i.submitted_date, i.approved_date
FROM invoices i
JOIN users u ON u.id = i.user_id
JOIN payment_schedules ps ON ps.id = i.payment_schedule_id`

// InvoiceQueries is the sqlx read model behind lists, exports and the dashboard.
type InvoiceQueries struct {
	db *sqlx.DB
}

func NewInvoiceQueries(db *sqlx.DB) invoice.QueryAPI {
	return &InvoiceQueries{db: db}
}

func whereClause(f invoice.ListFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if f.UserID != "" {
		conds = append(conds, "i.user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		conds = append(conds, "i.status = ?")
		args = append(args, string(f.Status))
	}
	if f.InvoiceDateFrom != nil {
		conds = append(conds, "i.invoice_date >= ?")
		args = append(args, *f.InvoiceDateFrom)
	}
	if f.InvoiceDateTo != nil {
		conds = append(conds, "i.invoice_date <= ?")
		args = append(args, *f.InvoiceDateTo)
	}
	if f.DueDateFrom != nil {
		conds = append(conds, "i.due_date >= ?")
		args = append(args, *f.DueDateFrom)
	}
	if f.DueDateTo != nil {
		conds = append(conds, "i.due_date <= ?")
		args = append(args, *f.DueDateTo)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns one page plus the total match count. A zero limit returns every row.
func (q *InvoiceQueries) List(ctx context.Context, f invoice.ListFilter) ([]invoice.View, int64, error) {
	column, ok := sortColumns[f.Sort]
	if !ok {
		return nil, 0, fmt.Errorf("unsupported sort field %q", f.Sort)
	}
	direction := "DESC"
	if f.Order == invoice.SortAsc {
		direction = "ASC"
	}

	where, args := whereClause(f)

	var total int64
	if err := q.db.GetContext(ctx, &total, q.db.Rebind("SELECT COUNT(*) FROM invoices i"+where), args...); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	query := listSelect + where + " ORDER BY " + column + " " + direction + ", i.id ASC"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	views := []invoice.View{}
	if err := q.db.SelectContext(ctx, &views, q.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	return views, total, nil
}

func (q *InvoiceQueries) StatusCounts(ctx context.Context, userID string) (map[invoice.Status]int64, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int64  `db:"count"`
	}
	query := q.db.Rebind("SELECT status, COUNT(*) AS count FROM invoices WHERE user_id = ? GROUP BY status")
	if err := q.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("count invoices by status: %w", err)
	}

	counts := make(map[invoice.Status]int64, len(rows))
	for _, r := range rows {
		counts[invoice.Status(r.Status)] = r.Count
	}
	return counts, nil
}

// NextDraftDue returns the earliest due date of the user's drafts on or after from.
func (q *InvoiceQueries) NextDraftDue(ctx context.Context, userID string, from time.Time) (*time.Time, error) {
	var due time.Time
	query := q.db.Rebind(`SELECT due_date FROM invoices
WHERE user_id = ? AND status = ? AND due_date >= ?
ORDER BY due_date ASC LIMIT 1`)
	err := q.db.GetContext(ctx, &due, query, userID, string(invoice.StatusDraft), from)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next draft due date: %w", err)
	}
	due = due.UTC()
	return &due, nil
}
