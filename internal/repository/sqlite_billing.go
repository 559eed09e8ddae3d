package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/horizon/internal/db"
	"github.com/alexanderramin/horizon/internal/domain"
)

// SQLiteInvoiceRepo implements InvoiceRepo using a SQLite database.
type SQLiteInvoiceRepo struct {
	db db.DBTX
}

// NewSQLiteInvoiceRepo creates a new SQLiteInvoiceRepo.
func NewSQLiteInvoiceRepo(conn db.DBTX) *SQLiteInvoiceRepo {
	return &SQLiteInvoiceRepo{db: conn}
}

func (r *SQLiteInvoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	query := `INSERT INTO invoices (id, tenant_id, owner_id, number, amount_cents, status, due_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		inv.ID, inv.TenantID, inv.OwnerID, inv.Number, inv.AmountCents,
		string(inv.Status), formatTS(inv.DueDate), formatTS(inv.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting invoice: %w", err)
	}
	return nil
}

// ListDueBetween returns the owner's invoices due in [from, to), any status.
func (r *SQLiteInvoiceRepo) ListDueBetween(ctx context.Context, ownerID string, from, to time.Time) ([]*domain.Invoice, error) {
	query := `SELECT id, tenant_id, owner_id, number, amount_cents, status, due_date, created_at
		FROM invoices WHERE owner_id = ? AND due_date >= ? AND due_date < ?
		ORDER BY due_date, id`
	rows, err := r.db.QueryContext(ctx, query, ownerID, formatTS(from), formatTS(to))
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var out []*domain.Invoice
	for rows.Next() {
		var inv domain.Invoice
		var statusStr, dueStr, createdStr string
		if err := rows.Scan(&inv.ID, &inv.TenantID, &inv.OwnerID, &inv.Number, &inv.AmountCents,
			&statusStr, &dueStr, &createdStr); err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}
		inv.Status = domain.InvoiceStatus(statusStr)
		if inv.DueDate, err = parseTS(dueStr); err != nil {
			return nil, fmt.Errorf("parsing due_date: %w", err)
		}
		if inv.CreatedAt, err = parseTS(createdStr); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		out = append(out, &inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoices: %w", err)
	}
	return out, nil
}

// SQLiteContractRepo implements ContractRepo using a SQLite database.
type SQLiteContractRepo struct {
	db db.DBTX
}

// NewSQLiteContractRepo creates a new SQLiteContractRepo.
func NewSQLiteContractRepo(conn db.DBTX) *SQLiteContractRepo {
	return &SQLiteContractRepo{db: conn}
}

func (r *SQLiteContractRepo) Create(ctx context.Context, c *domain.Contract) error {
	query := `INSERT INTO contracts (id, tenant_id, owner_id, title, value_cents, payment_status, payment_due, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.TenantID, c.OwnerID, c.Title, c.ValueCents,
		string(c.PaymentStatus), formatTS(c.PaymentDue), formatTS(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting contract: %w", err)
	}
	return nil
}

// ListDueBetween returns the owner's contracts with payment due in [from, to).
func (r *SQLiteContractRepo) ListDueBetween(ctx context.Context, ownerID string, from, to time.Time) ([]*domain.Contract, error) {
	query := `SELECT id, tenant_id, owner_id, title, value_cents, payment_status, payment_due, created_at
		FROM contracts WHERE owner_id = ? AND payment_due >= ? AND payment_due < ?
		ORDER BY payment_due, id`
	rows, err := r.db.QueryContext(ctx, query, ownerID, formatTS(from), formatTS(to))
	if err != nil {
		return nil, fmt.Errorf("listing contracts: %w", err)
	}
	defer rows.Close()

	var out []*domain.Contract
	for rows.Next() {
		var c domain.Contract
		var statusStr, dueStr, createdStr string
		if err := rows.Scan(&c.ID, &c.TenantID, &c.OwnerID, &c.Title, &c.ValueCents,
			&statusStr, &dueStr, &createdStr); err != nil {
			return nil, fmt.Errorf("scanning contract: %w", err)
		}
		c.PaymentStatus = domain.PaymentStatus(statusStr)
		if c.PaymentDue, err = parseTS(dueStr); err != nil {
			return nil, fmt.Errorf("parsing payment_due: %w", err)
		}
		if c.CreatedAt, err = parseTS(createdStr); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contracts: %w", err)
	}
	return out, nil
}
