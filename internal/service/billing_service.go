package service

import (
	"context"

	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/google/uuid"
)

type billingService struct {
	repos Repos
	opts  Options
}

func NewBillingService(repos Repos, opts Options) BillingService {
	return &billingService{repos: repos, opts: opts.withDefaults()}
}

func (s *billingService) AddInvoice(ctx context.Context, inv *domain.Invoice) error {
	if inv.OwnerID == "" {
		return invalid("owner_id", "is required")
	}
	if inv.Number == "" {
		return invalid("number", "is required")
	}
	if inv.DueDate.IsZero() {
		return invalid("due_date", "is required")
	}
	if inv.AmountCents < 0 {
		return invalid("amount", "must not be negative")
	}
	if inv.Status == "" {
		inv.Status = domain.InvoiceDraft
	}
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	inv.CreatedAt = s.opts.Now()
	return s.repos.Invoices.Create(ctx, inv)
}

func (s *billingService) AddContract(ctx context.Context, c *domain.Contract) error {
	if c.OwnerID == "" {
		return invalid("owner_id", "is required")
	}
	if c.Title == "" {
		return invalid("title", "is required")
	}
	if c.PaymentDue.IsZero() {
		return invalid("payment_due", "is required")
	}
	if c.PaymentStatus == "" {
		c.PaymentStatus = domain.PaymentPending
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = s.opts.Now()
	return s.repos.Contracts.Create(ctx, c)
}
