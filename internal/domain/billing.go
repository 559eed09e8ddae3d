package domain

import "time"

type Invoice struct {
	ID          string
	TenantID    string
	OwnerID     string
	Number      string
	AmountCents int64
	Status      InvoiceStatus
	DueDate     time.Time
	CreatedAt   time.Time
}

// Unpaid reports whether the invoice still expects a payment.
func (i *Invoice) Unpaid() bool {
	return i.Status != InvoicePaid && i.Status != InvoiceCancelled
}

type Contract struct {
	ID            string
	TenantID      string
	OwnerID       string
	Title         string
	ValueCents    int64
	PaymentStatus PaymentStatus
	PaymentDue    time.Time
	CreatedAt     time.Time
}

// Outstanding reports whether payment on the contract is still owed.
func (c *Contract) Outstanding() bool {
	return c.PaymentStatus != PaymentPaid
}
