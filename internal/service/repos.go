package service

import (
	"github.com/alexanderramin/horizon/internal/db"
	"github.com/alexanderramin/horizon/internal/repository"
)

// Repos bundles the repositories services read through outside a
// transaction. Writes that span several records go through a UnitOfWork and
// rebuild their repos over the transaction.
type Repos struct {
	Events       repository.EventRepo
	Tasks        repository.TaskRepo
	Tenants      repository.TenantRepo
	Participants repository.ParticipantRepo
	Policies     repository.PolicyRepo
	MeetingTypes repository.MeetingTypeRepo
	Invoices     repository.InvoiceRepo
	Contracts    repository.ContractRepo
	Bookings     repository.BookingRepo
}

// NewSQLiteRepos builds every repository over one connection.
func NewSQLiteRepos(conn db.DBTX) Repos {
	return Repos{
		Events:       repository.NewSQLiteEventRepo(conn),
		Tasks:        repository.NewSQLiteTaskRepo(conn),
		Tenants:      repository.NewSQLiteTenantRepo(conn),
		Participants: repository.NewSQLiteParticipantRepo(conn),
		Policies:     repository.NewSQLitePolicyRepo(conn),
		MeetingTypes: repository.NewSQLiteMeetingTypeRepo(conn),
		Invoices:     repository.NewSQLiteInvoiceRepo(conn),
		Contracts:    repository.NewSQLiteContractRepo(conn),
		Bookings:     repository.NewSQLiteBookingRepo(conn),
	}
}

func (r Repos) calendar() calendarReader {
	return calendarReader{
		events:       r.Events,
		tenants:      r.Tenants,
		participants: r.Participants,
		policies:     r.Policies,
	}
}
