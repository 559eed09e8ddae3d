package service

import (
	"context"
	"sort"
	"time"

	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/alexanderramin/horizon/internal/repository"
)

type timelineService struct {
	reader    calendarReader
	tasks     repository.TaskRepo
	invoices  repository.InvoiceRepo
	contracts repository.ContractRepo
}

func NewTimelineService(repos Repos) TimelineService {
	return &timelineService{
		reader:    repos.calendar(),
		tasks:     repos.Tasks,
		invoices:  repos.Invoices,
		contracts: repos.Contracts,
	}
}

var timelineKindRank = map[domain.TimelineKind]int{
	domain.TimelineEvent:    0,
	domain.TimelineTask:     1,
	domain.TimelineInvoice:  2,
	domain.TimelineContract: 3,
}

// Timeline merges the participant's events, open tasks, unpaid invoices and
// contracts with outstanding payment in [from, to), ordered by start.
// Shadow tasks are left out; their booked meeting already appears as an
// event.
func (s *timelineService) Timeline(ctx context.Context, participantID string, from, to time.Time) ([]domain.TimelineItem, error) {
	if participantID == "" {
		return nil, invalid("participant_id", "is required")
	}
	if !from.Before(to) {
		return nil, invalid("range", "start must be before end")
	}

	events, err := s.reader.occurrences(ctx, participantID, from, to)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListDueBetween(ctx, participantID, from, to)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoices.ListDueBetween(ctx, participantID, from, to)
	if err != nil {
		return nil, err
	}
	contracts, err := s.contracts.ListDueBetween(ctx, participantID, from, to)
	if err != nil {
		return nil, err
	}

	items := make([]domain.TimelineItem, 0, len(events)+len(tasks)+len(invoices)+len(contracts))
	for _, ev := range events {
		items = append(items, domain.TimelineItem{
			Kind: domain.TimelineEvent, SourceID: ev.ID, Title: ev.Title,
			Start: ev.Start, End: ev.End, AllDay: ev.AllDay, Status: string(ev.Kind),
		})
	}
	for _, t := range tasks {
		if t.Shadow || t.IsTerminal() {
			continue
		}
		items = append(items, domain.TimelineItem{
			Kind: domain.TimelineTask, SourceID: t.ID, Title: t.Title,
			Start: *t.DueDate, End: *t.DueDate, Status: string(t.Status),
		})
	}
	for _, inv := range invoices {
		if !inv.Unpaid() {
			continue
		}
		items = append(items, domain.TimelineItem{
			Kind: domain.TimelineInvoice, SourceID: inv.ID, Title: "Invoice " + inv.Number,
			Start: inv.DueDate, End: inv.DueDate, Status: string(inv.Status),
		})
	}
	for _, c := range contracts {
		if !c.Outstanding() {
			continue
		}
		items = append(items, domain.TimelineItem{
			Kind: domain.TimelineContract, SourceID: c.ID, Title: c.Title,
			Start: c.PaymentDue, End: c.PaymentDue, Status: string(c.PaymentStatus),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.Kind != b.Kind {
			return timelineKindRank[a.Kind] < timelineKindRank[b.Kind]
		}
		return a.SourceID < b.SourceID
	})
	return items, nil
}
