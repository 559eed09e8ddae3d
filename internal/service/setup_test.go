package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alexanderramin/horizon/internal/db"
	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/alexanderramin/horizon/internal/testutil"
	"github.com/stretchr/testify/require"
)

var (
	// monday is a regular working day; fixedNow sits on the Friday before
	// so lead time never interferes unless a test moves the clock.
	monday   = testutil.Day(2025, 3, 17)
	fixedNow = testutil.At(monday.AddDate(0, 0, -3), 12, 0)
)

type testEnv struct {
	db     *sql.DB
	repos  Repos
	uow    db.UnitOfWork
	opts   Options
	tenant *domain.Tenant
	host   *domain.Participant
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	repos := NewSQLiteRepos(database)
	ctx := context.Background()

	tenant := testutil.NewTestTenant("Acme")
	require.NoError(t, repos.Tenants.Create(ctx, tenant))
	host := testutil.NewTestParticipant(tenant.ID, "Hana", testutil.WithRole(domain.RoleOwner))
	require.NoError(t, repos.Participants.Create(ctx, host))

	return &testEnv{
		db:     database,
		repos:  repos,
		uow:    testutil.NewTestUoW(database),
		opts:   Options{Now: func() time.Time { return fixedNow }},
		tenant: tenant,
		host:   host,
	}
}

func (e *testEnv) setNow(now time.Time) {
	e.opts.Now = func() time.Time { return now }
}

func (e *testEnv) addEvent(t *testing.T, ownerID string, start, end time.Time, opts ...testutil.EventOption) *domain.CalendarEvent {
	t.Helper()
	ev := testutil.NewTestEvent(ownerID, start, end, opts...)
	require.NoError(t, e.repos.Events.Create(context.Background(), ev))
	return ev
}

func (e *testEnv) addParticipant(t *testing.T, name string) *domain.Participant {
	t.Helper()
	p := testutil.NewTestParticipant(e.tenant.ID, name)
	require.NoError(t, e.repos.Participants.Create(context.Background(), p))
	return p
}

func (e *testEnv) addMeetingType(t *testing.T, name string, durationMin int) *domain.MeetingType {
	t.Helper()
	mt := testutil.NewTestMeetingType(e.tenant.ID, name, durationMin)
	require.NoError(t, e.repos.MeetingTypes.Create(context.Background(), mt))
	return mt
}

func at(h, m int) time.Time {
	return testutil.At(monday, h, m)
}

func startsOf(slots []time.Time) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.UTC().Format("Mon 15:04")
	}
	return out
}
