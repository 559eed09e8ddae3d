package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/horizon/internal/domain"
)

func FormatTenantList(tenants []*domain.Tenant) string {
	if len(tenants) == 0 {
		return Dim("No tenants.") + "\n"
	}
	headers := []string{"ID", "NAME", "TIMEZONE", "HOST"}
	rows := make([][]string, 0, len(tenants))
	for _, t := range tenants {
		host := Dim("auto")
		if t.HostID != "" {
			host = TruncID(t.HostID)
		}
		rows = append(rows, []string{TruncID(t.ID), t.Name, t.Timezone, host})
	}
	return RenderTable(headers, rows)
}

func FormatParticipants(ps []*domain.Participant) string {
	if len(ps) == 0 {
		return Dim("No participants.") + "\n"
	}
	headers := []string{"ID", "NAME", "EMAIL", "ROLE"}
	rows := make([][]string, 0, len(ps))
	for _, p := range ps {
		role := string(p.Role)
		if p.CanHost() {
			role = StyleBlue.Render(role)
		}
		rows = append(rows, []string{TruncID(p.ID), p.Name, p.Email, role})
	}
	return RenderTable(headers, rows)
}

func FormatMeetingTypes(mts []*domain.MeetingType) string {
	if len(mts) == 0 {
		return Dim("No meeting types.") + "\n"
	}
	headers := []string{"ID", "NAME", "DURATION", "ACTIVE"}
	rows := make([][]string, 0, len(mts))
	for _, m := range mts {
		active := StyleGreen.Render("yes")
		if !m.Active {
			active = Dim("no")
		}
		rows = append(rows, []string{TruncID(m.ID), m.Name, FormatMinutes(m.DurationMin), active})
	}
	return RenderTable(headers, rows)
}

func FormatPolicy(p domain.AvailabilityPolicy) string {
	lines := []string{
		fmt.Sprintf("%-12s %s", Dim("days"), weekdayNames(p)),
		fmt.Sprintf("%-12s %s–%s", Dim("hours"), domain.FormatClock(p.DayStartMin), domain.FormatClock(p.DayEndMin)),
		fmt.Sprintf("%-12s %s", Dim("timezone"), p.Timezone),
		fmt.Sprintf("%-12s %s", Dim("granularity"), FormatMinutes(p.GranularityMin)),
		fmt.Sprintf("%-12s %s", Dim("buffer"), FormatMinutes(p.BufferMin)),
		fmt.Sprintf("%-12s %s", Dim("lead time"), FormatMinutes(p.LeadTimeMin)),
	}
	return RenderBox("Availability policy", strings.Join(lines, "\n"))
}

func weekdayNames(p domain.AvailabilityPolicy) string {
	var names []string
	for d := time.Sunday; d <= time.Saturday; d++ {
		if p.AllowsWeekday(d) {
			names = append(names, d.String()[:3])
		}
	}
	return strings.Join(names, " ")
}
