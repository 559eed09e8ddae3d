package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/horizon/internal/domain"
)

func FormatBooking(b *domain.Booking, loc *time.Location) string {
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, fmt.Sprintf("%-10s %s", Dim(label), value))
		}
	}
	add("id", b.ID)
	add("state", BookingStateBadge(b.State))
	add("when", DateTime(b.Start, loc)+" "+ClockRange(b.Start, b.End, loc))
	add("client", strings.TrimSpace(b.Client.Name+" "+b.Client.Email))
	add("room", b.RoomURL)
	if b.State == domain.BookingFailed {
		add("failed at", string(b.FailedStep))
		add("error", StyleRed.Render(b.LastError))
	}
	return RenderBox("Booking", strings.Join(lines, "\n"))
}

func FormatBookingList(bookings []*domain.Booking, loc *time.Location) string {
	if len(bookings) == 0 {
		return Dim("No bookings.") + "\n"
	}
	headers := []string{"ID", "WHEN", "CLIENT", "STATE"}
	rows := make([][]string, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, []string{
			TruncID(b.ID),
			DateTime(b.Start, loc),
			Truncate(b.Client.Name, 30),
			BookingStateBadge(b.State),
		})
	}
	return RenderTable(headers, rows)
}
