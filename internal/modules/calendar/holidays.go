// README: Hand-curated Vietnamese public holidays (solar dates, Tet, Hung Kings, Reunification, Labour, National Day).
package calendar

var defaultHolidays = []string{
	// 2024
	"2024-01-01",
	"2024-02-08", "2024-02-09", "2024-02-10", "2024-02-11", "2024-02-12", "2024-02-13", "2024-02-14",
	"2024-04-18",
	"2024-04-30", "2024-05-01",
	"2024-09-02", "2024-09-03",
	// 2025
	"2025-01-01",
	"2025-01-25", "2025-01-26", "2025-01-27", "2025-01-28", "2025-01-29", "2025-01-30", "2025-01-31", "2025-02-01", "2025-02-02",
	"2025-04-07",
	"2025-04-30", "2025-05-01", "2025-05-02",
	"2025-08-30", "2025-08-31", "2025-09-01", "2025-09-02",
	// 2026
	"2026-01-01",
	"2026-02-14", "2026-02-15", "2026-02-16", "2026-02-17", "2026-02-18", "2026-02-19", "2026-02-20", "2026-02-21", "2026-02-22",
	"2026-04-26", "2026-04-27",
	"2026-04-30", "2026-05-01",
	"2026-08-29", "2026-08-30", "2026-08-31", "2026-09-01", "2026-09-02",
	// 2027
	"2027-01-01",
	"2027-02-05", "2027-02-06", "2027-02-07", "2027-02-08", "2027-02-09", "2027-02-10", "2027-02-11",
	"2027-04-16",
	"2027-04-30", "2027-05-01",
	"2027-09-02", "2027-09-03",
}

// DefaultHolidays returns the built-in calendar. Each call returns a fresh value.
func DefaultHolidays() HolidayCalendar {
	return MustHolidayCalendar(defaultHolidays...)
}
