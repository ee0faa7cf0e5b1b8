// Package timezone holds the application clock and the calendar-day helpers
// used for stays and task schedules.
//
// The zone comes from APP_TIMEZONE (an IANA name such as "UTC" or
// "Europe/Lisbon") and is loaded once on import. An unknown or empty value
// falls back to UTC.
//
// Instants:
//
//	now := timezone.Now()
//	stamp := timezone.Format(now, constant.DateFormat)
//
// Calendar days are UTC midnight values, matching what postgres DATE columns
// return, so a check_in read from the store compares equal to one parsed from
// a request:
//
//	checkIn, err := timezone.ParseDay("2026-03-01")
//	today := timezone.Today()          // the hotel's date, not the server's
//	day := timezone.Day(task.CreatedAt) // instant to hotel date
//	timezone.FormatDay(checkIn)         // "2026-03-01"
package timezone
