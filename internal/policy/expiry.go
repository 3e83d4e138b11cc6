package policy

import "time"

// PasswordExpiry returns when a password set at now stops being valid, or
// false when passwords do not expire.
func PasswordExpiry(s Snapshot, now time.Time) (time.Time, bool) {
	days := s.PasswordDurationDays()
	if days <= 0 {
		return time.Time{}, false
	}
	return now.Add(time.Duration(days) * 24 * time.Hour), true
}

// AccountExpiry returns when an account created or renewed at now expires, or
// false when accounts do not expire.
func AccountExpiry(s Snapshot, now time.Time) (time.Time, bool) {
	months := s.AccountLifetimeMonths()
	if months <= 0 {
		return time.Time{}, false
	}
	return AddMonths(now, months), true
}

// AddMonths adds calendar months and clamps the day to the last day of the
// target month, so Jan 31 + 1 month is Feb 28 (or 29), not Mar 3.
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hh, mm, ss := t.Clock()

	first := time.Date(year, month+time.Month(months), 1, hh, mm, ss, t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
