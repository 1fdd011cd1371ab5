package domain

import "time"

// EpochDay is a calendar day counted from 1970-01-01. Wear dates use day
// granularity so two wears on the same day compare equal regardless of the
// time they were logged.
type EpochDay int64

const secondsPerDay = 24 * 60 * 60

// EpochDayOf returns the calendar day of t in t's own location.
func EpochDayOf(t time.Time) EpochDay {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return EpochDay(midnight.Unix() / secondsPerDay)
}

// Today returns the current local calendar day.
func Today() EpochDay {
	return EpochDayOf(time.Now())
}

// Time returns midnight UTC of the day.
func (d EpochDay) Time() time.Time {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC()
}

// AddDays returns the day n days after d (n may be negative).
func (d EpochDay) AddDays(n int) EpochDay {
	return d + EpochDay(n)
}

func (d EpochDay) String() string {
	return d.Time().Format(time.DateOnly)
}

// ParseEpochDay parses a YYYY-MM-DD date.
func ParseEpochDay(s string) (EpochDay, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return 0, err
	}
	return EpochDayOf(t), nil
}

func (d EpochDay) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *EpochDay) UnmarshalText(b []byte) error {
	day, err := ParseEpochDay(string(b))
	if err != nil {
		return err
	}
	*d = day
	return nil
}
