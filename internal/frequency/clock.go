package frequency

import (
	"fmt"
	"sort"
	"time"
)

// Clock is a wall-clock time of day, exchanged as "HH:MM" (24h).
type Clock struct {
	Hour   int
	Minute int
}

func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) Valid() bool {
	return c.Hour >= 0 && c.Hour < 24 && c.Minute >= 0 && c.Minute < 60
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// After compares hour first, then minute.
func (c Clock) After(o Clock) bool {
	if c.Hour != o.Hour {
		return c.Hour > o.Hour
	}
	return c.Minute > o.Minute
}

// On places c on the calendar date of d, in d's location.
func (c Clock) On(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, c.Hour, c.Minute, 0, 0, d.Location())
}

func clockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute()}
}

func sortedClocks(in []Clock) []Clock {
	out := append([]Clock(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[j].After(out[i]) })
	return out
}

func formatClocks(in []Clock) []string {
	out := make([]string, 0, len(in))
	for _, c := range in {
		out = append(out, c.String())
	}
	return out
}
