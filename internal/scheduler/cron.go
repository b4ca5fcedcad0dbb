package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Fields are the UTC calendar fields of a one-shot trigger.
type Fields struct {
	Minute int
	Hour   int
	Day    int
	Month  int
	Year   int
}

// CronFields decomposes t after converting it to UTC. Seconds are dropped.
func CronFields(t time.Time) Fields {
	u := t.UTC()
	return Fields{
		Minute: u.Minute(),
		Hour:   u.Hour(),
		Day:    u.Day(),
		Month:  int(u.Month()),
		Year:   u.Year(),
	}
}

func (f Fields) Time() time.Time {
	return time.Date(f.Year, time.Month(f.Month), f.Day, f.Hour, f.Minute, 0, 0, time.UTC)
}

// CronExpression returns a cron expression that matches only the UTC minute
// containing t, e.g. "cron(30 14 1 3 ? 2024)". Day-of-week is left open.
func CronExpression(t time.Time) string {
	f := CronFields(t)
	return fmt.Sprintf("cron(%d %d %d %d ? %d)", f.Minute, f.Hour, f.Day, f.Month, f.Year)
}

// ParseCronExpression decodes an expression produced by CronExpression back
// into its UTC instant. Wildcards, ranges and steps are rejected.
func ParseCronExpression(expr string) (time.Time, error) {
	body := strings.TrimSpace(expr)
	if !strings.HasPrefix(body, "cron(") || !strings.HasSuffix(body, ")") {
		return time.Time{}, fmt.Errorf("invalid cron expression %q", expr)
	}
	parts := strings.Fields(body[len("cron(") : len(body)-1])
	if len(parts) != 6 {
		return time.Time{}, fmt.Errorf("cron expression %q: expected 6 fields, got %d", expr, len(parts))
	}
	if parts[4] != "?" && parts[4] != "*" {
		return time.Time{}, fmt.Errorf("cron expression %q: day-of-week must be a wildcard", expr)
	}

	values := make([]int, 0, 5)
	for _, i := range []int{0, 1, 2, 3, 5} {
		v, err := strconv.Atoi(parts[i])
		if err != nil {
			return time.Time{}, fmt.Errorf("cron expression %q is not one-shot: field %d is %q", expr, i+1, parts[i])
		}
		values = append(values, v)
	}

	f := Fields{Minute: values[0], Hour: values[1], Day: values[2], Month: values[3], Year: values[4]}
	t := f.Time()
	if CronFields(t) != f {
		return time.Time{}, fmt.Errorf("cron expression %q does not name a valid instant", expr)
	}
	return t, nil
}
