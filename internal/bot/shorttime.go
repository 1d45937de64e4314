package bot

import (
	"regexp"
	"strconv"
	"time"
)

var (
	shortTime = regexp.MustCompile(`^(?:(?P<years>[0-9])(?:years?|y))?` +
		`(?:(?P<months>[0-9]{1,2})(?:months?|mon?))?` +
		`(?:(?P<weeks>[0-9]{1,4})(?:weeks?|w))?` +
		`(?:(?P<days>[0-9]{1,5})(?:days?|d))?` +
		`(?:(?P<hours>[0-9]{1,5})(?:hours?|hr?))?` +
		`(?:(?P<minutes>[0-9]{1,5})(?:minutes?|m(?:in)?))?` +
		`(?:(?P<seconds>[0-9]{1,5})(?:seconds?|s(?:ec)?))?$`)
	discordTimestamp = regexp.MustCompile(`^<t:([0-9]+)(?::?[RFfDdTt])?>$`)
)

// ParseTime reads a short relative time such as "1h30m" or "2d", or a Discord
// timestamp such as "<t:1700000000:R>", relative to now.
func ParseTime(argument string, now time.Time) (time.Time, error) {
	match := shortTime.FindStringSubmatch(argument)
	if match == nil || match[0] == "" {
		ts := discordTimestamp.FindStringSubmatch(argument)
		if ts == nil {
			return time.Time{}, badArgument("invalid time provided")
		}
		seconds, err := strconv.ParseInt(ts[1], 10, 64)
		if err != nil {
			return time.Time{}, badArgument("invalid time provided")
		}
		return time.Unix(seconds, 0).UTC(), nil
	}

	values := make(map[string]int)
	for i, name := range shortTime.SubexpNames() {
		if name == "" || match[i] == "" {
			continue
		}
		values[name], _ = strconv.Atoi(match[i])
	}

	t := addMonths(now.UTC(), values["years"]*12+values["months"])
	t = t.AddDate(0, 0, values["weeks"]*7+values["days"])
	return t.Add(time.Duration(values["hours"])*time.Hour +
		time.Duration(values["minutes"])*time.Minute +
		time.Duration(values["seconds"])*time.Second), nil
}

// addMonths moves t by months, keeping the day of month unless the target
// month is shorter, in which case it lands on that month's last day.
func addMonths(t time.Time, months int) time.Time {
	if months == 0 {
		return t
	}
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, min(day, last)-1)
}
