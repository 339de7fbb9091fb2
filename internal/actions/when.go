package actions

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	// trailingMeridiem matches a 12-hour clock time at the end of the text
	trailingMeridiem = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*([ap])\.?m\.?$`)

	// clockOnly matches a bare 24-hour time
	clockOnly = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?$`)

	weekdays = map[string]bool{
		"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
		"friday": true, "saturday": true, "sunday": true,
		"mon": true, "tue": true, "tues": true, "wed": true, "thu": true,
		"thur": true, "thurs": true, "fri": true, "sat": true, "sun": true,
	}

	// fallbackLayouts cover spoken forms dateparse does not recognise
	fallbackLayouts = []string{
		"January 2, 2006 15:04",
		"January 2 2006 15:04",
		"Jan 2, 2006 15:04",
		"Jan 2 2006 15:04",
		"2 January 2006 15:04",
		"2 Jan 2006 15:04",
		"2006-01-02 15:04",
	}
)

// parseWhen reads a free-form date and time in loc. A leading weekday is
// ignored, 12-hour times are accepted and a bare time means that time today
func parseWhen(value string, loc *time.Location, now time.Time) (time.Time, error) {
	text := strings.TrimSpace(value)
	if text == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	text = stripWeekday(text)
	text = to24Hour(text)

	if clockOnly.MatchString(text) {
		return clockToday(text, loc, now)
	}

	if t, err := dateparse.ParseIn(text, loc); err == nil {
		return t, nil
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, text, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}

// stripWeekday drops a leading weekday name such as "Thursday," or "Thu"
func stripWeekday(text string) string {
	first, rest, found := strings.Cut(text, " ")
	if !found {
		return text
	}

	if weekdays[strings.ToLower(strings.TrimRight(first, ",."))] {
		return strings.TrimSpace(rest)
	}
	return text
}

// to24Hour rewrites a trailing "10am" or "3:30 p.m." as "10:00" or "15:30"
func to24Hour(text string) string {
	m := trailingMeridiem.FindStringSubmatchIndex(text)
	if m == nil {
		return text
	}

	hour, _ := strconv.Atoi(text[m[2]:m[3]])
	if hour < 1 || hour > 12 {
		return text
	}

	minute := "00"
	if m[4] >= 0 {
		minute = text[m[4]:m[5]]
	}

	pm := strings.EqualFold(text[m[6]:m[7]], "p")
	switch {
	case pm && hour != 12:
		hour += 12
	case !pm && hour == 12:
		hour = 0
	}

	prefix := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text[:m[0]]), " at"))
	clock := fmt.Sprintf("%02d:%s", hour, minute)
	if prefix == "" {
		return clock
	}
	return prefix + " " + clock
}

// clockToday places a bare "15:04" or "15:04:05" on today's date in loc
func clockToday(text string, loc *time.Location, now time.Time) (time.Time, error) {
	layout := "15:04"
	if strings.Count(text, ":") == 2 {
		layout = "15:04:05"
	}

	clock, err := time.Parse(layout, text)
	if err != nil {
		return time.Time{}, err
	}

	today := now.In(loc)
	return time.Date(today.Year(), today.Month(), today.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, loc), nil
}
