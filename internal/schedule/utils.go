package schedule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethanbaker/office-assistant/internal/apperrors"
	"google.golang.org/api/calendar/v3"
)

// errMalformedEvent marks a listed event without the fields we report
var errMalformedEvent = errors.New("malformed event")

// Summarize reduces events to their start and summary. The start is the
// dateTime, or the date for all-day events. An event missing either field
// yields an ErrValidation error
func Summarize(events []*calendar.Event) ([]UpcomingEvent, error) {
	summaries := make([]UpcomingEvent, 0, len(events))

	for i, event := range events {
		if event == nil || event.Start == nil {
			return nil, apperrors.Wrap(apperrors.ErrValidation, errMalformedEvent, "event %d has no start", i)
		}

		start := event.Start.DateTime
		if start == "" {
			start = event.Start.Date
		}
		if start == "" {
			return nil, apperrors.Wrap(apperrors.ErrValidation, errMalformedEvent, "event %d has an empty start", i)
		}
		if event.Summary == "" {
			return nil, apperrors.Wrap(apperrors.ErrValidation, errMalformedEvent, "event %d has no summary", i)
		}

		summaries = append(summaries, UpcomingEvent{Start: start, Summary: event.Summary})
	}

	return summaries, nil
}

// FormatUpcoming renders events as a bracketed list of start/summary pairs,
// e.g. [{'start': '2025-05-01T10:00:00+02:00', 'summary': 'Standup'}]
func FormatUpcoming(events []UpcomingEvent) string {
	var b strings.Builder

	b.WriteString("[")
	for i, event := range events {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "{'start': %s, 'summary': %s}", quote(event.Start), quote(event.Summary))
	}
	b.WriteString("]")

	return b.String()
}

// quote wraps a value in single quotes, escaping backslashes and quotes
func quote(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `'`, `\'`)
	return "'" + value + "'"
}
