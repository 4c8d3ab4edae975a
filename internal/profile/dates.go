package profile

import (
	"log/slog"
	"strings"
	"time"
)

// dateFormats are tried in order when parsing a single date token.
var dateFormats = []string{
	"2006-01",      // 2021-03
	"2006/01",      // 2021/03
	"01/2006",      // 03/2021
	"2006",         // 2021
	"January 2006", // March 2021
	"Jan 2006",     // Mar 2021
}

// Dates holds the parsed form of a duration string such as
// "2021-03 - Present". Zero Start/End mean "unparsed"; parsing failures
// are never errors, only logged warnings.
type Dates struct {
	Start   time.Time
	End     time.Time
	Ongoing bool
}

// HasStart reports whether the start date parsed.
func (d Dates) HasStart() bool { return !d.Start.IsZero() }

// HasEnd reports whether the end date parsed. Always false for ongoing
// durations.
func (d Dates) HasEnd() bool { return !d.End.IsZero() }

// ParseDuration parses a duration string into start/end dates and an
// ongoing flag.
//
// The substrings "present" and "current" (case-insensitive) signal an
// ongoing role. En-dashes and em-dashes are normalized to hyphens before
// splitting on " - ". Unparseable dates are left zero with a warning.
func ParseDuration(duration string, logger *slog.Logger) Dates {
	if logger == nil {
		logger = slog.Default()
	}
	if duration == "" {
		return Dates{}
	}

	lower := strings.ToLower(duration)
	ongoing := strings.Contains(lower, "present") || strings.Contains(lower, "current")

	normalized := strings.NewReplacer("–", "-", "—", "-").Replace(duration)
	parts := strings.Split(normalized, " - ")
	if len(parts) < 2 {
		return Dates{Ongoing: ongoing}
	}

	d := Dates{Ongoing: ongoing}
	d.Start = ParseDate(strings.TrimSpace(parts[0]), logger)
	if !ongoing {
		d.End = ParseDate(strings.TrimSpace(parts[1]), logger)
	}
	return d
}

// ParseDate parses a single date token by trying a fixed ordered list of
// formats. Returns the zero time with a warning if none match; callers
// treat an unparsed date as absent, never as an error.
func ParseDate(s string, logger *slog.Logger) time.Time {
	if logger == nil {
		logger = slog.Default()
	}
	if s == "" {
		return time.Time{}
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}

	logger.Warn("could not parse date", "value", s)
	return time.Time{}
}
