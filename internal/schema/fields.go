package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/albapepper/bbref-tables/internal/provider"
)

// dateLayouts are the month/day/year renderings the site uses, tried in order.
var dateLayouts = []string{
	"Mon, Jan 2, 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"20060102",
}

// ParseDate parses a date cell without regard to locale or time zone.
func ParseDate(s string) (time.Time, error) {
	s = strings.Join(strings.Fields(s), " ")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized date %q", provider.ErrMalformedField, s)
}

// SplitInjury splits an injury report description into status, injury and
// free-text description:
//
//	"Out (Ankle) - Expected to miss 2 weeks" → "Out", "Ankle", "Expected to miss 2 weeks"
//
// The description is the text after the first hyphen following the closing
// parenthesis, so hyphenated injuries ("Day-To-Day (Knee)") split cleanly.
func SplitInjury(desc string) (status, injury, description string, err error) {
	open := strings.Index(desc, "(")
	if open < 0 {
		return "", "", "", fmt.Errorf("%w: no parenthesized injury in %q", provider.ErrMalformedField, desc)
	}
	closing := strings.Index(desc[open:], ")")
	if closing < 0 {
		return "", "", "", fmt.Errorf("%w: unclosed parenthesis in %q", provider.ErrMalformedField, desc)
	}
	closing += open

	status = strings.TrimSpace(desc[:open])
	injury = strings.TrimSpace(desc[open+1 : closing])
	rest := desc[closing+1:]
	if i := strings.Index(rest, "-"); i >= 0 {
		rest = rest[i+1:]
	}
	return status, injury, strings.TrimSpace(rest), nil
}

func splitInjury(cell string) ([]string, error) {
	status, injury, description, err := SplitInjury(cell)
	if err != nil {
		return nil, err
	}
	return []string{description, status, injury}, nil
}

// inactiveReasons are the texts a box score shows across the stat columns of
// a player who did not take the floor.
var inactiveReasons = []string{
	"Did Not Play",
	"Did Not Dress",
	"Not With Team",
	"Player Suspended",
}

// splitMinutes separates minutes played from an inactive reason. A regular
// row keeps its minutes and gets no status; an inactive row gets no minutes.
func splitMinutes(cell string) ([]string, error) {
	for _, reason := range inactiveReasons {
		if strings.HasPrefix(cell, reason) {
			return []string{"", cell}, nil
		}
	}
	return []string{cell, ""}, nil
}

// splitStandingsTeam cleans a standings team name and resolves its
// abbreviation.
func splitStandingsTeam(cell string) ([]string, error) {
	name := CleanStandingsName(cell)
	abbr, err := TeamAbbr(name)
	if err != nil {
		return nil, err
	}
	return []string{name, abbr}, nil
}
