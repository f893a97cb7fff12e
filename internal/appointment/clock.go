package appointment

import (
	"fmt"
	"strings"
	"time"
)

const (
	clock24     = "15:04"
	clock12     = "3:04 PM"
	clock12Show = "03:04 PM"
	dateLayout  = "2006-01-02"
)

// ParseClock normalizes a visit time to 24-hour HH:MM. value may be 24-hour
// ("14:30"), or 12-hour with the meridiem either inside value ("2:30 pm")
// or passed separately.
func ParseClock(value, meridiem string) (string, error) {
	v := strings.ToUpper(strings.TrimSpace(value))
	m := strings.ToUpper(strings.TrimSpace(meridiem))
	if v == "" {
		return "", fmt.Errorf("time is empty")
	}

	if m != "" {
		if m != "AM" && m != "PM" {
			return "", fmt.Errorf("meridiem must be AM or PM, got %q", meridiem)
		}
		if strings.HasSuffix(v, "AM") || strings.HasSuffix(v, "PM") {
			return "", fmt.Errorf("meridiem given twice in %q", value)
		}
		v = v + " " + m
	}

	if strings.HasSuffix(v, "AM") || strings.HasSuffix(v, "PM") {
		// "2:30PM" is accepted as well as "2:30 PM"
		v = strings.TrimSpace(v[:len(v)-2]) + " " + v[len(v)-2:]
		t, err := time.Parse(clock12, v)
		if err != nil {
			return "", fmt.Errorf("%q is not a 12-hour time", value)
		}
		return t.Format(clock24), nil
	}

	t, err := time.Parse(clock24, v)
	if err != nil {
		return "", fmt.Errorf("%q is not a 24-hour time", value)
	}
	return t.Format(clock24), nil
}

// FormatTime12 renders a stored time for display, e.g. "02:05 PM". Records
// written by older clients hold a full timestamp, which is shown in loc.
// Anything unrecognized is returned unchanged.
func FormatTime12(stored string, loc *time.Location) string {
	if stored == "" {
		return ""
	}
	if t, err := time.Parse(clock24, stored); err == nil {
		return t.Format(clock12Show)
	}
	if t, err := time.Parse(time.RFC3339Nano, stored); err == nil {
		if loc == nil {
			loc = time.Local
		}
		return t.In(loc).Format(clock12Show)
	}
	return stored
}

func parseDate(value string) (string, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return "", fmt.Errorf("%q is not a YYYY-MM-DD date", value)
	}
	return t.Format(dateLayout), nil
}
