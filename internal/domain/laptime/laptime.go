// Package laptime parses and formats skating times and the localized
// date strings used in status messages.
package laptime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Parse converts a time string to seconds. Accepted forms are plain
// seconds ("34.56"), minutes:seconds ("3:54.280") and
// hours:minutes:seconds ("1:02:34.56"). Returns false when the input
// is empty or malformed.
func Parse(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, false
		}
		return v, true
	case 2:
		mins, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, false
		}
		secs, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return 0, false
		}
		return float64(mins)*60 + secs, true
	case 3:
		hours, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, false
		}
		mins, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, false
		}
		secs, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return 0, false
		}
		return float64(hours)*3600 + float64(mins)*60 + secs, true
	default:
		return 0, false
	}
}

// Format renders seconds as "ss.cc" below a minute and "m:ss.cc" above.
func Format(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.2f", seconds)
	}
	mins := int(seconds) / 60
	secs := seconds - float64(mins)*60
	return fmt.Sprintf("%d:%05.2f", mins, secs)
}

// FormatDiff renders a signed difference, e.g. "+0.42" or "-1.07".
func FormatDiff(diff float64) string {
	if diff >= 0 {
		return fmt.Sprintf("+%.2f", diff)
	}
	return fmt.Sprintf("%.2f", diff)
}

// FormatPace renders a lap pace in seconds per 400m lap.
func FormatPace(secondsPerLap float64) string {
	if secondsPerLap <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1fs/400m", secondsPerLap)
}

// Dutch calendar names for status messages. The dashboard audience is
// Dutch and the upstream messages always were.
var (
	dutchWeekdays = [...]string{"zondag", "maandag", "dinsdag", "woensdag", "donderdag", "vrijdag", "zaterdag"}
	dutchMonths   = [...]string{"januari", "februari", "maart", "april", "mei", "juni", "juli", "augustus", "september", "oktober", "november", "december"}
)

// FormatDutchDate renders t as "zaterdag 21 december" in the given
// location. A nil location falls back to the time's own zone.
func FormatDutchDate(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%s %d %s", dutchWeekdays[t.Weekday()], t.Day(), dutchMonths[t.Month()-1])
}

// FormatClock renders t as "15:04" in the given location.
func FormatClock(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("15:04")
}

// Round2 rounds to two decimals, matching the precision upstream
// providers report splits in.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
