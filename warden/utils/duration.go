package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/wardenbot/warden/warden/database/models"
)

var durationPattern = regexp.MustCompile(
	`^((?P<years>\d+) ?(years|year|Y|y) ?)?` +
		`((?P<months>\d+) ?(months|month|mo) ?)?` +
		`((?P<weeks>\d+) ?(weeks|week|W|w) ?)?` +
		`((?P<days>\d+) ?(days|day|D|d) ?)?` +
		`((?P<hours>\d+) ?(hours|hour|H|h) ?)?` +
		`((?P<minutes>\d+) ?(minutes|minute|M|m) ?)?` +
		`((?P<seconds>\d+) ?(seconds|second|S|s))?$`,
)

var unitSeconds = map[string]int64{
	"years":   365 * 24 * 3600,
	"months":  30 * 24 * 3600,
	"weeks":   7 * 24 * 3600,
	"days":    24 * 3600,
	"hours":   3600,
	"minutes": 60,
	"seconds": 1,
}

// ParseDuration converts a duration string like "3d2h" or "1 week" into
// seconds. The literal "permanent" (or "forever") yields the permanent
// sentinel. Units must be given in descending order of magnitude.
func ParseDuration(input string) (int64, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	switch s {
	case "permanent", "perm", "forever":
		return models.PermanentDuration, nil
	case "":
		return 0, fmt.Errorf("empty duration string")
	}

	match := durationPattern.FindStringSubmatch(s)
	if match == nil {
		return 0, fmt.Errorf("%q is not a valid duration string", input)
	}

	var total int64
	matched := false
	for i, name := range durationPattern.SubexpNames() {
		if name == "" || match[i] == "" {
			continue
		}
		value, err := strconv.ParseInt(match[i], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a valid duration string", input)
		}
		total += value * unitSeconds[name]
		matched = true
	}
	if !matched {
		return 0, fmt.Errorf("%q is not a valid duration string", input)
	}

	return total, nil
}

// HumanizeDuration renders a duration in seconds as a friendly string with
// at most two units, e.g. "3 days and 2 hours". The permanent sentinel
// renders as "permanent" and sub-second durations as "instant".
func HumanizeDuration(seconds int64) string {
	if seconds == models.PermanentDuration {
		return "permanent"
	}

	units := []struct {
		name string
		secs int64
	}{
		{"day", 24 * 3600},
		{"hour", 3600},
		{"minute", 60},
		{"second", 1},
	}

	var parts []string
	remaining := seconds
	for _, unit := range units {
		value := remaining / unit.secs
		remaining %= unit.secs
		if value > 0 {
			parts = append(parts, stringifyUnit(value, unit.name))
		}
		if len(parts) == 2 {
			break
		}
	}

	switch len(parts) {
	case 0:
		return "instant"
	case 1:
		return parts[0]
	default:
		return fmt.Sprintf("%s and %s", parts[0], parts[1])
	}
}

func stringifyUnit(value int64, unit string) string {
	if value == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", value, unit)
}
