// Package timecode renders and parses the short clock strings used in
// chapter titles and logs.
package timecode

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders seconds as M:SS below one hour and H:MM:SS from one
// hour up. Fractional seconds are truncated.
func Format(seconds float64) string {
	total := int(seconds)
	mins := total / 60
	secs := total % 60
	hours := mins / 60
	mins %= 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, mins, secs)
	}
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// Parse converts a clock string back to whole seconds. It accepts the
// M:SS and H:MM:SS shapes that Format produces.
func Parse(clock string) (int, error) {
	parts := strings.Split(clock, ":")
	fields := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, fmt.Errorf("parse clock %q: %w", clock, err)
		}
		fields = append(fields, n)
	}
	switch len(fields) {
	case 3:
		return fields[0]*3600 + fields[1]*60 + fields[2], nil
	case 2:
		return fields[0]*60 + fields[1], nil
	default:
		return 0, fmt.Errorf("parse clock %q: want M:SS or H:MM:SS", clock)
	}
}
