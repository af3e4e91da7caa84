package moderation

import (
	"regexp"
	"strconv"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/errors"
)

var durationPart = regexp.MustCompile(`(\d+)([dhm])`)

// maxDuration keeps the sum far away from int64 overflow
const maxDuration = 100 * 365 * 24 * time.Hour

// ParseDuration sums every "<n>d", "<n>h" and "<n>m" part of s, so
// "3d 2h 1m" and "1d1d" are both valid. Anything else in s is ignored. A
// total of zero is rejected.
func ParseDuration(s string) (time.Duration, error) {
	var total time.Duration
	for _, m := range durationPart.FindAllStringSubmatch(s, -1) {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || n > int64(maxDuration/time.Minute) {
			return 0, errors.Validation("ParseDuration", "duration %q is too long", s)
		}

		var unit time.Duration
		switch m[2] {
		case "d":
			unit = 24 * time.Hour
		case "h":
			unit = time.Hour
		case "m":
			unit = time.Minute
		}
		if time.Duration(n) > (maxDuration-total)/unit {
			return 0, errors.Validation("ParseDuration", "duration %q is too long", s)
		}
		total += time.Duration(n) * unit
	}

	if total <= 0 {
		return 0, errors.Validation("ParseDuration", "invalid duration %q, use e.g. 3d 2h 1m", s)
	}
	return total, nil
}
