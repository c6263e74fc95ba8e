package traits

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatValue formats v with 17 significant digits so that ParseValue
// returns the identical float64.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 17, 64)
}

// ParseValue parses a persisted number. NaN and infinities are rejected.
func ParseValue(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}
