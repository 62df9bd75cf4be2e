package americanodds

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse converts a display string like "+450", "-166", or "166" to an
// American odds integer. "N/A" and empty strings report ok=false.
func Parse(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "n/a") {
		return 0, false
	}
	s = strings.TrimPrefix(s, "+")
	v, err := strconv.Atoi(s)
	if err != nil || v == 0 {
		return 0, false
	}
	return v, true
}

// Format renders an American odds integer with its conventional sign.
func Format(american int) string {
	if american > 0 {
		return fmt.Sprintf("+%d", american)
	}
	return strconv.Itoa(american)
}

// Better reports whether candidate pays better than current from the
// bettor's side: larger positive beats smaller positive, less negative
// beats more negative, and any positive beats any negative.
func Better(candidate, current int) bool {
	return payout(candidate) > payout(current)
}

// payout maps American odds to profit per unit staked, giving a single
// total order across positive and negative prices.
func payout(american int) float64 {
	if american == 0 {
		return -1
	}
	if american > 0 {
		return float64(american) / 100.0
	}
	return 100.0 / float64(-american)
}

// ToDecimal converts American odds to decimal odds.
func ToDecimal(american int) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("invalid American odds: cannot be 0")
	}
	if american > 0 {
		return (float64(american) / 100.0) + 1.0, nil
	}
	return (100.0 / float64(-american)) + 1.0, nil
}

// ImpliedProbability converts American odds to the implied win probability.
func ImpliedProbability(american int) (float64, error) {
	dec, err := ToDecimal(american)
	if err != nil {
		return 0, err
	}
	return 1.0 / dec, nil
}
