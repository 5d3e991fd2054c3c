package chain

import (
	"fmt"
	"math/big"
	"strings"
)

// FormatUnits renders raw base units as a fixed-point decimal string with
// exactly decimals fractional digits (1_500_000 at 6 → "1.500000").
func FormatUnits(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return ""
	}
	if decimals == 0 {
		return raw.String()
	}
	neg := raw.Sign() < 0
	abs := new(big.Int).Abs(raw)
	div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	q, r := new(big.Int).QuoRem(abs, div, new(big.Int))

	frac := r.String()
	s := q.String() + "." + strings.Repeat("0", int(decimals)-len(frac)) + frac
	if neg {
		s = "-" + s
	}
	return s
}

// ParseUnits converts a human-readable decimal quantity into base units.
// "5" at 6 decimals → 5_000_000. More fractional digits than decimals is an
// error rather than a silent truncation.
func ParseUnits(human string, decimals uint8) (*big.Int, error) {
	s := strings.TrimSpace(human)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("negative amount %q", human)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", human, decimals)
	}
	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))

	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", human)
	}
	return n, nil
}
