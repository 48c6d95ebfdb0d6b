package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ToMinorUnits converts a major-unit amount (34.97) to rounded minor units (3497).
// The amount is rounded half away from zero at its shortest decimal form, so 1.005
// becomes 101 even though 1.005*100 is just below 100.5 as a float.
func ToMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
}

// FormatUSD renders an amount the way the storefront displays prices, e.g. "$1,234.50".
func FormatUSD(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + frac
}
