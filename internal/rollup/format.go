package rollup

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Mode selects a currency presentation. Callers choose explicitly; no mode
// is implied by the magnitude of the value.
type Mode string

const (
	// ModeFull renders whole rupees with Indian digit grouping.
	ModeFull Mode = "full"
	// ModeThreshold switches to crore and lakh above those magnitudes and
	// falls back to ModeFull below a lakh.
	ModeThreshold Mode = "threshold"
	// ModeCompact behaves like ModeThreshold but renders small values in
	// thousands.
	ModeCompact Mode = "compact"
)

const rupee = "₹"

var (
	crore    = decimal.NewFromInt(10_000_000)
	lakh     = decimal.NewFromInt(100_000)
	thousand = decimal.NewFromInt(1_000)
)

// ParseMode maps a query value to a Mode, defaulting to ModeFull.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeThreshold:
		return ModeThreshold
	case ModeCompact:
		return ModeCompact
	default:
		return ModeFull
	}
}

// Format renders v in the given mode.
func Format(v decimal.Decimal, mode Mode) string {
	switch mode {
	case ModeThreshold:
		return FormatINRThreshold(v)
	case ModeCompact:
		return FormatINRCompact(v)
	default:
		return FormatINR(v)
	}
}

// FormatINR renders v as whole rupees, e.g. ₹12,34,567.
func FormatINR(v decimal.Decimal) string {
	r := v.Round(0)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Neg()
	}
	return sign + rupee + groupIndian(r.String())
}

// FormatINRThreshold renders ₹X.XX Cr, ₹X.XX L or full rupees.
func FormatINRThreshold(v decimal.Decimal) string {
	if s, ok := scaled(v); ok {
		return s
	}
	return FormatINR(v)
}

// FormatINRCompact renders ₹X.XX Cr, ₹X.XX L or ₹X.Xk.
func FormatINRCompact(v decimal.Decimal) string {
	if s, ok := scaled(v); ok {
		return s
	}
	return fmt.Sprintf("%s%sk", rupee, v.Div(thousand).StringFixed(1))
}

func scaled(v decimal.Decimal) (string, bool) {
	switch {
	case v.GreaterThanOrEqual(crore):
		return fmt.Sprintf("%s%s Cr", rupee, v.Div(crore).StringFixed(2)), true
	case v.GreaterThanOrEqual(lakh):
		return fmt.Sprintf("%s%s L", rupee, v.Div(lakh).StringFixed(2)), true
	}
	return "", false
}

// groupIndian inserts separators the en-IN way: the last three digits form
// one group, every group before them has two.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(append(groups, tail), ",")
}
