package trips

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const DateLayout = "2006-01-02"

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	printer     = message.NewPrinter(language.AmericanEnglish)
)

// IsValidDate reports whether s is a plausible yyyy-MM-dd trip date: year
// 2010 or later, month at most 12 and day between 1 and 31.
func IsValidDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	year, _ := strconv.Atoi(s[0:4])
	month, _ := strconv.Atoi(s[5:7])
	day, _ := strconv.Atoi(s[8:10])
	return year >= 2010 && month <= 12 && day >= 1 && day <= 31
}

// FormatDuration renders fractional hours as e.g. "2h", "~1h05m" or "~45m".
// A leading tilde marks durations rounded to the minute.
func FormatDuration(hours float64) string {
	total := int(math.Round(hours * 60))
	hr, mins := total/60, total%60

	var b strings.Builder
	if mins > 0 {
		b.WriteByte('~')
	}
	if hr > 0 {
		fmt.Fprintf(&b, "%dh", hr)
	}
	if mins > 0 {
		if hr > 0 {
			fmt.Fprintf(&b, "%02dm", mins)
		} else {
			fmt.Fprintf(&b, "%dm", mins)
		}
	}
	return b.String()
}

// FormatCurrency renders a USD amount with grouping separators, dropping a
// trailing ".00" ("$1,234.50", "$200").
func FormatCurrency(amount float64) string {
	s := "$" + printer.Sprintf("%.2f", amount)
	return strings.TrimSuffix(s, ".00")
}

// FormatCount renders an integer with grouping separators.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}
