package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var amountPattern = regexp.MustCompile(`^(\d+)(?:\.(\d{1,2}))?$`)

// ParseAmount parses an invoice total written in currency units, like
// "1250", "1250.5" or "1,250.50", and returns it in cents.
func ParseAmount(input string) (int64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(input), ",", "")
	matches := amountPattern.FindStringSubmatch(clean)
	if matches == nil {
		return 0, NewAmountError(input)
	}

	units, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil || units > (1<<62)/100 {
		return 0, NewAmountError(input)
	}

	var cents int64
	if frac := matches[2]; frac != "" {
		if len(frac) == 1 {
			frac += "0"
		}
		cents, _ = strconv.ParseInt(frac, 10, 64)
	}
	return units*100 + cents, nil
}
