package source

import (
	"strconv"
	"strings"
)

// ParseCount converts a loosely formatted numeric cell into an int.
// The scraped table and the sheets use thousands separators and placeholders
// such as "N/A"; anything that does not survive cleanup counts as zero.
func ParseCount(text string) int {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, ",", "")
	if text == "" {
		return 0
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0
	}
	return n
}
