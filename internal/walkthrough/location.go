package walkthrough

import (
	"strconv"
	"strings"
)

// LineRange is a 1-indexed inclusive line range
type LineRange struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

// ParsedLocation is a decoded "path:start-end,start-end" address
type ParsedLocation struct {
	Path   string      `json:"path"`
	Ranges []LineRange `json:"ranges"`
}

// ParseLocation decodes a location string. The path is everything before the
// last colon. Malformed range tokens are skipped; the parse fails only when
// there is no colon or no valid range remains.
func ParseLocation(location string) (*ParsedLocation, bool) {
	colon := strings.LastIndex(location, ":")
	if colon == -1 {
		return nil, false
	}

	path := location[:colon]
	var ranges []LineRange
	for _, token := range strings.Split(location[colon+1:], ",") {
		if r, ok := parseRange(token); ok {
			ranges = append(ranges, r)
		}
	}

	if len(ranges) == 0 {
		return nil, false
	}
	return &ParsedLocation{Path: path, Ranges: ranges}, true
}

// ValidLocation reports whether every range token of a location is well
// formed. ParseLocation tolerates bad tokens; stored locations must not
// carry any.
func ValidLocation(location string) bool {
	colon := strings.LastIndex(location, ":")
	if colon == -1 {
		return false
	}
	for _, token := range strings.Split(location[colon+1:], ",") {
		if _, ok := parseRange(token); !ok {
			return false
		}
	}
	return true
}

// parseRange decodes "N" or "N-M"
func parseRange(token string) (LineRange, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return LineRange{}, false
	}

	startStr, endStr, isRange := strings.Cut(token, "-")
	if !isRange {
		endStr = startStr
	}

	start, err := parseLine(startStr)
	if err != nil {
		return LineRange{}, false
	}
	end, err := parseLine(endStr)
	if err != nil {
		return LineRange{}, false
	}
	if start < 1 || start > end {
		return LineRange{}, false
	}
	return LineRange{StartLine: start, EndLine: end}, true
}

func parseLine(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// FormatLocation renders a path and ranges back to "path:start-end,...".
// Single lines are written as "N-N".
func FormatLocation(path string, ranges []LineRange) string {
	var b strings.Builder
	b.WriteString(path)
	b.WriteByte(':')
	for i, r := range ranges {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(r.StartLine))
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(r.EndLine))
	}
	return b.String()
}

// String implements fmt.Stringer
func (l *ParsedLocation) String() string {
	return FormatLocation(l.Path, l.Ranges)
}

// Single reports whether a range covers exactly one line
func (r LineRange) Single() bool {
	return r.StartLine == r.EndLine
}
