// Package address converts between free-text postal addresses and the
// structured record used on the wire. Parsing is best-effort by design:
// malformed input degrades to a street-only record instead of failing, and
// callers treat the incomplete result as "needs user correction".
package address

import (
	"fmt"
	"regexp"
	"strings"
)

// Record is a structured postal address.
type Record struct {
	Street  string
	City    string
	State   string
	ZipCode string
}

// canonical matches the 3-comma display form "street, city, STATE zip" with
// a two-letter state and a 5- or 9-digit zip as the trailing tokens.
var canonical = regexp.MustCompile(`^(.+),\s*(.+),\s*([A-Za-z]{2})\s+(\d{5}(?:-\d{4})?)$`)

// Parse converts free text into a Record. It tries the most specific layout
// first and falls back to looser comma/whitespace splits; on total failure
// the whole input becomes the street with the remaining fields empty.
func Parse(text string) Record {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Record{Street: text}
	}

	if m := canonical.FindStringSubmatch(trimmed); m != nil {
		return Record{
			Street:  strings.TrimSpace(m[1]),
			City:    strings.TrimSpace(m[2]),
			State:   strings.ToUpper(m[3]),
			ZipCode: m[4],
		}
	}

	parts := splitTrim(trimmed, ",")
	switch {
	case len(parts) >= 4:
		// "street, city, state, zip"
		return Record{Street: parts[0], City: parts[1], State: parts[2], ZipCode: parts[3]}
	case len(parts) == 3:
		// "street, city, state zip"
		if state, zip, ok := splitStateZip(parts[2]); ok {
			return Record{Street: parts[0], City: parts[1], State: state, ZipCode: zip}
		}
		return Record{Street: parts[0], City: parts[1], State: parts[2]}
	case len(parts) == 2:
		// "street, city state zip"
		fields := strings.Fields(parts[1])
		if len(fields) >= 3 {
			return Record{
				Street:  parts[0],
				City:    strings.Join(fields[:len(fields)-2], " "),
				State:   fields[len(fields)-2],
				ZipCode: fields[len(fields)-1],
			}
		}
	}

	return Record{Street: trimmed}
}

// Format renders the canonical 3-comma display form. Every field is trimmed
// before formatting.
func Format(r Record) string {
	return fmt.Sprintf("%s, %s, %s %s",
		strings.TrimSpace(r.Street),
		strings.TrimSpace(r.City),
		strings.TrimSpace(r.State),
		strings.TrimSpace(r.ZipCode),
	)
}

// IsComplete reports whether every component is populated.
func (r Record) IsComplete() bool {
	return r.Street != "" && r.City != "" && r.State != "" && r.ZipCode != ""
}

// IsEmpty reports whether the record carries no data at all.
func (r Record) IsEmpty() bool {
	return r.Street == "" && r.City == "" && r.State == "" && r.ZipCode == ""
}

func splitTrim(s, sep string) []string {
	raw := strings.Split(s, sep)
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// splitStateZip splits a "STATE 12345" tail into its two components. The zip
// may contain internal spaces in degraded input; everything after the first
// token is joined back together.
func splitStateZip(tail string) (string, string, bool) {
	fields := strings.Fields(tail)
	if len(fields) < 2 {
		return "", "", false
	}
	return fields[0], strings.Join(fields[1:], " "), true
}
