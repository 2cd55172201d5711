package forms

import "strings"

// ParsePhone strips formatting down to the digits. The API stores digits
// only; display formatting is reapplied on the way out.
func ParsePhone(text string) string {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhone renders ten digits as (xxx) xxx-xxxx. Anything else is
// returned digits-only rather than guessed at.
func FormatPhone(text string) string {
	digits := ParsePhone(text)
	if len(digits) != 10 {
		return digits
	}
	return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
}
