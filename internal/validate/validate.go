package validate

import (
	"regexp"
	"strings"
	"time"
)

// DateLayout is the fixed calendar format used everywhere in the API.
const DateLayout = "2006-01-02"

var (
	reName    = regexp.MustCompile(`^[a-zA-Z\s.,'-]+$`)
	reEmail   = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reDigits  = regexp.MustCompile(`[^0-9]`)
	rePrefix  = regexp.MustCompile(`^(08|628|62|8)`)
	reHTMLTag = regexp.MustCompile(`<[^>]*>`)
)

// Name trims and checks length [3,255] and the allowed charset
// (letters, spaces, and .,'- punctuation). Returns the trimmed value.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 3 || len(s) > 255 {
		return "", false
	}
	return s, reName.MatchString(s)
}

// Email lower-cases, trims and shape-checks an address. The normalized
// (lower-cased) form is what callers persist.
func Email(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || len(s) > 255 {
		return "", false
	}
	if strings.Count(s, "@") != 1 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Phone strips non-digits and checks the Indonesian mobile shape:
// 10-15 digits starting with 08, 628, 62 or 8. The digits-only form is
// what callers persist.
func Phone(s string) (string, bool) {
	s = reDigits.ReplaceAllString(s, "")
	if len(s) < 10 || len(s) > 15 {
		return "", false
	}
	return s, rePrefix.MatchString(s)
}

// MemberCategory is a case-sensitive whitelist check.
func MemberCategory(s string) bool {
	return s == "Student" || s == "Faculty" || s == "General"
}

// Address strips HTML tags and enforces the 500-char cap. Empty input is
// valid; callers substitute the placeholder.
func Address(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	s = reHTMLTag.ReplaceAllString(s, "")
	if len(s) > 500 {
		return "", false
	}
	return s, true
}

// Date parses under the fixed layout and rejects anything that does not
// round-trip (e.g. 2024-02-31).
func Date(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil || t.Format(DateLayout) != s {
		return time.Time{}, false
	}
	return t, true
}

// Condition checks the return-condition whitelist.
func Condition(s string) bool {
	return s == "Good" || s == "Damaged"
}

// TitleCase capitalizes the first letter of every space-separated word,
// matching how member names are stored.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
