package httpjson

import "strings"

// CookieValue extracts the named cookie from a raw cookie string of the
// form "a=1; b=2". Absence is not an error; ok reports whether the name
// was present.
func CookieValue(raw, name string) (value string, ok bool) {
	parts := strings.Split("; "+raw, "; "+name+"=")
	if len(parts) != 2 {
		return "", false
	}
	value, _, _ = strings.Cut(parts[1], ";")
	return value, true
}
