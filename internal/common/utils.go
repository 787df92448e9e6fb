package common

import "strings"

// HasAny returns true if s contains any of the substrings, ignoring case.
func HasAny(s string, subs ...string) bool {
	s = strings.ToUpper(s)
	for _, sub := range subs {
		if strings.Contains(s, strings.ToUpper(sub)) {
			return true
		}
	}
	return false
}
