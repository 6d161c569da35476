// Package address implements syntactic email address validation.
//
// The pattern deliberately matches the loose check used by the browser form:
// something before an @, something after it, and at least one dot in the
// domain part. Deliverability is the relay's problem, not ours.
package address

import "regexp"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValid reports whether addr looks like an email address.
func IsValid(addr string) bool {
	return emailPattern.MatchString(addr)
}

// Partition splits addrs into valid and invalid addresses, preserving input
// order. Every input element lands in exactly one of the two slices.
func Partition(addrs []string) (valid, invalid []string) {
	valid = make([]string, 0, len(addrs))
	invalid = make([]string, 0)
	for _, a := range addrs {
		if IsValid(a) {
			valid = append(valid, a)
		} else {
			invalid = append(invalid, a)
		}
	}
	return valid, invalid
}

// FirstInvalid scans the given lists in order and returns the first address
// that fails the syntactic check. Scanning stops at the first offender.
func FirstInvalid(lists ...[]string) (string, bool) {
	for _, list := range lists {
		for _, a := range list {
			if !IsValid(a) {
				return a, true
			}
		}
	}
	return "", false
}
