package utils

import "strings"

// Ptr returns a pointer to a copy of v. Match slots and winners take these
// so no two matches ever share the same id pointer.
func Ptr[T any](v T) *T {
	return &v
}

// OrZero dereferences v, or returns T's zero value for nil.
func OrZero[T comparable](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

// StringOrNil trims s and maps an empty result to nil, the way optional
// columns such as team_name are stored.
func StringOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
