package util

import (
	"errors"
	"fmt"
	"strings"
)

// FormatErrorList condenses errList into one error with one indexed line per
// entry. It returns nil for an empty list.
func FormatErrorList(errList []error) error {
	if !HasErrors(errList) {
		return nil
	}
	var b strings.Builder
	for i, e := range errList {
		fmt.Fprintf(&b, "\t[%d] %v\n", i, e)
	}
	return errors.New(strings.TrimRight(b.String(), "\n"))
}

// HasErrors reports whether errList contains any errors.
func HasErrors(errList []error) bool {
	return len(errList) > 0
}
