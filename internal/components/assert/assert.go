// Package assert holds construction-time checks for arguments that can only
// be wrong because of a programming error.
package assert

import "fmt"

// NotNil panics when value is nil, name identifies the argument.
func NotNil(name string, value any) {
	if value == nil {
		panic(fmt.Sprintf("assert: %s must not be nil", name))
	}
}

// NotEmptyStr panics when str is empty.
func NotEmptyStr(name, str string) {
	if str == "" {
		panic(fmt.Sprintf("assert: %s must not be empty", name))
	}
}
