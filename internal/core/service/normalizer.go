package service

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeName returns the lookup key for a user or role name: the
// language-neutral upper-case form. A Caser is stateful, so one is built per
// call instead of being shared between goroutines.
func NormalizeName(name string) string {
	return cases.Upper(language.Und).String(name)
}
