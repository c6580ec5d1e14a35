package sheet

import (
	"regexp"
	"strings"
)

var (
	displayDollar  = regexp.MustCompile(`(?s)\$\$(.+?)\$\$`)
	displayBracket = regexp.MustCompile(`(?s)\\\[(.+?)\\\]`)
)

// NormalizeMath collapses the over-escaped backslashes stored upstream and
// rewrites display math ($$..$$, \[..\]) into inline \(..\) so formulas never
// force a paragraph break in flowed text.
//
// The rewrite runs to a fixed point, so NormalizeMath(NormalizeMath(s)) equals
// NormalizeMath(s) for every s.
func NormalizeMath(raw string) string {
	s := raw
	for {
		next := rewriteOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func rewriteOnce(s string) string {
	for strings.Contains(s, `\\`) {
		s = strings.ReplaceAll(s, `\\`, `\`)
	}
	s = displayDollar.ReplaceAllStringFunc(s, inlineFrom(displayDollar))
	s = displayBracket.ReplaceAllStringFunc(s, inlineFrom(displayBracket))
	return s
}

func inlineFrom(re *regexp.Regexp) func(string) string {
	return func(m string) string {
		sub := re.FindStringSubmatch(m)
		if len(sub) < 2 {
			return m
		}
		return `\(` + strings.TrimSpace(sub[1]) + `\)`
	}
}
