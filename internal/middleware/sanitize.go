package middleware

import "strings"

var logEscaper = strings.NewReplacer(
	"\r\n", `\r\n`,
	"\r", `\r`,
	"\n", `\n`,
	"\t", `\t`,
	"\x00", `\0`,
	"\x1b", `\x1b`,
)

const maxLogField = 1000

// SanitizeLog escapes control characters in user-controlled strings before
// they reach the log stream, preventing log injection from fields like
// names, addresses and search terms. Very long values are truncated.
func SanitizeLog(input string) string {
	s := logEscaper.Replace(input)
	if len(s) > maxLogField {
		s = s[:maxLogField] + "...[truncated]"
	}
	return s
}
