package util

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	reLineBreak  = regexp.MustCompile(`\r\n|\r|\n`)
	reFileUnsafe = regexp.MustCompile(`[./]`)
)

func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	return reLineBreak.Split(text, -1)
}

// NonBlankLines returns the trimmed lines of text, skipping blank ones.
func NonBlankLines(text string) []string {
	var out []string
	for _, line := range SplitLines(text) {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// SafeFilename turns a domain into a file name stem: example.com/shop
// becomes example_com_shop.
func SafeFilename(domain string) string {
	return reFileUnsafe.ReplaceAllString(strings.TrimSpace(domain), "_")
}

// MaskSecret keeps the first visible runes of secret and replaces the rest
// with "...". Secrets no longer than visible are fully masked.
func MaskSecret(secret string, visible int) string {
	if secret == "" {
		return ""
	}
	if utf8.RuneCountInString(secret) <= visible {
		return strings.Repeat("*", utf8.RuneCountInString(secret))
	}
	return string([]rune(secret)[:visible]) + "..."
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
