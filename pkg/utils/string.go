package utils

import (
	"strings"
	"unicode/utf8"
)

// SplitLines breaks text into lines of at most maxBytes bytes that are safe
// to send as single IRC messages. Embedded newlines always split; long lines
// break at the last space inside the limit, or mid-word when there is none.
// Multi-byte characters are never cut. Blank lines are dropped.
func SplitLines(text string, maxBytes int) []string {
	var lines []string
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		raw = strings.TrimRight(raw, " \t\r")
		if raw == "" {
			continue
		}
		if maxBytes <= 0 {
			lines = append(lines, raw)
			continue
		}
		for len(raw) > maxBytes {
			cut := findLastSpace(raw[:maxBytes+1], maxBytes+1)
			if cut <= 0 {
				cut = runeBoundary(raw, maxBytes)
			}
			if cut <= 0 {
				_, cut = utf8.DecodeRuneInString(raw)
			}
			lines = append(lines, raw[:cut])
			raw = strings.TrimLeft(raw[cut:], " \t")
		}
		if raw != "" {
			lines = append(lines, raw)
		}
	}
	return lines
}

// runeBoundary returns the largest index <= limit that starts a rune.
func runeBoundary(s string, limit int) int {
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return limit
}

// findLastSpace finds the last space character within the last N characters.
// Returns the position of the space or -1 if not found.
func findLastSpace(s string, searchWindow int) int {
	searchStart := max(len(s)-searchWindow, 0)
	for i := len(s) - 1; i >= searchStart; i-- {
		if s[i] == ' ' || s[i] == '\t' {
			return i
		}
	}
	return -1
}
