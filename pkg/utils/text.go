// Package utils provides shared utilities for paths, vectors, and logging.
package utils

import "strings"

// DisplayName returns the last element of a meme identifier, accepting both
// '/' and '\' separators since embedding files may be produced on Windows.
func DisplayName(identifier string) string {
	if i := strings.LastIndexAny(identifier, `/\`); i >= 0 {
		return identifier[i+1:]
	}
	return identifier
}

// TruncateLeft keeps the last maxLen bytes of s, prefixed with "..." if truncated.
// Long paths keep their most specific (rightmost) part. maxLen <= 0 returns s unchanged.
func TruncateLeft(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}
