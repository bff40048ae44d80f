// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package credentials

import "strings"

// RedactedValue replaces secret values that are too short to keep a prefix.
const RedactedValue = "[REDACTED]"

var secretMarkers = []string{"KEY", "SECRET", "TOKEN", "PASSWORD"}

// IsSecret reports whether the variable name looks like it holds a secret.
func IsSecret(name string) bool {
	upper := strings.ToUpper(name)
	for _, marker := range secretMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// Redact returns value unchanged for non-secret names. Secret values keep
// their first four characters; anything shorter than 12 characters is fully
// masked. Lengths count runes, so the kept prefix is always valid UTF-8.
func Redact(name, value string) string {
	if !IsSecret(name) || value == "" {
		return value
	}
	runes := []rune(value)
	if len(runes) < 12 {
		return RedactedValue
	}
	return string(runes[:4]) + "…" + RedactedValue
}
