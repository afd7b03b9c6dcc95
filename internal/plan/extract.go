package plan

import (
	"encoding/json"
	"strings"
)

// ExtractJSONObject returns the first balanced {...} substring of text that is valid JSON.
// Backends wrap the object in commentary or code fences even when told not to.
// Braces inside JSON strings are ignored while matching.
func ExtractJSONObject(text string) (string, bool) {
	for offset := 0; offset < len(text); {
		start := strings.IndexByte(text[offset:], '{')
		if start < 0 {
			return "", false
		}
		start += offset

		if end := matchBrace(text, start); end >= 0 {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
		offset = start + 1
	}
	return "", false
}

// matchBrace returns the index of the '}' closing the '{' at start, or -1.
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
