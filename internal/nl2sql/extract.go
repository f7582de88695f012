package nl2sql

import "strings"

// ExtractSQL recovers the candidate SQL from a raw model response. Models
// sometimes prefix the statement with a "SQL:" label or wrap it in a
// triple-backtick fence (optionally tagged "sql") despite being told not to.
// The result is trimmed; an empty result means the response held no SQL.
func ExtractSQL(raw string) string {
	text := strings.TrimSpace(raw)

	if idx := strings.LastIndex(text, "SQL:"); idx >= 0 {
		text = text[idx+len("SQL:"):]
	}

	if start := strings.Index(text, "```"); start >= 0 {
		text = text[start+len("```"):]
		text = strings.TrimPrefix(text, "sql")
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	}

	return strings.TrimSpace(text)
}
