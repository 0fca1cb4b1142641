package intent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	jsonFenceRE     = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	trailingCommaRE = regexp.MustCompile(`,\s*([}\]])`)
)

// extractJSONObject pulls a JSON object candidate out of a model reply,
// preferring a fenced code block, then the first balanced object.
func extractJSONObject(reply string) string {
	if m := jsonFenceRE.FindStringSubmatch(reply); m != nil {
		return m[1]
	}
	return findFirstBalancedJSON(reply)
}

// findFirstBalancedJSON returns the first brace-balanced JSON object in s,
// or "" when none is found. Braces inside string literals are ignored via
// an explicit in-string/escape/depth state machine.
func findFirstBalancedJSON(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	esc := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if ch == '"' && !esc {
			inString = !inString
		}
		if ch == '\\' && !esc {
			esc = true
		} else {
			esc = false
		}
		if inString {
			continue
		}
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 {
			return s[start : i+1]
		}
	}
	return ""
}

// attemptJSONLoad parses s as JSON, retrying with trailing commas
// stripped, then retrying on the first balanced object inside s.
func attemptJSONLoad(s string) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v, nil
	}

	sanitized := trailingCommaRE.ReplaceAllString(s, "$1")
	if err := json.Unmarshal([]byte(sanitized), &v); err == nil {
		return v, nil
	}

	balanced := findFirstBalancedJSON(s)
	if balanced == "" {
		return nil, fmt.Errorf("no parseable JSON in %q", truncateForError(s))
	}
	if err := json.Unmarshal([]byte(balanced), &v); err == nil {
		return v, nil
	}
	sanitized = trailingCommaRE.ReplaceAllString(balanced, "$1")
	if err := json.Unmarshal([]byte(sanitized), &v); err != nil {
		return nil, fmt.Errorf("no parseable JSON in %q: %w", truncateForError(s), err)
	}
	return v, nil
}

func truncateForError(s string) string {
	const max = 120
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
