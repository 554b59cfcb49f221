package extract

// firstJSONObject returns the first balanced top-level JSON object in s,
// or "". LLM responses often wrap the JSON in prose or code fences, so a
// plain unmarshal of the raw text is not enough.
func firstJSONObject(s string) string {
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, c := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if start == -1 {
				start = i
			}
			depth++
		case '}':
			depth--
			if depth == 0 && start != -1 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
