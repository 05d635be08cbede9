package llm

import "strings"

// JSONObject returns the outermost {...} span of a model reply, tolerating
// code fences and surrounding prose. It returns "" when there is none.
func JSONObject(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first < 0 || last <= first {
		return ""
	}
	return s[first : last+1]
}
