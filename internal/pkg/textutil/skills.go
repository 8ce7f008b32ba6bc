package textutil

import (
	"strings"
)

// SplitSkills parses a comma separated skill list as typed into a form
func SplitSkills(input string) []string {
	return NormalizeSkills(strings.Split(input, ","))
}

// NormalizeSkills trims each skill, drops blanks and removes duplicates
// case-insensitively. The first spelling of a skill and the input order are kept.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.Join(strings.Fields(s), " ")
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
