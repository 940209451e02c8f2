package util

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// RankTitles returns up to n candidates matching input, best first.
// Case-insensitive prefix matches rank ahead of other fuzzy matches.
func RankTitles(input string, candidates []string, n int) []string {
	if input == "" {
		return head(candidates, n)
	}
	matches := fuzzy.Find(input, candidates)
	if len(matches) == 0 {
		return nil
	}

	lower := strings.ToLower(input)
	var prefixed, rest []string
	for _, m := range matches {
		if strings.HasPrefix(strings.ToLower(m.Str), lower) {
			prefixed = append(prefixed, m.Str)
		} else {
			rest = append(rest, m.Str)
		}
	}
	return head(append(prefixed, rest...), n)
}

func head(s []string, n int) []string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
