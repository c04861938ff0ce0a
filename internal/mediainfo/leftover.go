package mediainfo

import (
	"strings"

	"github.com/samber/lo"
)

// SplitParts splits a stream descriptor on top-level commas and trims each
// part. Commas nested inside parentheses or brackets do not split, so
// "yuv420p(tv, bt709)" stays one part. Empty parts are dropped.
func SplitParts(rest string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range rest {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, rest[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, rest[start:])
	parts = lo.Map(parts, func(part string, _ int) string {
		return strings.TrimSpace(part)
	})
	return lo.Compact(parts)
}

// ClassifyLeftovers returns the parts of rest, in order, that no field
// matcher claimed. A part is claimed when it equals a claimed token, or when
// it is a claimed token followed by a bracketed annotation such as
// "1920x1080 [SAR 1:1 DAR 16:9]" or "128 kb/s (default)".
func ClassifyLeftovers(rest string, claimed ...string) []string {
	claims := lo.Compact(claimed)
	return lo.Filter(SplitParts(rest), func(part string, _ int) bool {
		return !isClaimed(part, claims)
	})
}

func isClaimed(part string, claims []string) bool {
	if lo.Contains(claims, part) {
		return true
	}
	for _, claim := range claims {
		tail, ok := strings.CutPrefix(part, claim+" ")
		if !ok {
			continue
		}
		tail = strings.TrimSpace(tail)
		if strings.HasPrefix(tail, "[") || strings.HasPrefix(tail, "(") {
			return true
		}
	}
	return false
}
