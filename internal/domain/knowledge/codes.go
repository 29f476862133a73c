package knowledge

import (
	"strconv"
	"strings"
)

// NormalizeCode trims and upper-cases a business code ("g1 " -> "G1").
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeCodes normalizes codes, drops empties and duplicates, keeping order.
func NormalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, raw := range codes {
		c := NormalizeCode(raw)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// CompareCodes orders codes by letter prefix, then numeric part, then suffix,
// so G2 sorts before G10 and R2A before R2B.
func CompareCodes(a, b string) int {
	ap, an, as := splitCode(a)
	bp, bn, bs := splitCode(b)
	if c := strings.Compare(ap, bp); c != 0 {
		return c
	}
	if an != bn {
		if an < bn {
			return -1
		}
		return 1
	}
	return strings.Compare(as, bs)
}

func splitCode(code string) (prefix string, num int, suffix string) {
	i := 0
	for i < len(code) && (code[i] < '0' || code[i] > '9') {
		i++
	}
	j := i
	for j < len(code) && code[j] >= '0' && code[j] <= '9' {
		j++
	}
	prefix = code[:i]
	if j > i {
		num, _ = strconv.Atoi(code[i:j])
	} else {
		num = -1
	}
	return prefix, num, code[j:]
}
