package keyset

// levenshtein returns the edit distance between a and b.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min3(a, b, c int) int {
	return min(a, min(b, c))
}

// closest returns the candidate nearest to input by edit distance.
func closest(input string, candidates []string) string {
	minDist := -1
	ret := ""

	for _, candidate := range candidates {
		dist := levenshtein([]rune(candidate), []rune(input))
		if minDist == -1 || dist < minDist {
			minDist = dist
			ret = candidate
		}
	}

	return ret
}
