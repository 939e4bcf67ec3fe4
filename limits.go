package keyset

const (
	// NoLimit disables the page size limit.
	NoLimit      = -1
	MaxLimit     = 100
	DefaultLimit = 10
)

// IsNormalizedLimitMax clamps a requested page size to (0, maxLimit],
// replacing non-positive sizes with DefaultLimit. The flag reports whether
// the requested size was kept as is.
func IsNormalizedLimitMax(limit int, maxLimit int) (int, bool) {
	switch {
	case limit <= 0:
		return DefaultLimit, false
	case limit > maxLimit:
		return maxLimit, false
	default:
		return limit, true
	}
}

func NormalizeLimitMax(limit int, maxLimit int) int {
	ret, _ := IsNormalizedLimitMax(limit, maxLimit)
	return ret
}

// NormalizeLimit clamps a requested page size to MaxLimit.
func NormalizeLimit(limit int) int {
	return NormalizeLimitMax(limit, MaxLimit)
}
