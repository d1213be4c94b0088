package keyset

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// ClampLimit returns limit bounded by [1, maxLimit]. Non-positive values fall
// back to DefaultLimit. The second value reports whether limit was used as is.
func ClampLimit(limit int, maxLimit int) (int, bool) {
	switch {
	case limit <= 0:
		return min(DefaultLimit, maxLimit), false
	case limit > maxLimit:
		return maxLimit, false
	default:
		return limit, true
	}
}

func NormalizeLimit(limit int) int {
	ret, _ := ClampLimit(limit, MaxLimit)
	return ret
}
