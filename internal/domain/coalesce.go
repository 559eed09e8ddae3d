package domain

// CoalesceStr returns the first non-empty string from vals.
func CoalesceStr(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// CoalescePtr returns *p when p is non-nil, otherwise fallback.
func CoalescePtr[T any](p *T, fallback T) T {
	if p != nil {
		return *p
	}
	return fallback
}

// PositiveOr returns v when it is greater than zero, otherwise fallback.
func PositiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
