package exchange

// ValidName reports whether a venue, symbol or account name is acceptable:
// 1..19 characters, alphanumeric or underscore.
func ValidName(name string) bool {
	if len(name) < 1 || len(name) > 19 {
		return false
	}
	for _, c := range name {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c == '_':
		default:
			return false
		}
	}
	return true
}
