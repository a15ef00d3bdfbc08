package utils

import "strings"

// MaskChar replaces the hidden part of masked values
const MaskChar = '*'

// MaskValue keeps the first start and last end runes of value and replaces
// everything in between with MaskChar. Values too short to have a hidden
// middle are masked entirely.
func MaskValue(value string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end < 0 {
		end = 0
	}
	r := []rune(value)
	if len(r) <= start+end {
		return strings.Repeat(string(MaskChar), len(r))
	}
	hidden := len(r) - start - end
	return string(r[:start]) + strings.Repeat(string(MaskChar), hidden) + string(r[len(r)-end:])
}

// PreviewToken masks the first width runes of a credential and appends an
// ellipsis. The remainder of the token is never shown.
func PreviewToken(token string, width int) string {
	r := []rune(token)
	if width > 0 && width < len(r) {
		r = r[:width]
	}
	return MaskValue(string(r), 4, 4) + "..."
}
