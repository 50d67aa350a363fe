// Package hexutil converts between byte slices and the space-separated
// uppercase hex text used to exchange compressed sprites.
package hexutil

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidHex is returned when text contains a non-hex character or an odd
// number of digits.
var ErrInvalidHex = errors.New("hexutil: invalid hex")

// Parse decodes hex text. Whitespace anywhere is ignored, as is a single
// leading "0x" or "0X" prefix. Digits may be either case.
func Parse(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}

	digits := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	if len(digits)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of digits", ErrInvalidHex)
	}

	b, err := hex.DecodeString(digits)
	if err != nil {
		var ie hex.InvalidByteError
		if errors.As(err, &ie) {
			return nil, fmt.Errorf("%w: unexpected %q", ErrInvalidHex, rune(ie))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return b, nil
}

// Format renders b as uppercase two-digit hex values separated by single
// spaces.
func Format(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 3)
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", v)
	}
	return sb.String()
}
