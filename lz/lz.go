/*
Package lz implements the multi-command LZ codec used for Game Boy Color
graphics.

A stream is a sequence of commands terminated by a 0xFF byte. Each command
starts with a header byte holding a three bit kind and a five bit length
minus one. Lengths above 32 use the long form: the kind field is set to 7,
the real kind moves to bits 2-4 and the length minus one becomes a ten bit
value whose low byte follows the header.

	literal    n bytes copied from the stream
	iterate    one byte repeated n times
	alternate  two bytes alternated for n bytes
	zero       n zero bytes
	repeat     n bytes copied from earlier output
	flip       as repeat with the bits of each byte reversed
	reverse    n bytes copied backwards from earlier output

Copy commands are followed by an offset. If its high bit is set the low
seven bits are a distance back from the current output position, otherwise
it is the first byte of a big endian absolute offset.
*/
package lz

import (
	"errors"
	"fmt"
	"math/bits"
)

type kind uint8

const (
	literal kind = iota
	iterate
	alternate
	zero
	repeat
	flip
	reverse
	long
)

var kindNames = [...]string{"literal", "iterate", "alternate", "zero", "repeat", "flip", "reverse", "long"}

func (k kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

const (
	terminator  = 0xff
	longHeader  = 0xe0
	maxShort    = 32
	maxLength   = 1024
	maxDistance = 0x7f
	maxAbsolute = 0x8000
)

// Error categories. Every error returned by this package wraps one of these.
var (
	ErrInvalidParameter = errors.New("lz: invalid parameter")
	ErrMalformedStream  = errors.New("lz: malformed stream")
)

var (
	// ErrInvalidLength is returned when a command length is outside 1-1024.
	ErrInvalidLength = fmt.Errorf("%w: invalid command length", ErrInvalidParameter)
	// ErrInvalidAlignment is returned for a negative alignment.
	ErrInvalidAlignment = fmt.Errorf("%w: invalid alignment", ErrInvalidParameter)

	ErrTruncatedStream = fmt.Errorf("%w: unexpected end of stream", ErrMalformedStream)
	ErrInvalidOffset   = fmt.Errorf("%w: copy offset out of range", ErrMalformedStream)
	ErrInvalidCommand  = fmt.Errorf("%w: invalid command", ErrMalformedStream)
)

var bitReverse [256]byte

func init() {
	for i := range bitReverse {
		bitReverse[i] = bits.Reverse8(uint8(i))
	}
}

type options struct {
	alignment int
}

// Option configures Compress.
type Option func(*options) error

// WithAlignment pads the compressed stream with zero bytes after the
// terminator until its length is a multiple of n. An alignment of 0 or 1
// disables padding.
func WithAlignment(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return ErrInvalidAlignment
		}
		o.alignment = n
		return nil
	}
}
