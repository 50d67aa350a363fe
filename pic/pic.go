/*
Package pic implements the tile-plane run-length codec used for Game Boy
sprite pictures.

A sprite is a square of width by width 8x8 tiles, at most 15 tiles across,
stored as 16 bytes per tile: each pixel row is a low-plane byte followed by
a high-plane byte. The compressed stream is an MSB-first bit stream:

	4 bits  width in tiles
	4 bits  height in tiles, always equal to width
	1 bit   plane order
	        first plane
	1-2 bits mode: 0, 10 or 11
	        second plane

Each plane is scanned two pixel columns at a time, top to bottom, and
written as alternating packets of literal bit pairs and runs of zero pairs.
Before scanning, each plane row is delta encoded and, depending on the
mode, the second plane is XORed with the first.
*/
package pic

import (
	"errors"
	"fmt"
)

const (
	tileSize     = 8
	bytesPerTile = tileSize * 2
	maxWidth     = 15
	numMethods   = 6
)

// Error categories. Every error returned by this package wraps one of these.
var (
	ErrInvalidParameter = errors.New("pic: invalid parameter")
	ErrMalformedStream  = errors.New("pic: malformed stream")
)

var (
	// ErrInvalidWidth is returned when the width is outside 1-15 tiles or
	// does not match the length of the sprite data.
	ErrInvalidWidth = fmt.Errorf("%w: invalid sprite width", ErrInvalidParameter)
	// ErrInvalidMethod is returned for a swap other than 0-1 or a mode
	// other than 0-2.
	ErrInvalidMethod = fmt.Errorf("%w: invalid compression method", ErrInvalidParameter)
	// ErrInvalidImageSize is returned when a stream header has a zero width.
	ErrInvalidImageSize = fmt.Errorf("%w: invalid image size", ErrInvalidParameter)

	ErrNonSquareImage    = fmt.Errorf("%w: image is not square", ErrMalformedStream)
	ErrRunLengthOverflow = fmt.Errorf("%w: run length too large", ErrMalformedStream)
	ErrDataOverflow      = fmt.Errorf("%w: data overflow", ErrMalformedStream)
	ErrTruncated         = fmt.Errorf("%w: unexpected end of data", ErrMalformedStream)
)

// runLengthBase is the smallest run encoded by each magnitude class.
var runLengthBase = [...]int{
	0x0001, 0x0003, 0x0007, 0x000f, 0x001f, 0x003f, 0x007f, 0x00ff,
	0x01ff, 0x03ff, 0x07ff, 0x0fff, 0x1fff, 0x3fff, 0x7fff, 0xffff,
}

// grayCodes undoes the row delta one nibble at a time. The row is selected
// by the last pixel of the previous nibble.
var grayCodes = [2][16]byte{
	{0x0, 0x1, 0x3, 0x2, 0x7, 0x6, 0x4, 0x5, 0xf, 0xe, 0xc, 0xd, 0x8, 0x9, 0xb, 0xa},
	{0xf, 0xe, 0xc, 0xd, 0x8, 0x9, 0xb, 0xa, 0x0, 0x1, 0x3, 0x2, 0x7, 0x6, 0x4, 0x5},
}

// Width returns the width in tiles recorded in the header of a compressed
// stream without decompressing it.
func Width(b []byte) (int, error) {
	r := newBitReader(b)
	return readHeader(r)
}

func readHeader(r *bitReader) (int, error) {
	width, err := r.readBits(4)
	if err != nil {
		return 0, err
	}
	height, err := r.readBits(4)
	if err != nil {
		return 0, err
	}
	if width != height {
		return 0, ErrNonSquareImage
	}
	if width == 0 {
		return 0, ErrInvalidImageSize
	}
	return int(width), nil
}
