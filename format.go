package spritepack

import (
	"fmt"
	"strings"

	"github.com/bodgit/spritepack/lz"
	"github.com/bodgit/spritepack/pic"
)

// Format identifies how sprite tile data is packed.
type Format int

const (
	// FormatNone is the raw 2bpp tile data.
	FormatNone Format = iota
	// FormatPic is the tile-plane run-length codec.
	FormatPic
	// FormatLZ is the multi-command LZ codec.
	FormatLZ
)

var formatNames = [...]string{"none", "pic", "lz"}

// Formats lists every Format.
func Formats() []Format {
	return []Format{FormatNone, FormatPic, FormatLZ}
}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat returns the Format with the given name.
func ParseFormat(s string) (Format, error) {
	for i, name := range formatNames {
		if strings.EqualFold(s, name) {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("unknown format %q", s)
}

// Compress packs raw tile data. width is the sprite width in tiles and is
// only used by FormatPic, where 0 infers it from the data length.
func Compress(f Format, raw []byte, width int) ([]byte, error) {
	switch f {
	case FormatNone:
		return append([]byte{}, raw...), nil
	case FormatPic:
		return pic.Compress(raw, width)
	case FormatLZ:
		return lz.Compress(raw)
	}
	return nil, fmt.Errorf("unknown format %d", int(f))
}

// Decompress reverses Compress.
func Decompress(f Format, b []byte) ([]byte, error) {
	switch f {
	case FormatNone:
		return append([]byte{}, b...), nil
	case FormatPic:
		return pic.Decompress(b)
	case FormatLZ:
		return lz.Decompress(b)
	}
	return nil, fmt.Errorf("unknown format %d", int(f))
}
