package spritepack

import (
	"errors"

	"github.com/bodgit/spritepack/lz"
	"github.com/bodgit/spritepack/pic"
	"github.com/klauspost/compress/zstd"
)

// Report holds the size in bytes of tile data in each packed form. Pic is
// zero when the data is not a square sprite.
type Report struct {
	Raw  int
	Pic  int
	LZ   int
	Zstd int
}

func zstdSize(raw []byte) (int, error) {
	enc, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBestCompression),
	)
	if err != nil {
		return 0, err
	}
	defer enc.Close()

	return len(enc.EncodeAll(raw, nil)), nil
}

// Measure compresses raw with every codec, plus zstd as a general purpose
// baseline, and reports the sizes. width is passed to the pic codec.
func Measure(raw []byte, width int) (Report, error) {
	r := Report{Raw: len(raw)}

	b, err := pic.Compress(raw, width)
	switch {
	case err == nil:
		r.Pic = len(b)
	case !errors.Is(err, pic.ErrInvalidParameter):
		return Report{}, err
	}

	if b, err = lz.Compress(raw); err != nil {
		return Report{}, err
	}
	r.LZ = len(b)

	if r.Zstd, err = zstdSize(raw); err != nil {
		return Report{}, err
	}

	return r, nil
}
