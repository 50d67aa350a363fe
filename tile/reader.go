package tile

import (
	"errors"
	"image"
	"io"
)

var (
	// ErrNotEnough is returned when the input ends before the last tile.
	ErrNotEnough = errors.New("tile: not enough image data")
	// ErrTooMuch is returned when the input continues after the last tile.
	ErrTooMuch = errors.New("tile: too much image data")
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

type decoder struct {
	r io.Reader

	width, height int
	rowBytes      int
	order         Order

	image *image.Paletted

	tmp [bytesPerTile]byte
}

func (d *decoder) decodeTile(p image.Point) error {
	b := d.tmp[:tileHeight*d.rowBytes]
	if err := readFull(d.r, b); err != nil {
		return err
	}

	for y := 0; y < tileHeight; y++ {
		// Two color rows use the same byte for both planes.
		lo, hi := b[y*d.rowBytes], b[y*d.rowBytes+d.rowBytes-1]
		for x := 0; x < tileWidth; x++ {
			shift := uint(7 - x)
			d.image.SetColorIndex(p.X+x, p.Y+y, lo>>shift&1|hi>>shift&1<<1)
		}
	}
	return nil
}

func (d *decoder) decode() error {
	if d.width < 1 || d.height < 1 {
		return errors.New("tile: invalid image size")
	}

	d.image = image.NewPaletted(image.Rect(0, 0, d.width*tileWidth, d.height*tileHeight), Palette)

	for _, p := range d.order.tiles(d.width, d.height) {
		if err := d.decodeTile(p); err != nil {
			if err != io.ErrUnexpectedEOF {
				return err
			}
			return ErrNotEnough
		}
	}

	if n, err := d.r.Read(d.tmp[:1]); n != 0 || (err != io.EOF && err != io.ErrUnexpectedEOF) {
		if err != nil {
			return err
		}
		return ErrTooMuch
	}

	return nil
}

// Decode reads width by height tiles from r and returns them as an image
// using Palette.
func Decode(r io.Reader, width, height int, o *Options) (*image.Paletted, error) {
	d := decoder{
		r:        r,
		width:    width,
		height:   height,
		rowBytes: o.rowBytes(),
		order:    o.order(),
	}
	if err := d.decode(); err != nil {
		return nil, err
	}
	return d.image, nil
}
