package tile

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"
	"sort"

	"github.com/disintegration/gift"
	"github.com/ericpauley/go-quantize/quantize"
)

// ErrWrongSize is returned by Encode when the image is not made of whole
// tiles.
var ErrWrongSize = errors.New("tile: image is wrong size")

type encoder struct {
	w        io.Writer
	rowBytes int
}

func (e *encoder) encodeTile(m *image.Paletted, p image.Point) error {
	var tmp [bytesPerTile]byte
	b := tmp[:0]
	for y := 0; y < tileHeight; y++ {
		var lo, hi byte
		for x := 0; x < tileWidth; x++ {
			s := m.ColorIndexAt(p.X+x, p.Y+y)
			lo = lo<<1 | s&1
			hi = hi<<1 | s>>1&1
		}
		if e.rowBytes == 1 {
			b = append(b, hi)
		} else {
			b = append(b, lo, hi)
		}
	}
	_, err := e.w.Write(b)
	return err
}

func (e *encoder) encode(m *image.Paletted, order Order) error {
	b := m.Bounds()
	for _, p := range order.tiles(b.Dx()/tileWidth, b.Dy()/tileHeight) {
		if err := e.encodeTile(m, p); err != nil {
			return err
		}
	}
	return nil
}

func luminance(c color.Color) uint8 {
	return color.GrayModel.Convert(c).(color.Gray).Y
}

// shadeMap returns the shade for each entry of p, spreading the entries
// from white to black by brightness.
func shadeMap(p color.Palette) []uint8 {
	shades := make([]uint8, len(p))
	if len(p) == 1 {
		shades[0] = uint8(Palette.Index(p[0]))
		return shades
	}

	rank := make([]int, len(p))
	for i := range rank {
		rank[i] = i
	}
	sort.SliceStable(rank, func(i, j int) bool {
		return luminance(p[rank[i]]) > luminance(p[rank[j]])
	})

	last := len(p) - 1
	for r, i := range rank {
		shades[i] = uint8((r*(numShades-1) + last/2) / last)
	}
	return shades
}

func quantized(m image.Image, b image.Rectangle) *image.Paletted {
	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, numShades), m))
	draw.Draw(pm, b, m, b.Min, draw.Src)

	shades := shadeMap(pm.Palette)
	for i, v := range pm.Pix {
		pm.Pix[i] = shades[v]
	}
	pm.Palette = Palette
	return pm
}

// Encode writes the Image m to w as 2bpp tiles. The image dimensions must
// be multiples of 8 once any resize has been applied.
func Encode(w io.Writer, m image.Image, o *Options) error {
	if o != nil && o.Resize != (image.Point{}) {
		g := gift.New(gift.Resize(o.Resize.X*tileWidth, o.Resize.Y*tileHeight, gift.NearestNeighborResampling))
		dst := image.NewRGBA(g.Bounds(m.Bounds()))
		g.Draw(dst, m)
		m = dst
	}

	b := m.Bounds()
	if b.Empty() || b.Dx()%tileWidth != 0 || b.Dy()%tileHeight != 0 {
		return ErrWrongSize
	}

	var pm *image.Paletted
	switch {
	case o != nil && o.Quantize:
		pm = quantized(m, b)
	default:
		pm = image.NewPaletted(b, Palette)
		draw.Draw(pm, b, m, b.Min, draw.Src)
	}

	// Adjust image so that top-left corner is at (0, 0)
	if pm.Rect.Min != (image.Point{}) {
		dup := *pm
		dup.Rect = dup.Rect.Sub(dup.Rect.Min)
		pm = &dup
	}

	e := encoder{w: w, rowBytes: o.rowBytes()}

	return e.encode(pm, o.order())
}
