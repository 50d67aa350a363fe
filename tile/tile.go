/*
Package tile implements a Game Boy 2bpp tile decoder and encoder.

An image is split into 8 by 8 tiles and each tile is stored as 16 bytes.
Every pixel row is a byte of low bits followed by a byte of high bits, with
the leftmost pixel in the most significant bit. The shade of a pixel is its
low bit plus twice its high bit, from white through to black.

In two color mode only the high byte of each row is stored, so a tile is 8
bytes and every pixel is either white or black.
*/
package tile

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

const (
	tileWidth    = 8
	tileHeight   = tileWidth
	bytesPerRow  = 2
	bytesPerTile = tileHeight * bytesPerRow
	numShades    = 4
)

// Palette holds the four shades indexed by pixel value.
var Palette = color.Palette{
	color.Gray{Y: 0xff},
	color.Gray{Y: 0xaa},
	color.Gray{Y: 0x55},
	color.Gray{Y: 0x00},
}

// Order is the sequence tiles are written in.
type Order int

const (
	// LeftToRight writes rows of tiles from the top, each row left to
	// right.
	LeftToRight Order = iota
	// TopToBottomLeft writes columns of tiles from the left, each column
	// top to bottom.
	TopToBottomLeft
	// TopToBottomRight writes columns of tiles from the right, each
	// column top to bottom.
	TopToBottomRight
)

var orderNames = map[Order]string{
	LeftToRight:      "left-to-right",
	TopToBottomLeft:  "top-to-bottom-left",
	TopToBottomRight: "top-to-bottom-right",
}

func (o Order) String() string {
	if s, ok := orderNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Order(%d)", int(o))
}

// ParseOrder returns the Order with the given name.
func ParseOrder(s string) (Order, error) {
	for o, name := range orderNames {
		if strings.EqualFold(s, name) {
			return o, nil
		}
	}
	return 0, fmt.Errorf("tile: unknown order %q", s)
}

// tiles returns the top-left pixel of each tile of a width by height tile
// image in o's order.
func (o Order) tiles(width, height int) []image.Point {
	p := make([]image.Point, 0, width*height)
	switch o {
	case TopToBottomLeft:
		for tx := 0; tx < width; tx++ {
			for ty := 0; ty < height; ty++ {
				p = append(p, image.Pt(tx*tileWidth, ty*tileHeight))
			}
		}
	case TopToBottomRight:
		for tx := width - 1; tx >= 0; tx-- {
			for ty := 0; ty < height; ty++ {
				p = append(p, image.Pt(tx*tileWidth, ty*tileHeight))
			}
		}
	default:
		for ty := 0; ty < height; ty++ {
			for tx := 0; tx < width; tx++ {
				p = append(p, image.Pt(tx*tileWidth, ty*tileHeight))
			}
		}
	}
	return p
}

// Options are the encoding and decoding parameters. A nil *Options uses
// the defaults.
type Options struct {
	Order Order
	// Quantize reduces the image to four colors by median cut before
	// they are mapped onto the shades by brightness. Otherwise each pixel
	// takes the nearest shade.
	Quantize bool
	// Resize scales the image to this many tiles first when non-zero.
	Resize image.Point
	// TwoColor stores only the high plane.
	TwoColor bool
}

func (o *Options) rowBytes() int {
	if o != nil && o.TwoColor {
		return 1
	}
	return bytesPerRow
}

func (o *Options) order() Order {
	if o == nil {
		return LeftToRight
	}
	return o.Order
}

// Size returns the number of bytes needed to store width by height tiles.
func Size(width, height int, o *Options) int {
	return width * height * tileHeight * o.rowBytes()
}
