package pic

import "math/bits"

// bitplane holds one bit per pixel, indexed by row then column.
type bitplane [][]uint8

func newBitplane(n int) bitplane {
	p := make(bitplane, n)
	for y := range p {
		p[y] = make([]uint8, n)
	}
	return p
}

func expand(data []byte, width int) [2]bitplane {
	n := width * tileSize
	planes := [2]bitplane{newBitplane(n), newBitplane(n)}
	i := 0
	for ty := 0; ty < width; ty++ {
		for tx := 0; tx < width; tx++ {
			for row := 0; row < tileSize; row++ {
				lo, hi := data[i], data[i+1]
				i += 2
				y := ty*tileSize + row
				for col := 0; col < tileSize; col++ {
					x := tx*tileSize + col
					shift := uint(7 - col)
					planes[0][y][x] = lo >> shift & 1
					planes[1][y][x] = hi >> shift & 1
				}
			}
		}
	}
	return planes
}

func (p bitplane) xor(q bitplane) {
	for y, row := range p {
		for x := range row {
			row[x] ^= q[y][x]
		}
	}
}

// delta replaces each pixel with the XOR of itself and its left neighbour.
func (p bitplane) delta() {
	for _, row := range p {
		var prev uint8
		for x, now := range row {
			row[x] = now ^ prev
			prev = now
		}
	}
}

func writeRunLength(w *bitWriter, count int) {
	v := uint(count + 1)
	n := uint(bits.Len(v) - 1)
	w.writeBits(1<<n-2, n)
	w.writeBits(v-1<<n, n)
}

// encodePlane writes p as alternating packets. Pixel pairs are taken two
// columns at a time, top to bottom.
func encodePlane(w *bitWriter, p bitplane) {
	n := len(p)
	rle := p[0][0] == 0 && p[0][1] == 0
	if rle {
		w.writeBit(0)
	} else {
		w.writeBit(1)
	}

	var count int
	last := n * n / 2
	i := 0
	for x := 0; x < n; x += 2 {
		for y := 0; y < n; y++ {
			a, b := p[y][x], p[y][x+1]
			zero := a == 0 && b == 0
			i++
			end := i == last
			switch {
			case rle:
				if zero {
					count++
				}
				if !zero || end {
					writeRunLength(w, count)
					count = 0
					if !zero {
						w.writeBits(uint(a<<1|b), 2)
						rle = false
					}
				}
			case zero:
				// A zero pair terminates the literal packet and starts
				// a run of one.
				w.writeBits(0, 2)
				count = 1
				rle = true
				if end {
					writeRunLength(w, count)
				}
			default:
				w.writeBits(uint(a<<1|b), 2)
			}
		}
	}
}

// CompressWithParams compresses a sprite using a specific plane order and
// mode. swap selects which plane is written first and must be 0 or 1. mode
// must be 0 (both planes delta encoded), 1 (second plane XORed with the
// first, not delta encoded) or 2 (second plane XORed then delta encoded).
func CompressWithParams(data []byte, width, swap, mode int) ([]byte, error) {
	if width < 1 || width > maxWidth || len(data) != width*width*bytesPerTile {
		return nil, ErrInvalidWidth
	}
	if swap < 0 || swap > 1 || mode < 0 || mode > 2 {
		return nil, ErrInvalidMethod
	}

	planes := expand(data, width)
	first, second := planes[swap], planes[swap^1]
	if mode != 0 {
		second.xor(first)
	}
	first.delta()
	if mode != 1 {
		second.delta()
	}

	w := new(bitWriter)
	w.writeBits(uint(width), 4)
	w.writeBits(uint(width), 4)
	w.writeBit(uint8(swap))
	encodePlane(w, first)
	switch mode {
	case 0:
		w.writeBit(0)
	case 1:
		w.writeBits(0x2, 2)
	case 2:
		w.writeBits(0x3, 2)
	}
	encodePlane(w, second)

	return w.bytes(), nil
}

// Compress tries all six plane order and mode combinations and returns the
// shortest stream, preferring the earliest on a tie. A width of 0 infers the
// width from the length of data, which must then describe a square sprite.
func Compress(data []byte, width int) ([]byte, error) {
	if width == 0 {
		var err error
		if width, err = detectWidth(len(data)); err != nil {
			return nil, err
		}
	}

	var best []byte
	for i := 0; i < numMethods; i++ {
		b, err := CompressWithParams(data, width, i/3, i%3)
		if err != nil {
			return nil, err
		}
		if best == nil || len(b) < len(best) {
			best = b
		}
	}
	return best, nil
}

func detectWidth(n int) (int, error) {
	if n == 0 || n%bytesPerTile != 0 {
		return 0, ErrInvalidWidth
	}
	tiles := n / bytesPerTile
	for w := 1; w <= maxWidth; w++ {
		if w*w == tiles {
			return w, nil
		}
	}
	return 0, ErrInvalidWidth
}
