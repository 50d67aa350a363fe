package pic

// fillPlane decodes one plane of 2-bit groups and packs it into
// width*width*8 bytes, one byte per four vertically adjacent groups.
func fillPlane(r *bitReader, width int) ([]byte, error) {
	size := width * width * 0x20
	groups := make([]byte, size)

	literal, err := r.readBit()
	if err != nil {
		return nil, err
	}

	for n := 0; n < size; literal ^= 1 {
		if literal == 1 {
			for n < size {
				g, err := r.readBits(2)
				if err != nil {
					return nil, err
				}
				if g == 0 {
					break
				}
				groups[n] = byte(g)
				n++
			}
			continue
		}

		class := 0
		for {
			bit, err := r.readBit()
			if err != nil {
				return nil, err
			}
			if bit == 0 {
				break
			}
			if class++; class >= len(runLengthBase) {
				return nil, ErrRunLengthOverflow
			}
		}
		offset, err := r.readBits(class + 1)
		if err != nil {
			return nil, err
		}
		run := runLengthBase[class] + int(offset)
		if run > size-n {
			return nil, ErrDataOverflow
		}
		n += run
	}

	stride := width * tileSize
	plane := make([]byte, width*stride)
	for y := 0; y < width; y++ {
		for x := 0; x < stride; x++ {
			var v byte
			for i := 0; i < 4; i++ {
				v = v<<2 | groups[(y*4+i)*stride+x]
			}
			plane[y*stride+x] = v
		}
	}
	return plane, nil
}

func ungray(b, carry byte) (byte, byte) {
	hi := grayCodes[carry][b>>4]
	lo := grayCodes[hi&1][b&0x0f]
	return hi<<4 | lo, lo & 1
}

// ungrayPlane undoes the row delta. Each byte column is processed top to
// bottom with the carry bit reset at the start of the column.
func ungrayPlane(p []byte, width int) {
	stride := width * tileSize
	for x := 0; x < stride; x++ {
		var carry byte
		for y := 0; y < width; y++ {
			i := y*stride + x
			p[i], carry = ungray(p[i], carry)
		}
	}
}

// Decompress decodes a stream produced by Compress or CompressWithParams and
// returns width*width*16 bytes of tile data. Bytes after the end of the
// second plane are ignored.
func Decompress(b []byte) ([]byte, error) {
	r := newBitReader(b)
	width, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	order, err := r.readBit()
	if err != nil {
		return nil, err
	}

	var planes [2][]byte
	if planes[order], err = fillPlane(r, width); err != nil {
		return nil, err
	}

	mode, err := r.readBit()
	if err != nil {
		return nil, err
	}
	if mode == 1 {
		bit, err := r.readBit()
		if err != nil {
			return nil, err
		}
		mode += bit
	}

	if planes[order^1], err = fillPlane(r, width); err != nil {
		return nil, err
	}

	first, second := planes[order], planes[order^1]
	ungrayPlane(first, width)
	if mode != 1 {
		ungrayPlane(second, width)
	}
	if mode != 0 {
		for i := range second {
			second[i] ^= first[i]
		}
	}

	// The planes are laid out column-major by tile. Interleave them and
	// move each tile to its row-major position.
	tiles := width * width
	out := make([]byte, tiles*bytesPerTile)
	for i := range planes[0] {
		t, row := i/tileSize, i%tileSize
		dst := (t*width+t/width)%tiles*bytesPerTile + row*2
		out[dst] = planes[0][i]
		out[dst+1] = planes[1][i]
	}
	return out, nil
}
