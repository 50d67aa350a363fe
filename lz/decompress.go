package lz

// Decompress decodes a terminated command stream. Bytes after the
// terminator are ignored.
func Decompress(b []byte) ([]byte, error) {
	out := []byte{}
	i := 0

	need := func(n int) error {
		if i+n > len(b) {
			return ErrTruncatedStream
		}
		return nil
	}

	for {
		if err := need(1); err != nil {
			return nil, err
		}
		h := b[i]
		i++
		if h == terminator {
			return out, nil
		}

		k := kind(h >> 5)
		n := int(h&0x1f) + 1
		if k == long {
			if k = kind(h >> 2 & 0x07); k == long {
				return nil, ErrInvalidCommand
			}
			if err := need(1); err != nil {
				return nil, err
			}
			n = (int(h&0x03)<<8 | int(b[i])) + 1
			i++
		}

		switch k {
		case literal:
			if err := need(n); err != nil {
				return nil, err
			}
			out = append(out, b[i:i+n]...)
			i += n
		case iterate:
			if err := need(1); err != nil {
				return nil, err
			}
			for j := 0; j < n; j++ {
				out = append(out, b[i])
			}
			i++
		case alternate:
			if err := need(2); err != nil {
				return nil, err
			}
			for j := 0; j < n; j++ {
				out = append(out, b[i+j&1])
			}
			i += 2
		case zero:
			out = append(out, make([]byte, n)...)
		default:
			if err := need(1); err != nil {
				return nil, err
			}
			var offset int
			if o := b[i]; o&0x80 != 0 {
				offset = len(out) - int(o&0x7f)
				i++
			} else {
				if err := need(2); err != nil {
					return nil, err
				}
				offset = int(o)<<8 | int(b[i+1])
				i += 2
			}

			if offset < 0 || offset >= len(out) || k == reverse && offset < n-1 {
				return nil, ErrInvalidOffset
			}

			for j := 0; j < n; j++ {
				switch k {
				case repeat:
					out = append(out, out[offset+j])
				case flip:
					out = append(out, bitReverse[out[offset+j]])
				case reverse:
					out = append(out, out[offset-j])
				}
			}
		}
	}
}
