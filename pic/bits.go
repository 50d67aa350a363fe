package pic

import (
	"bytes"
	"io"

	"github.com/creachadair/bitstream"
)

// bitWriter accumulates bits MSB first. The final byte is padded with zero
// bits.
type bitWriter struct {
	buf []byte
	cur byte
	n   uint
}

func (w *bitWriter) writeBit(bit uint8) {
	w.cur = w.cur<<1 | bit&1
	w.n++
	if w.n == 8 {
		w.buf = append(w.buf, w.cur)
		w.cur, w.n = 0, 0
	}
}

// writeBits writes the low n bits of v, most significant first.
func (w *bitWriter) writeBits(v uint, n uint) {
	for n > 0 {
		n--
		w.writeBit(uint8(v >> n & 1))
	}
}

func (w *bitWriter) bytes() []byte {
	if w.n == 0 {
		return w.buf
	}
	return append(w.buf, w.cur<<(8-w.n))
}

type bitReader struct {
	r *bitstream.Reader
}

func newBitReader(b []byte) *bitReader {
	return &bitReader{r: bitstream.NewReader(bytes.NewReader(b))}
}

func (r *bitReader) readBit() (uint8, error) {
	v, err := r.readBits(1)
	return uint8(v), err
}

// readBits reads n bits, most significant first. Running out of input is
// ErrTruncated.
func (r *bitReader) readBits(n int) (uint, error) {
	var v uint64
	if _, err := r.r.Read(n, &v); err != nil {
		if err == io.EOF {
			return 0, ErrTruncated
		}
		return 0, err
	}
	return uint(v), nil
}
