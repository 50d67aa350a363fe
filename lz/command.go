package lz

type command struct {
	kind kind
	n    int
	// value is the source position for a literal, the byte for iterate,
	// the byte pair (first in the low byte) for alternate and the source
	// offset for copies.
	value int
	// pos is the output position the command starts at.
	pos int
}

func headerSize(n int) int {
	if n <= maxShort {
		return 1
	}
	return 2
}

func relative(pos, offset int) bool {
	d := pos - offset
	return d > 0 && d <= maxDistance
}

// size returns the encoded size of c in bytes.
func (c command) size() int {
	h := headerSize(c.n)
	switch c.kind {
	case literal:
		return h + c.n
	case iterate:
		return h + 1
	case alternate:
		return h + 2
	case zero:
		return h
	}
	if relative(c.pos, c.value) {
		return h + 1
	}
	return h + 2
}

func (c command) savings() int {
	return c.n - c.size()
}

// combines reports whether next extends the same run as c.
func (c command) combines(next command) bool {
	if c.kind != next.kind {
		return false
	}
	switch c.kind {
	case literal:
		return c.value+c.n == next.value
	case iterate:
		return c.value == next.value
	case zero:
		return true
	}
	return false
}

// appendTo appends the encoding of c to b. Literal bytes are taken from
// data.
func (c command) appendTo(b, data []byte) ([]byte, error) {
	if c.n < 1 || c.n > maxLength {
		return nil, ErrInvalidLength
	}

	m := c.n - 1
	if c.n <= maxShort {
		b = append(b, byte(c.kind)<<5|byte(m))
	} else {
		b = append(b, longHeader|byte(c.kind)<<2|byte(m>>8), byte(m))
	}

	switch c.kind {
	case literal:
		b = append(b, data[c.value:c.value+c.n]...)
	case iterate:
		b = append(b, byte(c.value))
	case alternate:
		b = append(b, byte(c.value), byte(c.value>>8))
	case zero:
	default:
		if relative(c.pos, c.value) {
			b = append(b, 0x80|byte(c.pos-c.value))
		} else {
			b = append(b, byte(c.value>>8), byte(c.value))
		}
	}

	return b, nil
}
