package lz

var copyKinds = [...]kind{repeat, flip, reverse}

// matcher finds the commands available at each position of data.
type matcher struct {
	data []byte
}

func (m *matcher) limit(pos int) int {
	if n := len(m.data) - pos; n < maxLength {
		return n
	}
	return maxLength
}

func (m *matcher) run(pos, lim int, b byte) int {
	n := 0
	for n < lim && m.data[pos+n] == b {
		n++
	}
	return n
}

func (m *matcher) matchLength(k kind, src, pos, lim int) int {
	d := m.data
	n := 0
	switch k {
	case repeat:
		for n < lim && d[src+n] == d[pos+n] {
			n++
		}
	case flip:
		for n < lim && bitReverse[d[src+n]] == d[pos+n] {
			n++
		}
	case reverse:
		for n < lim && n <= src && d[src-n] == d[pos+n] {
			n++
		}
	}
	return n
}

// bestCopy scans every addressable earlier position for the copy with the
// largest savings. Repeat and flip sources may overlap pos.
func (m *matcher) bestCopy(pos, lim int) (command, bool) {
	var best command
	found := false
	for src := 0; src < pos; src++ {
		if pos-src > maxDistance && src >= maxAbsolute {
			continue
		}
		for _, k := range copyKinds {
			n := m.matchLength(k, src, pos, lim)
			if n < 2 {
				continue
			}
			c := command{kind: k, n: n, value: src, pos: pos}
			if !found || c.savings() > best.savings() {
				best, found = c, true
			}
		}
	}
	return best, found
}

// best returns the command at pos with the largest savings. Candidates are
// tried as zero, iterate, alternate then copy and the first wins a tie.
func (m *matcher) best(pos int) (command, bool) {
	var best command
	found := false
	consider := func(c command) {
		if !found || c.savings() > best.savings() {
			best, found = c, true
		}
	}

	d := m.data
	lim := m.limit(pos)

	if n := m.run(pos, lim, 0); n > 0 {
		consider(command{kind: zero, n: n, pos: pos})
	}
	if b := d[pos]; b != 0 {
		if n := m.run(pos, lim, b); n >= 2 {
			consider(command{kind: iterate, n: n, value: int(b), pos: pos})
		}
	}
	if lim >= 3 && d[pos] != d[pos+1] {
		n := 2
		for n < lim && d[pos+n] == d[pos+n&1] {
			n++
		}
		if n >= 3 {
			consider(command{kind: alternate, n: n, value: int(d[pos]) | int(d[pos+1])<<8, pos: pos})
		}
	}
	if c, ok := m.bestCopy(pos, lim); ok {
		consider(c)
	}

	return best, found
}

// scan greedily parses data into commands. Stretches where nothing saves
// space become literals of at most 32 bytes.
func (m *matcher) scan() []command {
	var cmds []command
	for pos := 0; pos < len(m.data); {
		if c, ok := m.best(pos); ok && c.savings() >= 0 {
			cmds = append(cmds, c)
			pos += c.n
			continue
		}

		n := 1
		for n < maxShort && pos+n < len(m.data) {
			if c, ok := m.best(pos + n); ok && c.savings() > 0 {
				break
			}
			n++
		}
		cmds = append(cmds, command{kind: literal, n: n, value: pos, pos: pos})
		pos += n
	}
	return cmds
}

// Compress encodes data as a terminated command stream. Empty input
// produces a lone terminator.
func Compress(data []byte, opts ...Option) ([]byte, error) {
	var o options
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	var cmds []command
	if len(data) > 0 {
		m := matcher{data: data}
		cmds = merge(m.scan())
	}

	b := make([]byte, 0, len(data)/2+1)
	for _, c := range cmds {
		var err error
		if b, err = c.appendTo(b, data); err != nil {
			return nil, err
		}
	}
	b = append(b, terminator)

	if o.alignment > 1 {
		for len(b)%o.alignment != 0 {
			b = append(b, 0)
		}
	}

	return b, nil
}
