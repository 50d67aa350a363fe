package lz

// merge returns a new command list with neighbouring commands combined
// where that does not grow the encoding:
//
//   - a literal absorbs a following command that encodes to as many bytes
//     as it produces, unless that would move a short literal header to the
//     long form or exceed 1024 bytes
//   - contiguous literals, iterates of the same byte and zero runs are
//     joined, splitting at 1024 bytes
//
// The input is not modified and merge(merge(x)) equals merge(x).
func merge(cmds []command) []command {
	out := make([]command, 0, len(cmds))
	for _, c := range cmds {
		if len(out) == 0 {
			out = append(out, c)
			continue
		}

		cur := &out[len(out)-1]
		if cur.kind == literal && c.size() == c.n && cur.n+c.n <= maxLength && (cur.n > maxShort || cur.n+c.n <= maxShort) {
			cur.n += c.n
			continue
		}

		if cur.combines(c) {
			total := cur.n + c.n
			if total <= maxLength {
				cur.n = total
				continue
			}
			rest := *cur
			rest.n = total - maxLength
			rest.pos = cur.pos + maxLength
			if rest.kind == literal {
				rest.value = cur.value + maxLength
			}
			cur.n = maxLength
			out = append(out, rest)
			continue
		}

		out = append(out, c)
	}
	return out
}
