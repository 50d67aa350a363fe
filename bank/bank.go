/*
Package bank implements a sprite bank: a table of sprite pointers followed
by the packed sprite data, sized to fit a 16 KiB Game Boy ROM bank.

The table holds 256 entries of two little endian 16-bit values, the offset
of the sprite from the start of the bank and its length. Unused entries are
0xffff. Identical sprites share their data. Unused entries before the last
used one keep their position. The rest of the bank is padded
with 0xff.
*/
package bank

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

const (
	// Size is the size in bytes of a marshalled bank.
	Size       = 0x4000
	maxEntries = 256
	tableSize  = maxEntries * 4
	unused     = 0xffff
)

var (
	// ErrFull is returned when a sprite does not fit in the bank.
	ErrFull = errors.New("bank: not enough space")
	// ErrTooMany is returned when the pointer table is full.
	ErrTooMany = fmt.Errorf("bank: more than %d entries", maxEntries)
)

// Bank is a sprite bank. It implements the encoding.BinaryMarshaler and
// encoding.BinaryUnmarshaler interfaces.
type Bank struct {
	checksums map[uint32][]int
	sprites   [][]byte
	// entries index sprites, or are -1 for an unused slot.
	entries []int
	used    int
}

// New returns an empty bank
func New() *Bank {
	return &Bank{
		checksums: make(map[uint32][]int),
		used:      tableSize,
	}
}

// Length returns the number of entries in the bank
func (b *Bank) Length() int {
	return len(b.entries)
}

// Free returns the number of bytes left for sprite data
func (b *Bank) Free() int {
	return Size - b.used
}

func (b *Bank) find(crc uint32, sprite []byte) (int, bool) {
	for _, i := range b.checksums[crc] {
		if bytes.Equal(b.sprites[i], sprite) {
			return i, true
		}
	}
	return 0, false
}

// Add appends sprite to the bank and returns its entry number
func (b *Bank) Add(sprite []byte) (int, error) {
	if len(b.entries) == maxEntries {
		return 0, ErrTooMany
	}

	crc := crc32.ChecksumIEEE(sprite)
	i, ok := b.find(crc, sprite)
	if !ok {
		if len(sprite) > b.Free() {
			return 0, ErrFull
		}
		b.sprites = append(b.sprites, sprite)
		i = len(b.sprites) - 1
		b.checksums[crc] = append(b.checksums[crc], i)
		b.used += len(sprite)
	}

	b.entries = append(b.entries, i)
	return len(b.entries) - 1, nil
}

// Sprite returns the data for entry n
func (b *Bank) Sprite(n int) ([]byte, error) {
	if n < 0 || n >= len(b.entries) || b.entries[n] < 0 {
		return nil, fmt.Errorf("bank: no entry %d", n)
	}
	return b.sprites[b.entries[n]], nil
}

// MarshalBinary encodes the bank into binary form and returns the result
func (b *Bank) MarshalBinary() ([]byte, error) {
	offsets := make([]uint16, len(b.sprites))
	offset := tableSize
	for i, s := range b.sprites {
		offsets[i] = uint16(offset)
		offset += len(s)
	}

	w := new(bytes.Buffer)
	w.Grow(Size)

	// Write out the pointer table
	for _, i := range b.entries {
		entry := [2]uint16{unused, unused}
		if i >= 0 {
			entry = [2]uint16{offsets[i], uint16(len(b.sprites[i]))}
		}
		if err := binary.Write(w, binary.LittleEndian, &entry); err != nil {
			return nil, err
		}
	}
	// Pad the table with 0xff's
	if _, err := w.Write(bytes.Repeat([]byte{0xff, 0xff, 0xff, 0xff}, maxEntries-len(b.entries))); err != nil {
		return nil, err
	}

	// Write out the sprites
	for _, s := range b.sprites {
		if _, err := w.Write(s); err != nil {
			return nil, err
		}
	}
	// Pad to the bank size with 0xff's
	if _, err := w.Write(bytes.Repeat([]byte{0xff}, Size-w.Len())); err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// UnmarshalBinary decodes the bank from binary form
func (b *Bank) UnmarshalBinary(p []byte) error {
	if len(p) != Size {
		return fmt.Errorf("bank: expected %d bytes, got %d", Size, len(p))
	}

	*b = *New()

	r := bytes.NewReader(p[:tableSize])
	shared := make(map[uint16]int)
	gaps := 0
	for i := 0; i < maxEntries; i++ {
		var entry [2]uint16
		if err := binary.Read(r, binary.LittleEndian, &entry); err != nil {
			return err
		}
		offset, length := entry[0], entry[1]
		if offset == unused {
			gaps++
			continue
		}
		for ; gaps > 0; gaps-- {
			b.entries = append(b.entries, -1)
		}
		if int(offset) < tableSize || int(offset)+int(length) > Size {
			return fmt.Errorf("bank: entry %d out of range", i)
		}

		if j, ok := shared[offset]; ok && len(b.sprites[j]) == int(length) {
			b.entries = append(b.entries, j)
			continue
		}

		sprite := append([]byte{}, p[offset:int(offset)+int(length)]...)
		crc := crc32.ChecksumIEEE(sprite)
		b.sprites = append(b.sprites, sprite)
		j := len(b.sprites) - 1
		b.checksums[crc] = append(b.checksums[crc], j)
		shared[offset] = j
		b.entries = append(b.entries, j)
		b.used += len(sprite)
	}

	return nil
}
