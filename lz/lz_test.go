package lz

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/spritepack/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hexutil.Parse(s)
	require.NoError(t, err)
	return b
}

func checkerboard() []byte {
	b := make([]byte, 64)
	for i := range b {
		if (i/8+i%8)%2 == 0 {
			b[i] = 0xff
		}
	}
	return b
}

func TestDecompress(t *testing.T) {
	tables := []struct {
		name string
		in   string
		want []byte
	}{
		{"terminator", "FF", []byte{}},
		{"literal", "04 48 65 6C 6C 6F FF", []byte("Hello")},
		{"iterate", "27 AA FF", bytes.Repeat([]byte{0xaa}, 8)},
		{"alternate", "45 AA BB FF", []byte{0xaa, 0xbb, 0xaa, 0xbb, 0xaa, 0xbb}},
		{"zero", "69 FF", make([]byte, 10)},
		{"mixed", "01 48 69 62 23 FF FF", []byte{0x48, 0x69, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff}},
		{"long literal", "E1 2B" + string(bytes.Repeat([]byte("41"), 300)) + "FF", bytes.Repeat([]byte("A"), 300)},
		{"repeat", "03 41 42 43 44 83 84 FF", []byte("ABCDABCD")},
		{"repeat absolute", "04 48 65 6C 6C 6F 05 20 57 6F 72 6C 64 84 00 00 FF", []byte("Hello WorldHello")},
		{"repeat overlap", "03 41 42 43 44 87 84 FF", []byte("ABCDABCDABCD")},
		{"flip", "03 B0 F0 0F AA A3 84 FF", []byte{0xb0, 0xf0, 0x0f, 0xaa, 0x0d, 0x0f, 0xf0, 0x55}},
		{"flip absolute", "02 FF 00 81 02 00 00 00 A2 00 00 FF", []byte{0xff, 0x00, 0x81, 0x00, 0x00, 0x00, 0xff, 0x00, 0x81}},
		{"reverse", "02 41 42 43 C2 81 FF", []byte("ABCCBA")},
		{"checkerboard", "47 FF 00 47 00 FF 47 FF 00 47 00 FF 47 FF 00 47 00 FF 47 FF 00 47 00 FF FF", checkerboard()},
		{"padding", "69 FF 00 00 00", make([]byte, 10)},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			out, err := Decompress(mustParse(t, table.in))
			require.NoError(t, err)
			assert.Equal(t, table.want, out)
		})
	}
}

func TestDecompressInvalid(t *testing.T) {
	tables := []struct {
		name string
		in   []byte
		err  error
	}{
		{"empty", []byte{}, ErrTruncatedStream},
		{"no terminator", []byte{0x00, 0x41}, ErrTruncatedStream},
		{"short literal", []byte{0x04, 0x48}, ErrTruncatedStream},
		{"missing iterate byte", []byte{0x20}, ErrTruncatedStream},
		{"missing alternate byte", []byte{0x41, 0xaa}, ErrTruncatedStream},
		{"missing long length", []byte{0xe1}, ErrTruncatedStream},
		{"missing offset", []byte{0x00, 0x41, 0x81}, ErrTruncatedStream},
		{"short absolute offset", []byte{0x00, 0x41, 0x81, 0x00}, ErrTruncatedStream},
		{"long kind 7", []byte{0xfc, 0x00, 0xff}, ErrInvalidCommand},
		{"copy before start", []byte{0x83, 0x81, 0xff}, ErrInvalidOffset},
		{"zero distance", []byte{0x00, 0x41, 0x81, 0x80, 0xff}, ErrInvalidOffset},
		{"absolute past end", []byte{0x00, 0x41, 0x81, 0x00, 0x05, 0xff}, ErrInvalidOffset},
		{"reverse before start", []byte{0x01, 0x41, 0x42, 0xc2, 0x81, 0xff}, ErrInvalidOffset},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			out, err := Decompress(table.in)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, table.err)
			assert.ErrorIs(t, err, ErrMalformedStream)
		})
	}
}

func TestCompress(t *testing.T) {
	tables := []struct {
		name string
		in   []byte
		want string
	}{
		{"empty", nil, "FF"},
		{"literal", []byte("Hello"), "04 48 65 6C 6C 6F FF"},
		{"zeros", make([]byte, 100), "EC 63 FF"},
		{"iterate", bytes.Repeat([]byte{0xaa}, 50), "E4 31 AA FF"},
		{"split zeros", make([]byte, 2000), "EF FF EF CF FF"},
		{"split iterate", bytes.Repeat([]byte{0xaa}, 2000), "E7 FF AA E7 CF AA FF"},
		{"repeat", []byte("ABCDABCDABCD"), "03 41 42 43 44 87 84 FF"},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			b, err := Compress(table.in)
			require.NoError(t, err)
			assert.Equal(t, table.want, hexutil.Format(b))
		})
	}
}

func TestCompressRuns(t *testing.T) {
	b, err := Compress(make([]byte, 100))
	require.NoError(t, err)
	assert.Less(t, len(b), 10)

	b, err = Compress(bytes.Repeat([]byte{0x5a}, 50))
	require.NoError(t, err)
	assert.Less(t, len(b), 10)
}

func roundTrip(t *testing.T, data []byte, opts ...Option) []byte {
	t.Helper()
	b, err := Compress(data, opts...)
	require.NoError(t, err)
	out, err := Decompress(b)
	require.NoError(t, err)
	assert.Equal(t, data, out)
	return b
}

func sequential(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestRoundTrip(t *testing.T) {
	tables := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"single", []byte{0x42}},
		{"two", []byte{0x00, 0xff}},
		{"sequential", sequential(1000)},
		{"zeros", make([]byte, 1000)},
		{"ones", bytes.Repeat([]byte{0xff}, 1000)},
		{"checkerboard", checkerboard()},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			roundTrip(t, table.data)
		})
	}
}

// generate builds inputs that exercise every command kind.
func generate(r *rand.Rand, n int) []byte {
	b := make([]byte, 0, n)
	for len(b) < n {
		l := 1 + r.Intn(40)
		switch r.Intn(7) {
		case 0:
			for i := 0; i < l; i++ {
				b = append(b, byte(r.Intn(256)))
			}
		case 1:
			b = append(b, bytes.Repeat([]byte{byte(r.Intn(256))}, l)...)
		case 2:
			x, y := byte(r.Intn(256)), byte(r.Intn(256))
			for i := 0; i < l; i++ {
				if i%2 == 0 {
					b = append(b, x)
				} else {
					b = append(b, y)
				}
			}
		case 3:
			b = append(b, make([]byte, l)...)
		case 4, 5, 6:
			if len(b) == 0 {
				continue
			}
			src := r.Intn(len(b))
			for i := 0; i < l && src+i < len(b); i++ {
				switch r.Intn(3) {
				case 0:
					b = append(b, b[src+i])
				case 1:
					b = append(b, bitReverse[b[src+i]])
				default:
					if src-i >= 0 {
						b = append(b, b[src-i])
					}
				}
			}
		}
	}
	return b[:n]
}

func TestRoundTripRandom(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		data := generate(r, r.Intn(600))
		roundTrip(t, data)
	}
}

func TestRoundTripLong(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	data := generate(r, 1500)
	data = append(data, data[:600]...)
	roundTrip(t, data)
}

func TestAlignment(t *testing.T) {
	data := []byte("Hello")

	for _, n := range []int{0, 1} {
		b := roundTrip(t, data, WithAlignment(n))
		assert.Len(t, b, 7)
	}

	for _, n := range []int{2, 4, 16} {
		b := roundTrip(t, data, WithAlignment(n))
		assert.Zero(t, len(b)%n)
		assert.Equal(t, "04 48 65 6C 6C 6F FF", hexutil.Format(b[:7]))
		assert.Equal(t, make([]byte, len(b)-7), b[7:])
	}

	_, err := Compress(data, WithAlignment(-1))
	assert.ErrorIs(t, err, ErrInvalidAlignment)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestMerge(t *testing.T) {
	tables := []struct {
		name string
		in   []command
		want []command
	}{
		{
			"absorb zero",
			[]command{{literal, 30, 0, 0}, {zero, 1, 0, 30}},
			[]command{{literal, 31, 0, 0}},
		},
		{
			"absorb short copy",
			[]command{{literal, 4, 0, 0}, {repeat, 2, 1, 4}},
			[]command{{literal, 6, 0, 0}},
		},
		{
			"keep short header",
			[]command{{literal, 32, 0, 0}, {zero, 1, 0, 32}},
			[]command{{literal, 32, 0, 0}, {zero, 1, 0, 32}},
		},
		{
			"join iterate",
			[]command{{iterate, 10, 0xaa, 0}, {iterate, 20, 0xaa, 10}},
			[]command{{iterate, 30, 0xaa, 0}},
		},
		{
			"different iterate",
			[]command{{iterate, 10, 0xaa, 0}, {iterate, 20, 0xbb, 10}},
			[]command{{iterate, 10, 0xaa, 0}, {iterate, 20, 0xbb, 10}},
		},
		{
			"split zeros",
			[]command{{zero, 1000, 0, 0}, {zero, 100, 0, 1000}},
			[]command{{zero, 1024, 0, 0}, {zero, 76, 0, 1024}},
		},
		{
			"split literal",
			[]command{{literal, 1000, 0, 0}, {literal, 100, 1000, 1000}},
			[]command{{literal, 1024, 0, 0}, {literal, 76, 1024, 1024}},
		},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			in := append([]command{}, table.in...)
			got := merge(table.in)
			assert.Equal(t, table.want, got)
			assert.Equal(t, in, table.in)
			assert.Equal(t, got, merge(got))
		})
	}
}

func TestMergeIdempotent(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		m := matcher{data: generate(r, 1+r.Intn(400))}
		once := merge(m.scan())
		assert.Equal(t, once, merge(once))
	}
}

func TestAppendTo(t *testing.T) {
	tables := []struct {
		name string
		c    command
		want string
	}{
		{"relative", command{repeat, 4, 0, 4}, "83 84"},
		{"furthest relative", command{flip, 2, 0, 127}, "A1 FF"},
		{"absolute", command{repeat, 16, 0, 200}, "8F 00 00"},
		{"reverse absolute", command{reverse, 3, 0x1234, 0x2000}, "C2 12 34"},
		{"long zero", command{zero, 33, 0, 0}, "EC 20"},
		{"alternate", command{alternate, 5, 0xbbaa, 0}, "44 AA BB"},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			b, err := table.c.appendTo(nil, nil)
			require.NoError(t, err)
			assert.Equal(t, table.want, hexutil.Format(b))
		})
	}

	for _, n := range []int{0, maxLength + 1} {
		_, err := command{kind: zero, n: n}.appendTo(nil, nil)
		assert.ErrorIs(t, err, ErrInvalidLength)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	}
}

func TestSample(t *testing.T) {
	s, err := os.ReadFile(filepath.Join("testdata", "sample.lz"))
	require.NoError(t, err)
	stream := mustParse(t, string(s))

	raw, err := Decompress(stream)
	require.NoError(t, err)
	assert.Len(t, raw, 576)

	b := roundTrip(t, raw)
	assert.LessOrEqual(t, len(b), len(stream))
}

func TestConcurrent(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	inputs := make([][]byte, 8)
	want := make([][]byte, len(inputs))
	for i := range inputs {
		inputs[i] = generate(r, 500+i*100)
		b, err := Compress(inputs[i])
		require.NoError(t, err)
		want[i] = b
	}

	// The inputs are shared between goroutines and must come out the same
	// as when compressed alone.
	t.Run("group", func(t *testing.T) {
		for i := 0; i < 4*len(inputs); i++ {
			i := i % len(inputs)
			t.Run("", func(t *testing.T) {
				t.Parallel()
				b, err := Compress(inputs[i])
				require.NoError(t, err)
				assert.Equal(t, want[i], b)

				out, err := Decompress(b)
				require.NoError(t, err)
				assert.Equal(t, inputs[i], out)
			})
		}
	})
}

func BenchmarkCompress(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	data := generate(r, 3000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Compress(data); err != nil {
			b.Fatal(err)
		}
	}
}
