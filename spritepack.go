/*
Package spritepack is a library for packing Game Boy sprites with the pic
and lz codecs and keeping the results in a sprite database.
*/
package spritepack

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/spritepack/bank"
	"github.com/bodgit/spritepack/pic"
	"github.com/bodgit/spritepack/tile"
	_ "github.com/xfmoulet/qoi"
)

type Packer struct {
	db     *SpriteDB
	logger *log.Logger
}

func New(db *SpriteDB, logger *log.Logger) *Packer {
	return &Packer{
		db:     db,
		logger: logger,
	}
}

// Open opens the sprite database in file and returns a Packer using it.
func Open(file string, logger *log.Logger) (*Packer, error) {
	db, err := NewSpriteDB(file)
	if err != nil {
		return nil, err
	}
	return New(db, logger), nil
}

func (p *Packer) Close() error {
	return p.db.Close()
}

// DB returns the underlying sprite database.
func (p *Packer) DB() *SpriteDB {
	return p.db
}

// Import reads the image in file and stores it under the file name without
// its extension.
func (p *Packer) Import(file string, o *tile.Options) (int64, error) {
	return p.importFile(spriteName(filepath.Base(file)), file, o)
}

// spriteName strips the extension from a slash separated form of file.
func spriteName(file string) string {
	return strings.TrimSuffix(filepath.ToSlash(file), filepath.Ext(file))
}

func (p *Packer) importFile(name, file string, o *tile.Options) (int64, error) {
	f, err := os.Open(file)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return p.ImportImage(name, f, o)
}

// ImportImage decodes an image from r, converts it to tiles and stores it
// in every packed form. Re-importing identical tiles does nothing.
func (p *Packer) ImportImage(name string, r io.Reader, o *tile.Options) (int64, error) {
	m, _, err := image.Decode(r)
	if err != nil {
		return 0, err
	}

	b := new(bytes.Buffer)
	if err := tile.Encode(b, m, o); err != nil {
		return 0, err
	}

	s := &Sprite{
		Name:  name,
		SHA1:  fmt.Sprintf("%X", sha1.Sum(b.Bytes())),
		Tiles: b.Bytes(),
	}
	if o != nil {
		s.TwoColor = o.TwoColor
		s.Order = o.Order
	}
	if o != nil && o.Resize != (image.Point{}) {
		s.Width, s.Height = o.Resize.X, o.Resize.Y
	} else {
		s.Width, s.Height = m.Bounds().Dx()/8, m.Bounds().Dy()/8
	}

	id, changed, err := p.db.AddSprite(s)
	if err != nil {
		return 0, err
	}
	if !changed {
		p.logger.Printf("Sprite \"%s\" is unchanged\n", name)
		return id, nil
	}

	return id, p.pack(id, s)
}

func (p *Packer) pack(id int64, s *Sprite) error {
	for _, f := range Formats() {
		if f == FormatNone {
			continue
		}

		// Non-square sprites must not be mistaken for square ones of the
		// same tile count.
		width := s.Width
		if s.Width != s.Height {
			width = -1
		}

		b, err := Compress(f, s.Tiles, width)
		if err != nil {
			if errors.Is(err, pic.ErrInvalidParameter) {
				p.logger.Printf("Skipping %s for \"%s\": %v\n", f, s.Name, err)
				continue
			}
			return err
		}

		if err := p.db.SetPacked(id, f, b); err != nil {
			return err
		}
		p.logger.Printf("Packed \"%s\" as %s: %d -> %d bytes\n", s.Name, f, len(s.Tiles), len(b))
	}
	return nil
}

// Export returns the f form of the named sprite.
func (p *Packer) Export(name string, f Format) ([]byte, error) {
	if f == FormatNone {
		s, err := p.sprite(name)
		if err != nil {
			return nil, err
		}
		return s.Tiles, nil
	}

	b, err := p.db.FindPacked(name, f)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("no %s data for sprite \"%s\"", f, name)
	}
	return b, nil
}

// Image unpacks the f form of the named sprite and returns it as an image.
func (p *Packer) Image(name string, f Format) (*image.Paletted, error) {
	s, err := p.sprite(name)
	if err != nil {
		return nil, err
	}

	b, err := p.Export(name, f)
	if err != nil {
		return nil, err
	}

	raw, err := Decompress(f, b)
	if err != nil {
		return nil, err
	}

	return tile.Decode(bytes.NewReader(raw), s.Width, s.Height, s.Options())
}

// Bank collects the f form of each named sprite into a sprite bank, in
// order. With no names every sprite in the database is added.
func (p *Packer) Bank(f Format, names ...string) (*bank.Bank, error) {
	if len(names) == 0 {
		var err error
		if names, err = p.db.Names(); err != nil {
			return nil, err
		}
	}

	b := bank.New()
	for _, name := range names {
		data, err := p.Export(name, f)
		if err != nil {
			return nil, err
		}
		n, err := b.Add(data)
		if err != nil {
			return nil, fmt.Errorf("unable to add \"%s\": %w", name, err)
		}
		p.logger.Printf("Added \"%s\" as entry %d, %d bytes free", name, n, b.Free())
	}

	return b, nil
}

func (p *Packer) sprite(name string) (*Sprite, error) {
	s, err := p.db.FindSprite(name)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("no sprite \"%s\"", name)
	}
	return s, nil
}
