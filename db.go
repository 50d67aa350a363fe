package spritepack

import (
	"database/sql"
	"fmt"

	"github.com/bodgit/spritepack/tile"
	_ "github.com/mattn/go-sqlite3"
)

// Sprite is a sprite as held in the database. Width and Height are in
// tiles and Tiles is the raw 2bpp data.
type Sprite struct {
	ID       int64
	Name     string
	SHA1     string
	Width    int
	Height   int
	TwoColor bool
	Order    tile.Order
	Tiles    []byte
}

// Options returns the tile options the sprite was encoded with.
func (s *Sprite) Options() *tile.Options {
	return &tile.Options{
		Order:    s.Order,
		TwoColor: s.TwoColor,
	}
}

// Entry summarises a stored sprite and the size of each packed form.
type Entry struct {
	Name   string
	Width  int
	Height int
	Sizes  map[Format]int
}

type SpriteDB struct {
	db *sql.DB
}

func NewSpriteDB(file string) (*SpriteDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on&_txlock=immediate", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS sprite (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL UNIQUE, sha1 TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, two_color INTEGER NOT NULL, tile_order INTEGER NOT NULL, tiles BLOB NOT NULL)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS packed (sprite_id INTEGER NOT NULL, format TEXT NOT NULL, data BLOB NOT NULL, UNIQUE(sprite_id, format), FOREIGN KEY(sprite_id) REFERENCES sprite(id) ON DELETE CASCADE)"); err != nil {
		return nil, err
	}

	return &SpriteDB{
		db: db,
	}, nil
}

func (db *SpriteDB) Close() error {
	return db.db.Close()
}

// AddSprite stores s under its name and returns its id. If a sprite of
// that name exists with the same SHA1 nothing is changed and changed is
// false. A sprite with a different SHA1 is replaced along with any packed
// data.
func (db *SpriteDB) AddSprite(s *Sprite) (id int64, changed bool, err error) {
	// Transactions take the write lock up front so concurrent adds of the
	// same name are serialized.
	tx, err := db.db.Begin()
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback()

	var sha string
	switch err := tx.QueryRow("SELECT id, sha1 FROM sprite WHERE name = ?", s.Name).Scan(&id, &sha); err {
	case sql.ErrNoRows:
		result, err := tx.Exec("INSERT INTO sprite (name, sha1, width, height, two_color, tile_order, tiles) VALUES (?, ?, ?, ?, ?, ?, ?)", s.Name, s.SHA1, s.Width, s.Height, s.TwoColor, int(s.Order), s.Tiles)
		if err != nil {
			return 0, false, err
		}
		if id, err = result.LastInsertId(); err != nil {
			return 0, false, err
		}
	case nil:
		if sha == s.SHA1 {
			return id, false, nil
		}

		if _, err = tx.Exec("DELETE FROM packed WHERE sprite_id = ?", id); err != nil {
			return 0, false, err
		}

		if _, err = tx.Exec("UPDATE sprite SET sha1 = ?, width = ?, height = ?, two_color = ?, tile_order = ?, tiles = ? WHERE id = ?", s.SHA1, s.Width, s.Height, s.TwoColor, int(s.Order), s.Tiles, id); err != nil {
			return 0, false, err
		}
	default:
		return 0, false, err
	}

	if err = tx.Commit(); err != nil {
		return 0, false, err
	}

	return id, true, nil
}

// SetPacked stores data as the f form of sprite id, replacing any
// previous value.
func (db *SpriteDB) SetPacked(id int64, f Format, data []byte) error {
	if _, err := db.db.Exec("INSERT OR REPLACE INTO packed (sprite_id, format, data) VALUES (?, ?, ?)", id, f.String(), data); err != nil {
		return err
	}
	return nil
}

// FindPacked returns the f form of the named sprite or nil if there is
// none.
func (db *SpriteDB) FindPacked(name string, f Format) ([]byte, error) {
	var data []byte
	switch err := db.db.QueryRow("SELECT p.data FROM packed AS p JOIN sprite AS s ON p.sprite_id = s.id WHERE s.name = ? AND p.format = ?", name, f.String()).Scan(&data); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return data, nil
	default:
		return nil, err
	}
}

// FindSprite returns the named sprite or nil if there is none.
func (db *SpriteDB) FindSprite(name string) (*Sprite, error) {
	s := Sprite{Name: name}
	var order int
	switch err := db.db.QueryRow("SELECT id, sha1, width, height, two_color, tile_order, tiles FROM sprite WHERE name = ?", name).Scan(&s.ID, &s.SHA1, &s.Width, &s.Height, &s.TwoColor, &order, &s.Tiles); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		s.Order = tile.Order(order)
		return &s, nil
	default:
		return nil, err
	}
}

// Names returns the names of all sprites in order.
func (db *SpriteDB) Names() ([]string, error) {
	rows, err := db.db.Query("SELECT name FROM sprite ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// List returns every sprite ordered by name with the sizes of its raw and
// packed forms.
func (db *SpriteDB) List() ([]Entry, error) {
	rows, err := db.db.Query("SELECT s.name, s.width, s.height, length(s.tiles), p.format, length(p.data) FROM sprite AS s LEFT JOIN packed AS p ON p.sprite_id = s.id ORDER BY s.name, p.format")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var raw int
		var format sql.NullString
		var size sql.NullInt64
		if err := rows.Scan(&e.Name, &e.Width, &e.Height, &raw, &format, &size); err != nil {
			return nil, err
		}

		if n := len(entries); n == 0 || entries[n-1].Name != e.Name {
			e.Sizes = map[Format]int{FormatNone: raw}
			entries = append(entries, e)
		}

		if format.Valid {
			f, err := ParseFormat(format.String)
			if err != nil {
				return nil, err
			}
			entries[len(entries)-1].Sizes[f] = int(size.Int64)
		}
	}
	return entries, rows.Err()
}
