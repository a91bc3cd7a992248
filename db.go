package flagsteg

import (
	"crypto/sha1"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

var errNoDB = errors.New("no database")

type FlagDB struct {
	db *sql.DB
}

// Entry describes a flag held in the database.
type Entry struct {
	Name   string
	SHA1   string
	Style  string
	Width  int
	Height int
	Size   int
}

func NewFlagDB(file string) (*FlagDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS flag (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL UNIQUE, sha1 TEXT NOT NULL, style TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, image BLOB NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	return &FlagDB{
		db: db,
	}, nil
}

func (db *FlagDB) Close() error {
	return db.db.Close()
}

func (db *FlagDB) put(name string, f Flag, payload, image []byte) (int64, error) {
	sha := fmt.Sprintf("%X", sha1.Sum(payload))

	var id int64
	switch err := db.db.QueryRow("SELECT id FROM flag WHERE name = ?", name).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := db.db.Exec("INSERT INTO flag (name, sha1, style, width, height, image) VALUES (?, ?, ?, ?, ?, ?)", name, sha, f.Name(), width(f), height(f), image)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		if _, err := db.db.Exec("UPDATE flag SET sha1 = ?, style = ?, width = ?, height = ?, image = ? WHERE id = ?", sha, f.Name(), width(f), height(f), image, id); err != nil {
			return 0, err
		}
		return id, nil
	default:
		return 0, err
	}
}

// Image returns the stored flag image with the given name, or nil if there
// isn't one.
func (db *FlagDB) Image(name string) ([]byte, error) {
	var image []byte
	switch err := db.db.QueryRow("SELECT image FROM flag WHERE name = ?", name).Scan(&image); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return image, nil
	default:
		return nil, err
	}
}

// List returns every stored flag ordered by name.
func (db *FlagDB) List() ([]Entry, error) {
	rows, err := db.db.Query("SELECT name, sha1, style, width, height, length(image) FROM flag ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.SHA1, &e.Style, &e.Width, &e.Height, &e.Size); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type sized interface {
	Width() int
	Height() int
}

func width(f Flag) int {
	if s, ok := f.(sized); ok {
		return s.Width()
	}
	return 0
}

func height(f Flag) int {
	if s, ok := f.(sized); ok {
		return s.Height()
	}
	return 0
}

// Store encodes payload and saves the flag under name, replacing any
// existing flag of that name.
func (m *FlagSteg) Store(name string, payload []byte) (int64, error) {
	if m.db == nil {
		return 0, errNoDB
	}

	b, err := m.flag.Encode(payload)
	if err != nil {
		return 0, err
	}

	id, err := m.db.put(name, m.flag, payload, b)
	if err != nil {
		return 0, err
	}
	m.logger.Printf("Stored \"%s\" as %s flag %d\n", name, m.flag.Name(), id)

	return id, nil
}

// Load decodes the flag stored under name. It returns nil if there isn't
// one.
func (m *FlagSteg) Load(name string) ([]byte, error) {
	if m.db == nil {
		return nil, errNoDB
	}

	b, err := m.db.Image(name)
	if err != nil || b == nil {
		return nil, err
	}

	return m.flag.Decode(b)
}
