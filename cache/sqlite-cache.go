package cache

import (
	"database/sql"
	"errors"
	"sync"

	_ "github.com/glebarez/go-sqlite"
)

// SQLiteCache keeps entries in a single SQLite table, body included.
// Writes go through INSERT OR REPLACE, so replacing an entry is one
// transaction and readers never see a half-written row.
type SQLiteCache struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// NewSQLiteCache creates a new cache with the given filename as the db.
// If the file name is empty, a new in-memory db is opened.
func NewSQLiteCache(filename string) (SQLiteCache, error) {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return SQLiteCache{}, err
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS entries (
		key TEXT PRIMARY KEY,
		url TEXT,
		etag TEXT,
		last_modified TEXT,
		body BLOB
	)`)
	if err != nil {
		return SQLiteCache{}, err
	}
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		return SQLiteCache{}, err
	}
	return SQLiteCache{
		db:         db,
		writeMutex: &sync.Mutex{},
	}, nil
}

func (s SQLiteCache) Get(key string) (Entry, bool, error) {
	var entry Entry
	err := s.db.QueryRow(
		"SELECT url, etag, last_modified, body FROM entries WHERE key = ?", key,
	).Scan(&entry.URL, &entry.ETag, &entry.LastModified, &entry.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return entry, true, nil
}

func (s SQLiteCache) Put(key string, entry Entry) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec(`INSERT OR REPLACE INTO entries
		(key, url, etag, last_modified, body) VALUES (?, ?, ?, ?, ?)`,
		key, entry.URL, entry.ETag, entry.LastModified, entry.Body)
	return err
}

func (s SQLiteCache) Keys(cb func(string)) {
	rows, err := s.db.Query("SELECT key FROM entries")
	if err != nil {
		return
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return
		}
		cb(key)
	}
}

func (s SQLiteCache) Purge(key string) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec("DELETE FROM entries WHERE key = ?", key)
	return err
}

func (s SQLiteCache) Has(key string) bool {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM entries WHERE key = ?", key).Scan(&one)
	return err == nil
}
