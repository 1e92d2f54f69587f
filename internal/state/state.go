// Package state persists user preferences and resume intents in sqlite.
package state

import (
	"database/sql"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/llehouerou/tilawa/internal/errmsg"
)

const (
	appName      = "tilawa"
	dbFileName   = "tilawa.db"
	saveDebounce = 500 * time.Millisecond
)

// Store is the sqlite-backed key/value store behind persist and load.
type Store struct {
	db        *sql.DB
	log       zerolog.Logger
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   map[string]string
	// flushMu keeps writes in Persist order.
	flushMu sync.Mutex
}

// Open opens the store in the user's data directory.
func Open(log zerolog.Logger) (*Store, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	return OpenPath(dbPath, log)
}

// OpenPath opens the store at path. ":memory:" gives a private in-memory
// database.
func OpenPath(path string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// Every new connection would see its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:      db,
		log:     log.With().Str("component", "state").Logger(),
		pending: make(map[string]string),
	}, nil
}

// Persist stores value under key. Writes are debounced; Load sees the
// pending value immediately.
func (s *Store) Persist(key, value string) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.pending[key] = value

	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	s.saveTimer = time.AfterFunc(saveDebounce, func() {
		if err := s.Flush(); err != nil {
			s.log.Warn().Err(err).Msg(errmsg.Format(errmsg.OpPrefsSave, err))
		}
	})
}

// Load returns the value stored under key and whether it exists.
func (s *Store) Load(key string) (string, bool, error) {
	s.saveMu.Lock()
	v, ok := s.pending[key]
	s.saveMu.Unlock()
	if ok {
		return v, true, nil
	}

	err := s.db.QueryRow(`SELECT value FROM prefs WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Flush writes pending values now.
// Values stay pending until they are written, so a failed write is retried
// by the next Flush.
func (s *Store) Flush() error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.saveMu.Lock()
	if len(s.pending) == 0 {
		s.saveMu.Unlock()
		return nil
	}
	pending := maps.Clone(s.pending)
	s.saveMu.Unlock()

	if err := savePrefs(s.db, pending); err != nil {
		return err
	}

	s.saveMu.Lock()
	for k, v := range pending {
		// A newer Persist during the write stays for the next Flush.
		if cur, ok := s.pending[k]; ok && cur == v {
			delete(s.pending, k)
		}
	}
	s.saveMu.Unlock()
	return nil
}

// Close flushes pending values and closes the database.
func (s *Store) Close() error {
	s.saveMu.Lock()
	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	s.saveMu.Unlock()

	// Flush pending state
	if err := s.Flush(); err != nil {
		s.log.Warn().Err(err).Msg("flushing preferences on close failed")
	}

	return s.db.Close()
}

func savePrefs(db *sql.DB, values map[string]string) error {
	now := time.Now().Unix()
	return withTx(db, func(tx *sql.Tx) error {
		for k, v := range values {
			_, err := tx.Exec(`
				INSERT INTO prefs (key, value, updated_at) VALUES (?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET
					value = excluded.value,
					updated_at = excluded.updated_at
			`, k, v, now)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func getDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}
