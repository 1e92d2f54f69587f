package state

import (
	"database/sql"
	"time"

	"github.com/llehouerou/tilawa/internal/gate"
)

// SaveResume records where to pick up once the identity step completes.
func (s *Store) SaveResume(r gate.Redirect) error {
	_, err := s.db.Exec(`
		INSERT INTO resume_intents (surah, verse, reason, created_at)
		VALUES (?, ?, ?, ?)
	`, r.CollectionID, r.ItemNumber, r.Reason, time.Now().Unix())
	return err
}

// TakeResume returns the most recent resume intent and clears all of them.
// It returns nil when there is none.
func (s *Store) TakeResume() (*gate.Redirect, error) {
	var r *gate.Redirect
	err := withTx(s.db, func(tx *sql.Tx) error {
		var got gate.Redirect
		err := tx.QueryRow(`
			SELECT surah, verse, reason FROM resume_intents
			ORDER BY created_at DESC, id DESC LIMIT 1
		`).Scan(&got.CollectionID, &got.ItemNumber, &got.Reason)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		r = &got
		_, err = tx.Exec(`DELETE FROM resume_intents`)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}
