package repos

import "github.com/jmoiron/sqlx"

// ActivityRepo appends to the activity_log table. Callers treat failures as
// best-effort; nothing user-facing depends on these rows.
type ActivityRepo struct{ db *sqlx.DB }

func NewActivityRepo(db *sqlx.DB) *ActivityRepo { return &ActivityRepo{db: db} }

func (r *ActivityRepo) Log(action, description, ip, userAgent string) error {
	_, err := r.db.Exec(`
	  INSERT INTO activity_log(action, description, ip_address, user_agent)
	  VALUES (?, ?, ?, ?)
	`, action, description, ip, userAgent)
	return err
}
