package repos

import (
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"pustaka/internal/domain"
)

type MemberRepo struct{ db *sqlx.DB }

func NewMemberRepo(db *sqlx.DB) *MemberRepo { return &MemberRepo{db: db} }

const memberCols = `id, name, email, phone, address, category, registered_at, created_at, updated_at`

func (r *MemberRepo) Create(m domain.Member) error {
	_, err := r.db.Exec(`
	  INSERT INTO members(id, name, email, phone, address, category, registered_at)
	  VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Name, m.Email, m.Phone, m.Address, m.Category, m.RegisteredAt)
	return err
}

func (r *MemberRepo) ByID(id string) (domain.Member, error) {
	var m domain.Member
	err := r.db.Get(&m, `SELECT `+memberCols+` FROM members WHERE id = ?`, id)
	return m, err
}

// List returns members, optionally narrowed by a case-insensitive substring
// match on name or email. Newest first.
func (r *MemberRepo) List(search string) ([]domain.Member, error) {
	ds := dialect.From("members").Select(goqu.L(memberCols)).
		Order(goqu.C("created_at").Desc()).
		Prepared(true)
	if search != "" {
		pat := "%" + search + "%"
		ds = ds.Where(goqu.Or(
			goqu.C("name").ILike(pat),
			goqu.C("email").ILike(pat),
		))
	}
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, err
	}
	var out []domain.Member
	err = r.db.Select(&out, query, args...)
	return out, err
}

func (r *MemberRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *MemberRepo) EmailExists(email string) (bool, error) {
	var id string
	err := r.db.Get(&id, `SELECT id FROM members WHERE LOWER(email) = LOWER(?)`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
