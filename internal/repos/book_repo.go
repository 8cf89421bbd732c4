package repos

import (
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"

	"pustaka/internal/domain"
)

var dialect = goqu.Dialect("sqlite3")

type BookRepo struct{ db *sqlx.DB }

func NewBookRepo(db *sqlx.DB) *BookRepo { return &BookRepo{db: db} }

const bookCols = `id, title, author, publisher, year, isbn, category, stock, available, location, status, created_at, updated_at`

func (r *BookRepo) Create(b domain.Book) error {
	_, err := r.db.Exec(`
	  INSERT INTO books(id, title, author, publisher, year, isbn, category, stock, available, location, status)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.Title, b.Author, b.Publisher, b.Year, b.ISBN, b.Category, b.Stock, b.Available, b.Location, b.Status)
	return err
}

func (r *BookRepo) ByID(id string) (domain.Book, error) {
	var b domain.Book
	err := r.db.Get(&b, `SELECT `+bookCols+` FROM books WHERE id = ?`, id)
	return b, err
}

// List returns the catalog, optionally narrowed by a case-insensitive
// substring match on title, author or ISBN. Newest first.
func (r *BookRepo) List(search string) ([]domain.Book, error) {
	ds := dialect.From("books").Select(goqu.L(bookCols)).
		Order(goqu.C("created_at").Desc()).
		Prepared(true)
	if search != "" {
		pat := "%" + search + "%"
		ds = ds.Where(goqu.Or(
			goqu.C("title").ILike(pat),
			goqu.C("author").ILike(pat),
			goqu.C("isbn").ILike(pat),
		))
	}
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, err
	}
	var out []domain.Book
	err = r.db.Select(&out, query, args...)
	return out, err
}

// BookPatch carries the optional fields of a partial update; only non-nil
// fields touch the row.
type BookPatch struct {
	Title     *string `json:"title"`
	Author    *string `json:"author"`
	Publisher *string `json:"publisher"`
	Year      *int    `json:"year"`
	ISBN      *string `json:"isbn"`
	Category  *string `json:"category"`
	Stock     *int    `json:"stock"`
	Available *int    `json:"available"`
	Location  *string `json:"location"`
}

// Empty reports whether the patch touches no field at all.
func (p BookPatch) Empty() bool {
	return p.Title == nil && p.Author == nil && p.Publisher == nil && p.Year == nil &&
		p.ISBN == nil && p.Category == nil && p.Stock == nil && p.Available == nil && p.Location == nil
}

// Update applies a patch field-by-field. Returns sql.ErrNoRows when the book
// does not exist.
func (r *BookRepo) Update(id string, p BookPatch) error {
	rec := goqu.Record{"updated_at": goqu.L("CURRENT_TIMESTAMP")}
	if p.Title != nil {
		rec["title"] = *p.Title
	}
	if p.Author != nil {
		rec["author"] = *p.Author
	}
	if p.Publisher != nil {
		rec["publisher"] = *p.Publisher
	}
	if p.Year != nil {
		rec["year"] = *p.Year
	}
	if p.ISBN != nil {
		rec["isbn"] = *p.ISBN
	}
	if p.Category != nil {
		rec["category"] = *p.Category
	}
	if p.Stock != nil {
		rec["stock"] = *p.Stock
	}
	if p.Available != nil {
		rec["available"] = *p.Available
	}
	if p.Location != nil {
		rec["location"] = *p.Location
	}

	query, args, err := dialect.Update("books").Set(rec).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	res, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *BookRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ISBNExists checks uniqueness before insert; excludeID skips the book being
// updated.
func (r *BookRepo) ISBNExists(isbn, excludeID string) (bool, error) {
	if isbn == "" {
		return false, nil
	}
	var id string
	err := r.db.Get(&id, `SELECT id FROM books WHERE isbn = ? AND id <> ?`, isbn, excludeID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
