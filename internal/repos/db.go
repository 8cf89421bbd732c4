package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if dsn == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed a starter catalog if the DB is brand new
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Books (single active copy per book id; status tracks that copy)
CREATE TABLE IF NOT EXISTS books(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  author TEXT NOT NULL,
  publisher TEXT NOT NULL DEFAULT '',
  year INTEGER NOT NULL DEFAULT 0,
  isbn TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT 'General',
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  available INTEGER NOT NULL DEFAULT 0 CHECK (available >= 0),
  location TEXT NOT NULL DEFAULT 'General Shelf',
  status TEXT NOT NULL DEFAULT 'Available' CHECK (status IN ('Available','Borrowed')),
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_books_title  ON books(LOWER(title));
CREATE INDEX IF NOT EXISTS idx_books_status ON books(status);
CREATE UNIQUE INDEX IF NOT EXISTS idx_books_isbn ON books(isbn) WHERE isbn <> '';

-- Members
CREATE TABLE IF NOT EXISTS members(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  phone TEXT NOT NULL,
  address TEXT NOT NULL DEFAULT '-',
  category TEXT NOT NULL CHECK (category IN ('Student','Faculty','General')),
  registered_at TEXT NOT NULL,
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_members_email ON members(LOWER(email));
CREATE INDEX IF NOT EXISTS idx_members_name ON members(name);

-- Loans (audit trail: rows are never deleted, only completed)
CREATE TABLE IF NOT EXISTS loans(
  id TEXT PRIMARY KEY,
  member_id TEXT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
  book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
  borrow_date TEXT NOT NULL,
  due_date TEXT NOT NULL,
  duration INTEGER NOT NULL CHECK (duration >= 1),
  status TEXT NOT NULL DEFAULT 'Active' CHECK (status IN ('Active','Completed')),
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_loans_status ON loans(status);
CREATE INDEX IF NOT EXISTS idx_loans_member ON loans(member_id);
CREATE INDEX IF NOT EXISTS idx_loans_book   ON loans(book_id);

-- Returns (exactly one per loan, immutable)
CREATE TABLE IF NOT EXISTS returns(
  id TEXT PRIMARY KEY,
  loan_id TEXT NOT NULL UNIQUE REFERENCES loans(id) ON DELETE CASCADE,
  return_date TEXT NOT NULL,
  days_late INTEGER NOT NULL DEFAULT 0 CHECK (days_late >= 0),
  fine NUMERIC NOT NULL DEFAULT 0 CHECK (fine >= 0),
  condition TEXT NOT NULL CHECK (condition IN ('Good','Damaged')),
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_returns_loan ON returns(loan_id);

-- Fine payment ledger: a return's fine counts as outstanding until a
-- Paid row references it.
CREATE TABLE IF NOT EXISTS fine_payments(
  id TEXT PRIMARY KEY,
  return_id TEXT NOT NULL REFERENCES returns(id) ON DELETE CASCADE,
  amount NUMERIC NOT NULL CHECK (amount >= 0),
  status TEXT NOT NULL DEFAULT 'Unpaid' CHECK (status IN ('Paid','Unpaid')),
  paid_at TEXT,
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_fine_payments_return ON fine_payments(return_id);

-- Append-only activity log
CREATE TABLE IF NOT EXISTS activity_log(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  action TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  ip_address TEXT NOT NULL DEFAULT '',
  user_agent TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_activity_action  ON activity_log(action);
CREATE INDEX IF NOT EXISTS idx_activity_created ON activity_log(created_at);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM books`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting starter catalog")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO books(id,title,author,publisher,year,isbn,category,stock,available,location) VALUES
	  ('bk-clean-code','Clean Code','Robert C. Martin','Prentice Hall',2008,'9780132350884','Engineering',3,3,'Shelf A1'),
	  ('bk-sicp','Structure and Interpretation of Computer Programs','Abelson & Sussman','MIT Press',1996,'9780262510875','Engineering',2,2,'Shelf A2'),
	  ('bk-laskar','Laskar Pelangi','Andrea Hirata','Bentang Pustaka',2005,'9789793062792','Fiction',5,5,'Shelf C4')`)
	return tx.Commit()
}
