package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"pustaka/internal/domain"
)

type LoanRepo struct{ db *sqlx.DB }

func NewLoanRepo(db *sqlx.DB) *LoanRepo { return &LoanRepo{db: db} }

const loanCols = `id, member_id, book_id, borrow_date, due_date, duration, status, created_at, updated_at`

func (r *LoanRepo) ByID(id string) (domain.Loan, error) {
	var l domain.Loan
	err := r.db.Get(&l, `SELECT `+loanCols+` FROM loans WHERE id = ?`, id)
	return l, err
}

func (r *LoanRepo) ActiveCountForMember(memberID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM loans WHERE member_id = ? AND status = 'Active'`, memberID)
	return n, err
}

func (r *LoanRepo) ActiveCountForBook(bookID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM loans WHERE book_id = ? AND status = 'Active'`, bookID)
	return n, err
}

// CreateBorrow inserts the loan and flips the book to Borrowed in one
// transaction. The book status is re-read inside the transaction so two
// concurrent borrows of the same book cannot both commit.
func (r *LoanRepo) CreateBorrow(l domain.Loan) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var status string
	if err := tx.Get(&status, `SELECT status FROM books WHERE id = ?`, l.BookID); err != nil {
		return err
	}
	if status != domain.BookAvailable {
		return fmt.Errorf("book %s is not available: %w", l.BookID, domain.ErrConflict)
	}

	if _, err := tx.Exec(`
	  INSERT INTO loans(id, member_id, book_id, borrow_date, due_date, duration, status)
	  VALUES (?, ?, ?, ?, ?, ?, 'Active')
	`, l.ID, l.MemberID, l.BookID, l.BorrowDate, l.DueDate, l.Duration); err != nil {
		return err
	}

	if _, err := tx.Exec(`
	  UPDATE books SET status = 'Borrowed', updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, l.BookID); err != nil {
		return err
	}

	return tx.Commit()
}

// CompleteReturn inserts the return row, completes the loan and frees the
// book in one transaction. All three writes commit together or none do.
func (r *LoanRepo) CompleteReturn(ret domain.Return, bookID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var status string
	if err := tx.Get(&status, `SELECT status FROM loans WHERE id = ?`, ret.LoanID); err != nil {
		return err
	}
	if status != domain.LoanActive {
		return fmt.Errorf("loan %s already completed: %w", ret.LoanID, domain.ErrConflict)
	}

	if _, err := tx.Exec(`
	  INSERT INTO returns(id, loan_id, return_date, days_late, fine, condition)
	  VALUES (?, ?, ?, ?, ?, ?)
	`, ret.ID, ret.LoanID, ret.ReturnDate, ret.DaysLate, ret.Fine, ret.Condition); err != nil {
		return err
	}

	if _, err := tx.Exec(`
	  UPDATE loans SET status = 'Completed', updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, ret.LoanID); err != nil {
		return err
	}

	if _, err := tx.Exec(`
	  UPDATE books SET status = 'Available', updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, bookID); err != nil {
		return err
	}

	return tx.Commit()
}

// ActiveList returns Active loans with member/book identity, soonest due
// first. Overdue flags are filled in by the report service, not here.
func (r *LoanRepo) ActiveList() ([]domain.ActiveLoan, error) {
	var out []domain.ActiveLoan
	err := r.db.Select(&out, `
	  SELECT l.id, l.member_id, l.book_id, l.borrow_date, l.due_date, l.duration, l.status,
	         l.created_at, l.updated_at,
	         m.name  AS member_name,
	         b.title AS book_title
	  FROM loans l
	  JOIN members m ON m.id = l.member_id
	  JOIN books   b ON b.id = l.book_id
	  WHERE l.status = 'Active'
	  ORDER BY l.due_date ASC
	`)
	return out, err
}

// History returns the most recent returns, newest first.
func (r *LoanRepo) History(limit int) ([]domain.ReturnRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.ReturnRecord
	err := r.db.Select(&out, `
	  SELECT rt.id, rt.loan_id, rt.return_date, rt.days_late, rt.fine, rt.condition, rt.created_at,
	         l.member_id,
	         m.name  AS member_name,
	         b.title AS book_title
	  FROM returns rt
	  JOIN loans   l ON l.id = rt.loan_id
	  JOIN members m ON m.id = l.member_id
	  JOIN books   b ON b.id = l.book_id
	  ORDER BY datetime(rt.created_at) DESC, rt.rowid DESC
	  LIMIT ?
	`, limit)
	return out, err
}

// Stats gathers the dashboard counters. Total fines come from the returns
// table, where fines are actually recorded. Overdue counts loans whose due
// date is before the supplied date (request time).
func (r *LoanRepo) Stats(today string) (domain.Stats, error) {
	var s domain.Stats
	if err := r.db.Get(&s.TotalBooks, `SELECT COUNT(*) FROM books`); err != nil {
		return s, err
	}
	if err := r.db.Get(&s.TotalMembers, `SELECT COUNT(*) FROM members`); err != nil {
		return s, err
	}
	if err := r.db.Get(&s.ActiveLoans, `SELECT COUNT(*) FROM loans WHERE status = 'Active'`); err != nil {
		return s, err
	}
	if err := r.db.Get(&s.TotalFines, `SELECT COALESCE(SUM(fine), 0) FROM returns WHERE fine > 0`); err != nil {
		return s, err
	}
	if err := r.db.Get(&s.OverdueLoans, `
	  SELECT COUNT(*) FROM loans WHERE status = 'Active' AND due_date < ?
	`, today); err != nil {
		return s, err
	}
	return s, nil
}
