package services

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"pustaka/internal/audit"
	"pustaka/internal/domain"
	"pustaka/internal/repos"
	"pustaka/internal/validate"
)

// FineLedger answers "how much does this member still owe". The SQL-backed
// implementation lives in repos.FineRepo; tests stub it.
type FineLedger interface {
	Outstanding(memberID string) (float64, error)
}

// Policy holds the fine and duration constants.
type Policy struct {
	FinePerDay  float64
	DamageFine  float64
	MaxLoanDays int
}

// LoanService is the only component allowed to mutate Loan.status and
// Book.status. Borrow and Return run their writes inside a single
// transaction each; business-rule rejections are deterministic and never
// retried.
type LoanService struct {
	Members *repos.MemberRepo
	Books   *repos.BookRepo
	Loans   *repos.LoanRepo
	Fines   FineLedger
	Backup  *audit.Writer // optional
	Policy  Policy

	// Now is overridable in tests; zero value means time.Now.
	Now func() time.Time
}

func NewLoanService(members *repos.MemberRepo, books *repos.BookRepo, loans *repos.LoanRepo, fines FineLedger, backup *audit.Writer, p Policy) *LoanService {
	return &LoanService{Members: members, Books: books, Loans: loans, Fines: fines, Backup: backup, Policy: p}
}

func (s *LoanService) today() time.Time {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	return now.Truncate(24 * time.Hour)
}

func loanLimit(category string) int {
	switch category {
	case domain.MemberStudent:
		return 3
	case domain.MemberFaculty:
		return 5
	default:
		return 2
	}
}

type BorrowInput struct {
	MemberID   string `json:"memberId"`
	BookID     string `json:"bookId"`
	BorrowDate string `json:"borrowDate"`
	Duration   int    `json:"duration"`
}

func (s *LoanService) Borrow(in BorrowInput) (domain.BorrowReceipt, error) {
	borrowDate, ok := validate.Date(in.BorrowDate)
	if !ok {
		return domain.BorrowReceipt{}, domain.Validationf("invalid date format")
	}
	if borrowDate.Before(s.today()) {
		return domain.BorrowReceipt{}, domain.Validationf("borrow date cannot be in the past")
	}
	if in.Duration < 1 {
		return domain.BorrowReceipt{}, domain.Validationf("duration must be at least 1 day")
	}
	if in.Duration > s.Policy.MaxLoanDays {
		return domain.BorrowReceipt{}, domain.Validationf("duration must be at most %d days", s.Policy.MaxLoanDays)
	}

	member, err := s.Members.ByID(in.MemberID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.BorrowReceipt{}, domain.NotFoundf("member %s not found", in.MemberID)
	}
	if err != nil {
		return domain.BorrowReceipt{}, err
	}

	book, err := s.Books.ByID(in.BookID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.BorrowReceipt{}, domain.NotFoundf("book %s not found", in.BookID)
	}
	if err != nil {
		return domain.BorrowReceipt{}, err
	}
	if book.Status != domain.BookAvailable {
		return domain.BorrowReceipt{}, domain.Conflictf("book %q is already borrowed", book.Title)
	}

	active, err := s.Loans.ActiveCountForMember(member.ID)
	if err != nil {
		return domain.BorrowReceipt{}, err
	}
	if limit := loanLimit(member.Category); active >= limit {
		return domain.BorrowReceipt{}, domain.LimitExceededf("%s members may hold at most %d loans at once", member.Category, limit)
	}

	debt, err := s.Fines.Outstanding(member.ID)
	if err != nil {
		return domain.BorrowReceipt{}, err
	}
	if debt > 0 {
		return domain.BorrowReceipt{}, domain.OutstandingDebtf("member owes %.0f in unpaid fines; settle them first", debt)
	}

	dueDate := borrowDate.AddDate(0, 0, in.Duration)
	loan := domain.Loan{
		ID:         uuid.NewString(),
		MemberID:   member.ID,
		BookID:     book.ID,
		BorrowDate: borrowDate.Format(validate.DateLayout),
		DueDate:    dueDate.Format(validate.DateLayout),
		Duration:   in.Duration,
		Status:     domain.LoanActive,
	}

	if err := s.Loans.CreateBorrow(loan); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.BorrowReceipt{}, err
		}
		return domain.BorrowReceipt{}, fmt.Errorf("%w: %v", domain.ErrTransactionFailed, err)
	}

	s.backupLoan(map[string]any{
		"id":       loan.ID,
		"member":   member.Name,
		"book":     book.Title,
		"borrowed": loan.BorrowDate,
		"due":      loan.DueDate,
		"action":   "BORROW",
	})

	return domain.BorrowReceipt{
		LoanID:     loan.ID,
		MemberName: member.Name,
		BookTitle:  book.Title,
		DueDate:    loan.DueDate,
	}, nil
}

type ReturnInput struct {
	LoanID     string `json:"loanId"`
	ReturnDate string `json:"returnDate"`
	Condition  string `json:"condition"`
}

func (s *LoanService) Return(in ReturnInput) (domain.ReturnReceipt, error) {
	returnDate, ok := validate.Date(in.ReturnDate)
	if !ok {
		return domain.ReturnReceipt{}, domain.Validationf("invalid date format")
	}
	if !validate.Condition(in.Condition) {
		return domain.ReturnReceipt{}, domain.Validationf("invalid condition (choose Good or Damaged)")
	}

	loan, err := s.Loans.ByID(in.LoanID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ReturnReceipt{}, domain.NotFoundf("loan %s not found", in.LoanID)
	}
	if err != nil {
		return domain.ReturnReceipt{}, err
	}
	if loan.Status != domain.LoanActive {
		return domain.ReturnReceipt{}, domain.Conflictf("loan %s is already completed", loan.ID)
	}

	daysLate, fine := s.assess(loan.DueDate, returnDate, in.Condition)

	ret := domain.Return{
		ID:         uuid.NewString(),
		LoanID:     loan.ID,
		ReturnDate: returnDate.Format(validate.DateLayout),
		DaysLate:   daysLate,
		Fine:       fine,
		Condition:  in.Condition,
	}

	if err := s.Loans.CompleteReturn(ret, loan.BookID); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.ReturnReceipt{}, err
		}
		return domain.ReturnReceipt{}, fmt.Errorf("%w: %v", domain.ErrTransactionFailed, err)
	}

	s.backupReturn(map[string]any{
		"id":        ret.ID,
		"loan_id":   loan.ID,
		"returned":  ret.ReturnDate,
		"days_late": daysLate,
		"fine":      fine,
		"condition": in.Condition,
		"action":    "RETURN",
	})

	return domain.ReturnReceipt{ReturnID: ret.ID, DaysLate: daysLate, Fine: fine}, nil
}

// assess computes late days as a whole calendar-day difference (returns
// before the due date count as zero) and prices the fine: per-day rate
// times late days, plus the flat damage surcharge when the book comes back
// damaged regardless of lateness.
func (s *LoanService) assess(dueDate string, returned time.Time, condition string) (int, float64) {
	due, _ := validate.Date(dueDate)

	daysLate := 0
	if returned.After(due) {
		daysLate = int(returned.Sub(due).Hours() / 24)
	}

	fine := float64(daysLate) * s.Policy.FinePerDay
	if condition == domain.ConditionDamaged {
		fine += s.Policy.DamageFine
	}
	return daysLate, fine
}

// Backup writes are best-effort and never fail the loan operation.
func (s *LoanService) backupLoan(record map[string]any) {
	if s.Backup == nil {
		return
	}
	if err := s.Backup.Loan(record); err != nil {
		log.Printf("[backup] loan record failed: %v", err)
	}
}

func (s *LoanService) backupReturn(record map[string]any) {
	if s.Backup == nil {
		return
	}
	if err := s.Backup.Return(record); err != nil {
		log.Printf("[backup] return record failed: %v", err)
	}
}
