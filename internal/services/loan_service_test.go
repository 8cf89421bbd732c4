package services_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"pustaka/internal/domain"
	"pustaka/internal/repos"
	"pustaka/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// zeroDebt stands in for the fine ledger when debt is not under test.
type zeroDebt struct{}

func (zeroDebt) Outstanding(string) (float64, error) { return 0, nil }

type fixedDebt float64

func (d fixedDebt) Outstanding(string) (float64, error) { return float64(d), nil }

func fixedNow(date string) func() time.Time {
	t, _ := time.Parse("2006-01-02", date)
	return func() time.Time { return t }
}

func testPolicy() services.Policy {
	return services.Policy{FinePerDay: 5000, DamageFine: 50000, MaxLoanDays: 30}
}

func addMember(t *testing.T, db *sqlx.DB, category string) domain.Member {
	t.Helper()
	m := domain.Member{
		ID:           uuid.NewString(),
		Name:         "Test Member",
		Email:        uuid.NewString() + "@example.test",
		Phone:        "081234567890",
		Address:      "-",
		Category:     category,
		RegisteredAt: "2024-01-01",
	}
	require.NoError(t, repos.NewMemberRepo(db).Create(m))
	return m
}

func addBook(t *testing.T, db *sqlx.DB) domain.Book {
	t.Helper()
	b := domain.Book{
		ID:       uuid.NewString(),
		Title:    "Fixture Book " + uuid.NewString()[:8],
		Author:   "Fixture Author",
		Category: "General",
		Stock:    1, Available: 1,
		Location: "Shelf T1",
		Status:   domain.BookAvailable,
	}
	require.NoError(t, repos.NewBookRepo(db).Create(b))
	return b
}

func newLoanSvc(db *sqlx.DB, fines services.FineLedger) *services.LoanService {
	svc := services.NewLoanService(
		repos.NewMemberRepo(db), repos.NewBookRepo(db), repos.NewLoanRepo(db),
		fines, nil, testPolicy(),
	)
	svc.Now = fixedNow("2024-01-01")
	return svc
}

func TestBorrow_Success(t *testing.T) {
	db := memdb(t)
	member := addMember(t, db, domain.MemberStudent)
	book := addBook(t, db)
	svc := newLoanSvc(db, zeroDebt{})

	receipt, err := svc.Borrow(services.BorrowInput{
		MemberID: member.ID, BookID: book.ID, BorrowDate: "2024-01-01", Duration: 7,
	})
	require.NoError(t, err)
	require.NotEmpty(t, receipt.LoanID)
	require.Equal(t, "2024-01-08", receipt.DueDate)
	require.Equal(t, member.Name, receipt.MemberName)
	require.Equal(t, book.Title, receipt.BookTitle)

	// book flipped to Borrowed, exactly one Active loan exists
	got, err := repos.NewBookRepo(db).ByID(book.ID)
	require.NoError(t, err)
	require.Equal(t, domain.BookBorrowed, got.Status)

	n, err := repos.NewLoanRepo(db).ActiveCountForBook(book.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestBorrow_BookAlreadyBorrowed(t *testing.T) {
	db := memdb(t)
	m1 := addMember(t, db, domain.MemberStudent)
	m2 := addMember(t, db, domain.MemberStudent)
	book := addBook(t, db)
	svc := newLoanSvc(db, zeroDebt{})

	_, err := svc.Borrow(services.BorrowInput{MemberID: m1.ID, BookID: book.ID, BorrowDate: "2024-01-01", Duration: 7})
	require.NoError(t, err)

	_, err = svc.Borrow(services.BorrowInput{MemberID: m2.ID, BookID: book.ID, BorrowDate: "2024-01-01", Duration: 7})
	require.ErrorIs(t, err, domain.ErrConflict)

	// rejection left no trace
	n, err := repos.NewLoanRepo(db).ActiveCountForMember(m2.ID)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestBorrow_InputValidation(t *testing.T) {
	db := memdb(t)
	member := addMember(t, db, domain.MemberStudent)
	book := addBook(t, db)
	svc := newLoanSvc(db, zeroDebt{})

	cases := []struct {
		name string
		in   services.BorrowInput
	}{
		{"malformed date", services.BorrowInput{MemberID: member.ID, BookID: book.ID, BorrowDate: "01-01-2024", Duration: 7}},
		{"impossible date", services.BorrowInput{MemberID: member.ID, BookID: book.ID, BorrowDate: "2024-02-31", Duration: 7}},
		{"past date", services.BorrowInput{MemberID: member.ID, BookID: book.ID, BorrowDate: "2023-12-31", Duration: 7}},
		{"zero duration", services.BorrowInput{MemberID: member.ID, BookID: book.ID, BorrowDate: "2024-01-01", Duration: 0}},
		{"over max duration", services.BorrowInput{MemberID: member.ID, BookID: book.ID, BorrowDate: "2024-01-01", Duration: 31}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Borrow(tc.in)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestBorrow_UnknownMemberAndBook(t *testing.T) {
	db := memdb(t)
	member := addMember(t, db, domain.MemberStudent)
	book := addBook(t, db)
	svc := newLoanSvc(db, zeroDebt{})

	_, err := svc.Borrow(services.BorrowInput{MemberID: "nope", BookID: book.ID, BorrowDate: "2024-01-01", Duration: 7})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Borrow(services.BorrowInput{MemberID: member.ID, BookID: "nope", BorrowDate: "2024-01-01", Duration: 7})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBorrow_LoanLimits(t *testing.T) {
	db := memdb(t)
	svc := newLoanSvc(db, zeroDebt{})

	borrow := func(m domain.Member) error {
		b := addBook(t, db)
		_, err := svc.Borrow(services.BorrowInput{MemberID: m.ID, BookID: b.ID, BorrowDate: "2024-01-01", Duration: 7})
		return err
	}

	// a Student holding 3 loans is rejected on the 4th
	student := addMember(t, db, domain.MemberStudent)
	for i := 0; i < 3; i++ {
		require.NoError(t, borrow(student))
	}
	err := borrow(student)
	require.ErrorIs(t, err, domain.ErrLimitExceeded)
	require.Contains(t, err.Error(), "3")

	// a Faculty member holding 4 loans succeeds on the 5th
	faculty := addMember(t, db, domain.MemberFaculty)
	for i := 0; i < 5; i++ {
		require.NoError(t, borrow(faculty))
	}
	require.ErrorIs(t, borrow(faculty), domain.ErrLimitExceeded)

	// General caps at 2
	general := addMember(t, db, domain.MemberGeneral)
	require.NoError(t, borrow(general))
	require.NoError(t, borrow(general))
	require.ErrorIs(t, borrow(general), domain.ErrLimitExceeded)
}

func TestBorrow_OutstandingDebt(t *testing.T) {
	db := memdb(t)
	member := addMember(t, db, domain.MemberStudent)
	book := addBook(t, db)
	svc := newLoanSvc(db, fixedDebt(15000))

	_, err := svc.Borrow(services.BorrowInput{MemberID: member.ID, BookID: book.ID, BorrowDate: "2024-01-01", Duration: 7})
	require.ErrorIs(t, err, domain.ErrOutstandingDebt)
	require.Contains(t, err.Error(), "15000")
}

func TestReturn_FineComputation(t *testing.T) {
	cases := []struct {
		name       string
		returnDate string
		condition  string
		wantLate   int
		wantFine   float64
	}{
		{"two days late good", "2024-01-10", domain.ConditionGood, 2, 10000},
		{"on time damaged", "2024-01-08", domain.ConditionDamaged, 0, 50000},
		{"two days late damaged", "2024-01-10", domain.ConditionDamaged, 2, 60000},
		{"on time good", "2024-01-08", domain.ConditionGood, 0, 0},
		{"early good", "2024-01-05", domain.ConditionGood, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := memdb(t)
			member := addMember(t, db, domain.MemberStudent)
			book := addBook(t, db)
			svc := newLoanSvc(db, zeroDebt{})

			br, err := svc.Borrow(services.BorrowInput{MemberID: member.ID, BookID: book.ID, BorrowDate: "2024-01-01", Duration: 7})
			require.NoError(t, err)
			require.Equal(t, "2024-01-08", br.DueDate)

			rr, err := svc.Return(services.ReturnInput{LoanID: br.LoanID, ReturnDate: tc.returnDate, Condition: tc.condition})
			require.NoError(t, err)
			require.Equal(t, tc.wantLate, rr.DaysLate)
			require.Equal(t, tc.wantFine, rr.Fine)

			// loan completed, book available again
			loan, err := repos.NewLoanRepo(db).ByID(br.LoanID)
			require.NoError(t, err)
			require.Equal(t, domain.LoanCompleted, loan.Status)

			got, err := repos.NewBookRepo(db).ByID(book.ID)
			require.NoError(t, err)
			require.Equal(t, domain.BookAvailable, got.Status)
		})
	}
}

func TestReturn_Conflicts(t *testing.T) {
	db := memdb(t)
	member := addMember(t, db, domain.MemberStudent)
	book := addBook(t, db)
	svc := newLoanSvc(db, zeroDebt{})

	_, err := svc.Return(services.ReturnInput{LoanID: "nope", ReturnDate: "2024-01-08", Condition: domain.ConditionGood})
	require.ErrorIs(t, err, domain.ErrNotFound)

	br, err := svc.Borrow(services.BorrowInput{MemberID: member.ID, BookID: book.ID, BorrowDate: "2024-01-01", Duration: 7})
	require.NoError(t, err)

	_, err = svc.Return(services.ReturnInput{LoanID: br.LoanID, ReturnDate: "2024-01-08", Condition: "Lost"})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Return(services.ReturnInput{LoanID: br.LoanID, ReturnDate: "2024-01-08", Condition: domain.ConditionGood})
	require.NoError(t, err)

	// second return of the same loan must not create another record
	_, err = svc.Return(services.ReturnInput{LoanID: br.LoanID, ReturnDate: "2024-01-09", Condition: domain.ConditionGood})
	require.ErrorIs(t, err, domain.ErrConflict)

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM returns WHERE loan_id = ?`, br.LoanID))
	require.Equal(t, 1, n)
}

func TestFineRepo_OutstandingLedger(t *testing.T) {
	db := memdb(t)
	member := addMember(t, db, domain.MemberStudent)
	book := addBook(t, db)
	fines := repos.NewFineRepo(db)
	svc := newLoanSvc(db, fines)

	br, err := svc.Borrow(services.BorrowInput{MemberID: member.ID, BookID: book.ID, BorrowDate: "2024-01-01", Duration: 7})
	require.NoError(t, err)
	rr, err := svc.Return(services.ReturnInput{LoanID: br.LoanID, ReturnDate: "2024-01-10", Condition: domain.ConditionGood})
	require.NoError(t, err)
	require.Equal(t, 10000.0, rr.Fine)

	// unpaid fine blocks the next borrow
	total, err := fines.Outstanding(member.ID)
	require.NoError(t, err)
	require.Equal(t, 10000.0, total)

	book2 := addBook(t, db)
	_, err = svc.Borrow(services.BorrowInput{MemberID: member.ID, BookID: book2.ID, BorrowDate: "2024-01-01", Duration: 7})
	require.ErrorIs(t, err, domain.ErrOutstandingDebt)

	// settling through the ledger unblocks it
	require.NoError(t, fines.RecordPayment(rr.ReturnID, rr.Fine))
	total, err = fines.Outstanding(member.ID)
	require.NoError(t, err)
	require.Zero(t, total)

	_, err = svc.Borrow(services.BorrowInput{MemberID: member.ID, BookID: book2.ID, BorrowDate: "2024-01-01", Duration: 7})
	require.NoError(t, err)
}
