package services_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pustaka/internal/domain"
	"pustaka/internal/repos"
	"pustaka/internal/services"
)

func TestReport_ActiveLoansOverdueAtReadTime(t *testing.T) {
	db := memdb(t)
	member := addMember(t, db, domain.MemberFaculty)
	b1 := addBook(t, db)
	b2 := addBook(t, db)
	loans := newLoanSvc(db, zeroDebt{})

	// due 2024-01-04 and 2024-01-11
	_, err := loans.Borrow(services.BorrowInput{MemberID: member.ID, BookID: b1.ID, BorrowDate: "2024-01-01", Duration: 3})
	require.NoError(t, err)
	_, err = loans.Borrow(services.BorrowInput{MemberID: member.ID, BookID: b2.ID, BorrowDate: "2024-01-01", Duration: 10})
	require.NoError(t, err)

	reports := services.NewReportService(repos.NewLoanRepo(db))
	reports.Now = fixedNow("2024-01-06")

	rows, err := reports.ActiveLoans()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// soonest due first
	require.Equal(t, "2024-01-04", rows[0].DueDate)
	require.Equal(t, "2024-01-11", rows[1].DueDate)

	// flags reflect "now" at query time
	require.True(t, rows[0].Overdue)
	require.Equal(t, 2, rows[0].DaysOverdue)
	require.False(t, rows[1].Overdue)
	require.Zero(t, rows[1].DaysOverdue)

	require.Equal(t, member.Name, rows[0].MemberName)
	require.Equal(t, b1.Title, rows[0].BookTitle)

	// a day later the second loan is still fine, the first more overdue
	reports.Now = fixedNow("2024-01-07")
	rows, err = reports.ActiveLoans()
	require.NoError(t, err)
	require.Equal(t, 3, rows[0].DaysOverdue)
}

func TestReport_HistoryNewestFirst(t *testing.T) {
	db := memdb(t)
	member := addMember(t, db, domain.MemberFaculty)
	loans := newLoanSvc(db, zeroDebt{})

	var returnIDs []string
	for i := 0; i < 3; i++ {
		b := addBook(t, db)
		br, err := loans.Borrow(services.BorrowInput{MemberID: member.ID, BookID: b.ID, BorrowDate: "2024-01-01", Duration: 7})
		require.NoError(t, err)
		rr, err := loans.Return(services.ReturnInput{LoanID: br.LoanID, ReturnDate: "2024-01-08", Condition: domain.ConditionGood})
		require.NoError(t, err)
		returnIDs = append(returnIDs, rr.ReturnID)
	}

	reports := services.NewReportService(repos.NewLoanRepo(db))
	history, err := reports.History()
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, returnIDs[2], history[0].ID, "newest first")
	require.Equal(t, member.Name, history[0].MemberName)
}

func TestReport_Stats(t *testing.T) {
	db := memdb(t)
	member := addMember(t, db, domain.MemberFaculty)
	b1 := addBook(t, db)
	b2 := addBook(t, db)
	loans := newLoanSvc(db, zeroDebt{})

	reports := services.NewReportService(repos.NewLoanRepo(db))
	reports.Now = fixedNow("2024-01-06")

	base, err := reports.Stats()
	require.NoError(t, err)

	// one loan due 2024-01-04 (overdue by the 6th), one returned late with a fine
	br1, err := loans.Borrow(services.BorrowInput{MemberID: member.ID, BookID: b1.ID, BorrowDate: "2024-01-01", Duration: 3})
	require.NoError(t, err)
	_ = br1
	br2, err := loans.Borrow(services.BorrowInput{MemberID: member.ID, BookID: b2.ID, BorrowDate: "2024-01-01", Duration: 3})
	require.NoError(t, err)
	_, err = loans.Return(services.ReturnInput{LoanID: br2.LoanID, ReturnDate: "2024-01-06", Condition: domain.ConditionGood})
	require.NoError(t, err)

	stats, err := reports.Stats()
	require.NoError(t, err)
	require.Equal(t, base.TotalBooks, stats.TotalBooks)
	require.Equal(t, base.TotalMembers, stats.TotalMembers)
	require.Equal(t, base.ActiveLoans+1, stats.ActiveLoans)
	require.Equal(t, base.OverdueLoans+1, stats.OverdueLoans)
	// fines are summed from return records
	require.Equal(t, base.TotalFines+10000, stats.TotalFines)
}
