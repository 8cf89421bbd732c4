package services

import (
	"time"

	"pustaka/internal/domain"
	"pustaka/internal/repos"
	"pustaka/internal/validate"
)

// ReportService derives read-only views. Overdue flags are computed against
// the time of the call, never persisted.
type ReportService struct {
	Loans *repos.LoanRepo

	// Now is overridable in tests; zero value means time.Now.
	Now func() time.Time
}

func NewReportService(loans *repos.LoanRepo) *ReportService {
	return &ReportService{Loans: loans}
}

func (s *ReportService) today() time.Time {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	return now.Truncate(24 * time.Hour)
}

// ActiveLoans lists Active loans soonest-due first, flagging overdue ones
// relative to today.
func (s *ReportService) ActiveLoans() ([]domain.ActiveLoan, error) {
	rows, err := s.Loans.ActiveList()
	if err != nil {
		return nil, err
	}

	today := s.today()
	for i := range rows {
		due, ok := validate.Date(rows[i].DueDate)
		if !ok {
			continue
		}
		if today.After(due) {
			rows[i].Overdue = true
			rows[i].DaysOverdue = int(today.Sub(due).Hours() / 24)
		}
	}
	return rows, nil
}

// History returns the latest 100 returns, newest first.
func (s *ReportService) History() ([]domain.ReturnRecord, error) {
	return s.Loans.History(100)
}

func (s *ReportService) Stats() (domain.Stats, error) {
	return s.Loans.Stats(s.today().Format(validate.DateLayout))
}
