package handlers

import (
	"github.com/jmoiron/sqlx"

	"pustaka/internal/audit"
	"pustaka/internal/config"
	"pustaka/internal/repos"
	"pustaka/internal/services"
)

type Deps struct {
	BookHandler   *BookHandler
	MemberHandler *MemberHandler
	LoanHandler   *LoanHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	bookRepo := repos.NewBookRepo(db)
	memberRepo := repos.NewMemberRepo(db)
	loanRepo := repos.NewLoanRepo(db)
	fineRepo := repos.NewFineRepo(db)
	activityRepo := repos.NewActivityRepo(db)

	backup := audit.NewWriter(cfg.BackupDir)

	catalogSvc := services.NewCatalogService(bookRepo, loanRepo)
	memberSvc := services.NewMemberService(memberRepo, loanRepo)
	loanSvc := services.NewLoanService(memberRepo, bookRepo, loanRepo, fineRepo, backup, services.Policy{
		FinePerDay:  cfg.FinePerDay,
		DamageFine:  cfg.DamageFine,
		MaxLoanDays: cfg.MaxLoanDays,
	})
	reportSvc := services.NewReportService(loanRepo)

	return &Deps{
		BookHandler:   &BookHandler{Catalog: catalogSvc, Activity: activityRepo},
		MemberHandler: &MemberHandler{Members: memberSvc, Activity: activityRepo, Backup: backup},
		LoanHandler:   &LoanHandler{Loans: loanSvc, Reports: reportSvc, Activity: activityRepo},
	}
}
