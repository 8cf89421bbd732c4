package handlers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	applog "pustaka/internal/log"
	"pustaka/internal/repos"
	"pustaka/internal/services"
)

// LoanHandler multiplexes the loan endpoint on ?action=, keeping the wire
// contract of the original API: pinjam/kembali mutate, list/riwayat/stats
// read.
type LoanHandler struct {
	Loans    *services.LoanService
	Reports  *services.ReportService
	Activity *repos.ActivityRepo
}

func (h *LoanHandler) Post(c *fiber.Ctx) error {
	switch c.Query("action") {
	case "pinjam":
		return h.borrow(c)
	case "kembali":
		return h.returnBook(c)
	default:
		return respond(c, fiber.StatusBadRequest, false, nil, "Invalid action")
	}
}

func (h *LoanHandler) Get(c *fiber.Ctx) error {
	switch c.Query("action") {
	case "list":
		loans, err := h.Reports.ActiveLoans()
		if err != nil {
			return fail(c, "loan.list", err)
		}
		return ok(c, loans, "Active loans fetched")
	case "riwayat":
		history, err := h.Reports.History()
		if err != nil {
			return fail(c, "loan.history", err)
		}
		return ok(c, history, "Return history fetched")
	case "stats":
		stats, err := h.Reports.Stats()
		if err != nil {
			return fail(c, "loan.stats", err)
		}
		return ok(c, stats, "Statistics fetched")
	default:
		return respond(c, fiber.StatusBadRequest, false, nil, "Invalid action")
	}
}

func (h *LoanHandler) borrow(c *fiber.Ctx) error {
	var in services.BorrowInput
	if err := c.BodyParser(&in); err != nil {
		return respond(c, fiber.StatusBadRequest, false, nil, "Invalid request body")
	}
	if in.MemberID == "" || in.BookID == "" || in.BorrowDate == "" {
		return respond(c, fiber.StatusBadRequest, false, nil, "memberId, bookId and borrowDate are required")
	}

	receipt, err := h.Loans.Borrow(in)
	if err != nil {
		return fail(c, "loan.borrow", err)
	}

	h.logActivity(c, "BORROW", fmt.Sprintf("%s borrowed %q, due %s", receipt.MemberName, receipt.BookTitle, receipt.DueDate))
	applog.Audit(c, "loan.borrow", map[string]any{"loan_id": receipt.LoanID})
	return created(c, receipt, "Borrow processed")
}

func (h *LoanHandler) returnBook(c *fiber.Ctx) error {
	var in services.ReturnInput
	if err := c.BodyParser(&in); err != nil {
		return respond(c, fiber.StatusBadRequest, false, nil, "Invalid request body")
	}
	if in.LoanID == "" || in.ReturnDate == "" || in.Condition == "" {
		return respond(c, fiber.StatusBadRequest, false, nil, "loanId, returnDate and condition are required")
	}

	receipt, err := h.Loans.Return(in)
	if err != nil {
		return fail(c, "loan.return", err)
	}

	desc := "return processed for loan " + in.LoanID
	if receipt.DaysLate > 0 {
		desc += fmt.Sprintf(" (%d days late, fine %.0f)", receipt.DaysLate, receipt.Fine)
	}
	h.logActivity(c, "RETURN", desc)
	applog.Audit(c, "loan.return", map[string]any{"return_id": receipt.ReturnID, "fine": receipt.Fine})

	msg := "Return processed"
	if receipt.Fine > 0 {
		msg = fmt.Sprintf("Return processed. Fine: %.0f", receipt.Fine)
	}
	return ok(c, receipt, msg)
}

func (h *LoanHandler) logActivity(c *fiber.Ctx, action, description string) {
	if err := h.Activity.Log(action, description, c.IP(), string(c.Request().Header.UserAgent())); err != nil {
		log.Printf("[activity] %s failed: %v", action, err)
	}
}
