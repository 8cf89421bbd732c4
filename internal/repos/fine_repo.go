package repos

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// FineRepo is the fine-payment ledger. A return's fine stays outstanding
// until a Paid payment row references it.
type FineRepo struct{ db *sqlx.DB }

func NewFineRepo(db *sqlx.DB) *FineRepo { return &FineRepo{db: db} }

// Outstanding sums the unpaid fines accrued by a member across all their
// returns.
func (r *FineRepo) Outstanding(memberID string) (float64, error) {
	var total float64
	err := r.db.Get(&total, `
	  SELECT COALESCE(SUM(rt.fine), 0)
	  FROM returns rt
	  JOIN loans l ON l.id = rt.loan_id
	  WHERE l.member_id = ? AND rt.fine > 0
	    AND rt.id NOT IN (SELECT return_id FROM fine_payments WHERE status = 'Paid')
	`, memberID)
	return total, err
}

// RecordPayment settles the fine attached to a return.
func (r *FineRepo) RecordPayment(returnID string, amount float64) error {
	_, err := r.db.Exec(`
	  INSERT INTO fine_payments(id, return_id, amount, status, paid_at)
	  VALUES (?, ?, ?, 'Paid', CURRENT_TIMESTAMP)
	`, uuid.NewString(), returnID, amount)
	return err
}
