package domain

// Book status values. A book carries at most one active loan; Borrowed means
// that loan exists and has not been returned yet.
const (
	BookAvailable = "Available"
	BookBorrowed  = "Borrowed"
)

// Member categories decide the concurrent-loan limit.
const (
	MemberStudent = "Student"
	MemberFaculty = "Faculty"
	MemberGeneral = "General"
)

const (
	LoanActive    = "Active"
	LoanCompleted = "Completed"
)

const (
	ConditionGood    = "Good"
	ConditionDamaged = "Damaged"
)

type Book struct {
	ID        string `db:"id" json:"id"`
	Title     string `db:"title" json:"title"`
	Author    string `db:"author" json:"author"`
	Publisher string `db:"publisher" json:"publisher"`
	Year      int    `db:"year" json:"year"`
	ISBN      string `db:"isbn" json:"isbn"`
	Category  string `db:"category" json:"category"`
	Stock     int    `db:"stock" json:"stock"`
	Available int    `db:"available" json:"available"`
	Location  string `db:"location" json:"location"`
	Status    string `db:"status" json:"status"` // Available | Borrowed
	CreatedAt string `db:"created_at" json:"createdAt"`
	UpdatedAt string `db:"updated_at" json:"updatedAt"`
}

type Member struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	Phone        string `db:"phone" json:"phone"`
	Address      string `db:"address" json:"address"`
	Category     string `db:"category" json:"category"` // Student | Faculty | General
	RegisteredAt string `db:"registered_at" json:"registeredAt"`
	CreatedAt    string `db:"created_at" json:"createdAt"`
	UpdatedAt    string `db:"updated_at" json:"updatedAt"`
}

// Loan rows are never deleted; Completed loans stay as the audit trail.
type Loan struct {
	ID         string `db:"id" json:"id"`
	MemberID   string `db:"member_id" json:"memberId"`
	BookID     string `db:"book_id" json:"bookId"`
	BorrowDate string `db:"borrow_date" json:"borrowDate"`
	DueDate    string `db:"due_date" json:"dueDate"`
	Duration   int    `db:"duration" json:"duration"`
	Status     string `db:"status" json:"status"` // Active | Completed
	CreatedAt  string `db:"created_at" json:"createdAt"`
	UpdatedAt  string `db:"updated_at" json:"updatedAt"`
}

// Return is written exactly once per loan and is immutable afterwards.
type Return struct {
	ID         string  `db:"id" json:"id"`
	LoanID     string  `db:"loan_id" json:"loanId"`
	ReturnDate string  `db:"return_date" json:"returnDate"`
	DaysLate   int     `db:"days_late" json:"daysLate"`
	Fine       float64 `db:"fine" json:"fine"`
	Condition  string  `db:"condition" json:"condition"` // Good | Damaged
	CreatedAt  string  `db:"created_at" json:"createdAt"`
}

// BorrowReceipt is what a successful borrow hands back to the caller.
type BorrowReceipt struct {
	LoanID     string `json:"id"`
	MemberName string `json:"memberName"`
	BookTitle  string `json:"bookTitle"`
	DueDate    string `json:"dueDate"`
}

type ReturnReceipt struct {
	ReturnID string  `json:"id"`
	DaysLate int     `json:"daysLate"`
	Fine     float64 `json:"fine"`
}

// ActiveLoan is the reporting view of one Active loan. Overdue and
// DaysOverdue are computed against request time, never persisted.
type ActiveLoan struct {
	Loan
	MemberName  string `db:"member_name" json:"memberName"`
	BookTitle   string `db:"book_title" json:"bookTitle"`
	Overdue     bool   `json:"overdue"`
	DaysOverdue int    `json:"daysOverdue"`
}

// ReturnRecord is the reporting view of one completed return.
type ReturnRecord struct {
	Return
	MemberID   string `db:"member_id" json:"memberId"`
	MemberName string `db:"member_name" json:"memberName"`
	BookTitle  string `db:"book_title" json:"bookTitle"`
}

// Stats backs the dashboard counters.
type Stats struct {
	TotalBooks   int     `json:"totalBooks"`
	TotalMembers int     `json:"totalMembers"`
	ActiveLoans  int     `json:"activeLoans"`
	TotalFines   float64 `json:"totalFines"`
	OverdueLoans int     `json:"overdueLoans"`
}
