package services

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"pustaka/internal/domain"
	"pustaka/internal/repos"
)

// CatalogService owns book CRUD. Loan state transitions never happen here;
// the loan service is the only writer of book/loan status.
type CatalogService struct {
	Books *repos.BookRepo
	Loans *repos.LoanRepo
}

func NewCatalogService(books *repos.BookRepo, loans *repos.LoanRepo) *CatalogService {
	return &CatalogService{Books: books, Loans: loans}
}

type BookInput struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
	Year      int    `json:"year"`
	ISBN      string `json:"isbn"`
	Category  string `json:"category"`
	Stock     int    `json:"stock"`
	Location  string `json:"location"`
}

func (s *CatalogService) Create(in BookInput) (domain.Book, error) {
	title := strings.TrimSpace(in.Title)
	if len(title) < 3 {
		return domain.Book{}, domain.Validationf("title must be at least 3 characters")
	}
	author := strings.TrimSpace(in.Author)
	if author == "" {
		return domain.Book{}, domain.Validationf("author is required")
	}
	if in.Stock < 0 {
		return domain.Book{}, domain.Validationf("stock cannot be negative")
	}

	isbn := strings.TrimSpace(in.ISBN)
	if isbn != "" {
		exists, err := s.Books.ISBNExists(isbn, "")
		if err != nil {
			return domain.Book{}, err
		}
		if exists {
			return domain.Book{}, domain.Conflictf("ISBN %s is already registered", isbn)
		}
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = "General"
	}
	location := strings.TrimSpace(in.Location)
	if location == "" {
		location = "General Shelf"
	}

	b := domain.Book{
		ID:        uuid.NewString(),
		Title:     title,
		Author:    author,
		Publisher: strings.TrimSpace(in.Publisher),
		Year:      in.Year,
		ISBN:      isbn,
		Category:  category,
		Stock:     in.Stock,
		Available: in.Stock,
		Location:  location,
		Status:    domain.BookAvailable,
	}
	if err := s.Books.Create(b); err != nil {
		if isUniqueViolation(err) {
			return domain.Book{}, domain.Conflictf("ISBN %s is already registered", isbn)
		}
		return domain.Book{}, err
	}
	return b, nil
}

func (s *CatalogService) Get(id string) (domain.Book, error) {
	b, err := s.Books.ByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Book{}, domain.NotFoundf("book %s not found", id)
	}
	return b, err
}

func (s *CatalogService) List(search string) ([]domain.Book, error) {
	return s.Books.List(strings.TrimSpace(search))
}

func (s *CatalogService) Update(id string, p repos.BookPatch) error {
	if p.Empty() {
		return domain.Validationf("no fields to update")
	}
	if p.Title != nil && len(strings.TrimSpace(*p.Title)) < 3 {
		return domain.Validationf("title must be at least 3 characters")
	}
	if p.Author != nil && strings.TrimSpace(*p.Author) == "" {
		return domain.Validationf("author is required")
	}
	if p.Stock != nil && *p.Stock < 0 {
		return domain.Validationf("stock cannot be negative")
	}
	if p.Available != nil && *p.Available < 0 {
		return domain.Validationf("available stock cannot be negative")
	}
	if p.ISBN != nil && strings.TrimSpace(*p.ISBN) != "" {
		exists, err := s.Books.ISBNExists(strings.TrimSpace(*p.ISBN), id)
		if err != nil {
			return err
		}
		if exists {
			return domain.Conflictf("ISBN %s is already registered", *p.ISBN)
		}
	}

	err := s.Books.Update(id, p)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundf("book %s not found", id)
	}
	if err != nil && isUniqueViolation(err) {
		return domain.Conflictf("ISBN is already registered")
	}
	return err
}

// Delete refuses while the book has an active loan.
func (s *CatalogService) Delete(id string) (domain.Book, error) {
	b, err := s.Get(id)
	if err != nil {
		return domain.Book{}, err
	}
	active, err := s.Loans.ActiveCountForBook(id)
	if err != nil {
		return domain.Book{}, err
	}
	if active > 0 {
		return domain.Book{}, domain.Conflictf("book %q has an active loan and cannot be deleted", b.Title)
	}
	if err := s.Books.Delete(id); err != nil {
		return domain.Book{}, err
	}
	return b, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
