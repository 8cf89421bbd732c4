package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"pustaka/internal/domain"
	"pustaka/internal/repos"
	"pustaka/internal/validate"
)

type MemberService struct {
	Members *repos.MemberRepo
	Loans   *repos.LoanRepo

	// Now is overridable in tests; zero value means time.Now.
	Now func() time.Time
}

func NewMemberService(members *repos.MemberRepo, loans *repos.LoanRepo) *MemberService {
	return &MemberService{Members: members, Loans: loans}
}

func (s *MemberService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type MemberInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Category string `json:"category"`
}

// Register validates fail-fast in field order and persists the normalized
// forms: Title-Cased name, lower-cased email, digits-only phone.
func (s *MemberService) Register(in MemberInput) (domain.Member, error) {
	name, ok := validate.Name(in.Name)
	if !ok {
		return domain.Member{}, domain.Validationf("name must be 3-255 characters of letters, spaces and .,'- punctuation")
	}

	email, ok := validate.Email(in.Email)
	if !ok {
		return domain.Member{}, domain.Validationf("invalid email format")
	}
	exists, err := s.Members.EmailExists(email)
	if err != nil {
		return domain.Member{}, err
	}
	if exists {
		return domain.Member{}, domain.Conflictf("email %s is already registered", email)
	}

	phone, ok := validate.Phone(in.Phone)
	if !ok {
		return domain.Member{}, domain.Validationf("phone must be 10-15 digits with an Indonesian mobile prefix")
	}

	if !validate.MemberCategory(in.Category) {
		return domain.Member{}, domain.Validationf("invalid category (choose Student, Faculty or General)")
	}

	address, ok := validate.Address(in.Address)
	if !ok {
		return domain.Member{}, domain.Validationf("address must be at most 500 characters")
	}
	if address == "" {
		address = "-"
	}

	m := domain.Member{
		ID:           uuid.NewString(),
		Name:         validate.TitleCase(name),
		Email:        email,
		Phone:        phone,
		Address:      address,
		Category:     in.Category,
		RegisteredAt: s.now().Format(validate.DateLayout),
	}
	if err := s.Members.Create(m); err != nil {
		if isUniqueViolation(err) {
			return domain.Member{}, domain.Conflictf("email %s is already registered", email)
		}
		return domain.Member{}, err
	}
	return m, nil
}

func (s *MemberService) Get(id string) (domain.Member, error) {
	m, err := s.Members.ByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Member{}, domain.NotFoundf("member %s not found", id)
	}
	return m, err
}

func (s *MemberService) List(search string) ([]domain.Member, error) {
	return s.Members.List(search)
}

// Delete refuses while the member has active loans.
func (s *MemberService) Delete(id string) (domain.Member, error) {
	m, err := s.Get(id)
	if err != nil {
		return domain.Member{}, err
	}
	active, err := s.Loans.ActiveCountForMember(id)
	if err != nil {
		return domain.Member{}, err
	}
	if active > 0 {
		return domain.Member{}, domain.Conflictf("member %s has active loans and cannot be deleted", m.Name)
	}
	if err := s.Members.Delete(id); err != nil {
		return domain.Member{}, err
	}
	return m, nil
}
