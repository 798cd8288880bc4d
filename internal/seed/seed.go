package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "library/internal/errors"
	"library/internal/model"
	"library/internal/repository"
)

//go:embed data/sample.json
var sampleData []byte

const fakeMemberPassword = "member123"

// Options controls one seed run.
type Options struct {
	// File replaces the embedded sample data when set.
	File string
	// Fake adds that many generated members and books on top of the sample data.
	Fake int
}

// Result counts what a run inserted. Rows that already existed are counted as skipped.
type Result struct {
	AccountsCreated int
	BooksCreated    int
	LoansCreated    int
	Skipped         int
}

// Data is the on-disk seed format.
type Data struct {
	Members []MemberData `json:"members"`
	Books   []BookData   `json:"books"`
	Loans   []LoanData   `json:"loans"`
}

// MemberData describes a member account to create.
type MemberData struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Approved bool   `json:"approved"`
}

// BookData describes a catalogue entry to create.
type BookData struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	ISBN          string `json:"isbn"`
	PublishedYear int    `json:"published_year"`
	Copies        int    `json:"copies"`
}

// LoanData lends the book with ISBN to the member with Email, DaysAgo days in the past.
type LoanData struct {
	Email   string `json:"email"`
	ISBN    string `json:"isbn"`
	DaysAgo int    `json:"days_ago"`
}

// Seeder loads sample members, books and loans. Every insert is keyed by a
// unique column (email, ISBN) so running it twice creates nothing new.
type Seeder struct {
	accounts repository.AccountRepository
	books    repository.BookRepository
	loans    repository.LoanRepository
	faker    *gofakeit.Faker
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// New creates a seeder over the given database.
func New(db *gorm.DB, logger *zap.SugaredLogger) *Seeder {
	return &Seeder{
		accounts: repository.NewAccountRepository(db),
		books:    repository.NewBookRepository(db),
		loans:    repository.NewLoanRepository(db),
		faker:    gofakeit.New(0),
		logger:   logger,
		now:      time.Now,
	}
}

// Run seeds the database.
func (s *Seeder) Run(ctx context.Context, opts Options) (Result, error) {
	data, err := Load(opts.File)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", apperrors.ErrSeedFailed, err)
	}
	if opts.Fake > 0 {
		s.addFakes(data, opts.Fake)
	}

	var res Result
	if err := s.seedMembers(ctx, data.Members, &res); err != nil {
		return res, fmt.Errorf("%w: %v", apperrors.ErrSeedFailed, err)
	}
	if err := s.seedBooks(ctx, data.Books, &res); err != nil {
		return res, fmt.Errorf("%w: %v", apperrors.ErrSeedFailed, err)
	}
	if err := s.seedLoans(ctx, data.Loans, &res); err != nil {
		return res, fmt.Errorf("%w: %v", apperrors.ErrSeedFailed, err)
	}

	s.logger.Infow("seed completed",
		"accounts_created", res.AccountsCreated,
		"books_created", res.BooksCreated,
		"loans_created", res.LoansCreated,
		"skipped", res.Skipped)
	return res, nil
}

// Load reads seed data from path, or the embedded sample when path is empty.
func Load(path string) (*Data, error) {
	raw := sampleData
	if path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return &data, nil
}

func (s *Seeder) addFakes(data *Data, n int) {
	for i := 0; i < n; i++ {
		data.Members = append(data.Members, MemberData{
			Name:     s.faker.Name(),
			Email:    s.faker.Email(),
			Password: fakeMemberPassword,
			Approved: s.faker.Bool(),
		})
		data.Books = append(data.Books, BookData{
			Title:         s.faker.BookTitle(),
			Author:        s.faker.BookAuthor(),
			ISBN:          s.faker.Numerify("978##########"),
			PublishedYear: s.faker.Number(1900, s.now().Year()),
			Copies:        s.faker.Number(1, 5),
		})
	}
}

func (s *Seeder) seedMembers(ctx context.Context, members []MemberData, res *Result) error {
	for _, item := range members {
		if item.Email == "" {
			s.logger.Warnw("skipping member without email", "name", item.Name)
			res.Skipped++
			continue
		}

		account := &model.Account{
			Name:     item.Name,
			Email:    item.Email,
			Role:     model.RoleMember,
			Approved: item.Approved,
		}
		if err := account.SetPassword(item.Password); err != nil {
			return err
		}

		_, created, err := s.accounts.FindByEmailOrCreate(ctx, account)
		if err != nil {
			return fmt.Errorf("member %s: %w", item.Email, err)
		}
		if created {
			res.AccountsCreated++
		} else {
			res.Skipped++
		}
	}
	return nil
}

func (s *Seeder) seedBooks(ctx context.Context, books []BookData, res *Result) error {
	for _, item := range books {
		if item.ISBN == "" || item.Title == "" {
			s.logger.Warnw("skipping incomplete book", "title", item.Title, "isbn", item.ISBN)
			res.Skipped++
			continue
		}

		copies := item.Copies
		if copies < 1 {
			copies = 1
		}
		book := &model.Book{
			Title:           item.Title,
			Author:          item.Author,
			ISBN:            item.ISBN,
			PublishedYear:   item.PublishedYear,
			TotalCopies:     copies,
			AvailableCopies: copies,
		}

		_, created, err := s.books.FindByISBNOrCreate(ctx, book)
		if err != nil {
			return fmt.Errorf("book %s: %w", item.ISBN, err)
		}
		if created {
			res.BooksCreated++
		} else {
			res.Skipped++
		}
	}
	return nil
}

func (s *Seeder) seedLoans(ctx context.Context, loans []LoanData, res *Result) error {
	for _, item := range loans {
		account, err := s.accounts.FindByEmail(ctx, item.Email)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warnw("skipping loan for unknown member", "email", item.Email)
			res.Skipped++
			continue
		}
		if err != nil {
			return fmt.Errorf("loan member %s: %w", item.Email, err)
		}

		book, err := s.books.FindByISBN(ctx, item.ISBN)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warnw("skipping loan for unknown book", "isbn", item.ISBN)
			res.Skipped++
			continue
		}
		if err != nil {
			return fmt.Errorf("loan book %s: %w", item.ISBN, err)
		}

		open, err := s.loans.HasOpenLoan(ctx, account.ID, book.ID)
		if err != nil {
			return fmt.Errorf("loan %s/%s: %w", item.Email, item.ISBN, err)
		}
		if open {
			res.Skipped++
			continue
		}

		taken, err := s.books.TakeCopy(ctx, book.ID)
		if err != nil {
			return fmt.Errorf("loan book %s: %w", item.ISBN, err)
		}
		if !taken {
			s.logger.Warnw("skipping loan, no copies left", "isbn", item.ISBN)
			res.Skipped++
			continue
		}

		loan := &model.Loan{
			AccountID:  account.ID,
			BookID:     book.ID,
			BorrowedAt: s.now().AddDate(0, 0, -item.DaysAgo),
		}
		if err := s.loans.Create(ctx, loan); err != nil {
			return fmt.Errorf("loan %s/%s: %w", item.Email, item.ISBN, err)
		}
		res.LoansCreated++
	}
	return nil
}
