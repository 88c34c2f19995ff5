package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/baharkarakas/librarium/internal/access"
	"github.com/baharkarakas/librarium/internal/errs"
	"github.com/baharkarakas/librarium/internal/models"
	"github.com/baharkarakas/librarium/internal/query"
	repo "github.com/baharkarakas/librarium/internal/repository"
	"github.com/baharkarakas/librarium/internal/validate"
)

// BookInput is a create or update payload. Nil fields were not supplied.
type BookInput struct {
	Title           *string `json:"title"`
	PublicationYear *int    `json:"publication_year"`
	AuthorID        *int64  `json:"author"`
}

type BookService struct {
	r       repo.Books
	authors repo.Authors
	rec     recorder
	now     func() time.Time
}

func (s *BookService) List(ctx context.Context, q query.BookQuery) ([]models.Book, error) {
	return s.r.List(ctx, q)
}

func (s *BookService) Get(ctx context.Context, id int64) (models.Book, error) {
	b, err := s.r.GetByID(ctx, id)
	return b, notFound(err, "book")
}

func (s *BookService) Create(ctx context.Context, p access.Principal, in BookInput) (models.Book, error) {
	return s.create(ctx, p, access.RequireAuthenticated(p), in)
}

// Update applies in to the stored book. With partial set, omitted fields keep
// their stored value; otherwise every field is required.
func (s *BookService) Update(ctx context.Context, p access.Principal, id int64, in BookInput, partial bool) (models.Book, error) {
	return s.update(ctx, p, access.RequireAuthenticated(p), id, in, partial)
}

func (s *BookService) Delete(ctx context.Context, p access.Principal, id int64) error {
	return s.delete(ctx, p, access.RequireAuthenticated(p), id)
}

// create, update and delete take the caller's access decision so the
// catalog can gate the same operations on named permissions.
func (s *BookService) create(ctx context.Context, p access.Principal, denied error, in BookInput) (models.Book, error) {
	if denied != nil {
		return models.Book{}, denied
	}
	var fe validate.Errs
	fe.Add(validate.Present("publication_year", in.PublicationYear))
	b := merge(models.Book{}, in)
	if err := s.check(ctx, b, fe); err != nil {
		return models.Book{}, err
	}
	out, err := s.r.Create(ctx, b)
	if errors.Is(err, repo.ErrInvalidReference) {
		return models.Book{}, errs.InvalidField("author", doesNotExist(b.AuthorID))
	}
	if err != nil {
		return models.Book{}, err
	}
	s.rec.record(ctx, p, "book", out.ID, models.AuditCreated, map[string]any{"title": out.Title})
	return out, nil
}

func (s *BookService) update(ctx context.Context, p access.Principal, denied error, id int64, in BookInput, partial bool) (models.Book, error) {
	if denied != nil {
		return models.Book{}, denied
	}
	cur, err := s.Get(ctx, id)
	if err != nil {
		return models.Book{}, err
	}
	var fe validate.Errs
	if !partial {
		fe.Add(
			validate.Present("title", in.Title),
			validate.Present("publication_year", in.PublicationYear),
			validate.Present("author", in.AuthorID),
		)
	}
	b := merge(cur, in)
	if err := s.check(ctx, b, fe); err != nil {
		return models.Book{}, err
	}
	out, err := s.r.Update(ctx, b)
	if errors.Is(err, repo.ErrInvalidReference) {
		return models.Book{}, errs.InvalidField("author", doesNotExist(b.AuthorID))
	}
	if err != nil {
		return models.Book{}, notFound(err, "book")
	}
	s.rec.record(ctx, p, "book", out.ID, models.AuditUpdated, nil)
	return out, nil
}

func (s *BookService) delete(ctx context.Context, p access.Principal, denied error, id int64) error {
	if denied != nil {
		return denied
	}
	if err := s.r.Delete(ctx, id); err != nil {
		return notFound(err, "book")
	}
	s.rec.record(ctx, p, "book", id, models.AuditDeleted, nil)
	return nil
}

func merge(b models.Book, in BookInput) models.Book {
	if in.Title != nil {
		b.Title = strings.TrimSpace(*in.Title)
	}
	if in.PublicationYear != nil {
		b.PublicationYear = *in.PublicationYear
	}
	if in.AuthorID != nil {
		b.AuthorID = *in.AuthorID
	}
	return b
}

// check validates the merged record and resolves the author reference.
// Every failing field is reported together.
func (s *BookService) check(ctx context.Context, b models.Book, fe validate.Errs) error {
	for _, f := range b.Validate(s.now()) {
		if !fe.Has(f.Field) {
			fe = append(fe, f)
		}
	}
	if b.AuthorID > 0 {
		if _, err := s.authors.GetByID(ctx, b.AuthorID); errors.Is(err, repo.ErrNotFound) {
			fe.Addf("author", "%s", doesNotExist(b.AuthorID))
		} else if err != nil {
			return err
		}
	}
	if len(fe) > 0 {
		return errs.Invalid(fe)
	}
	return nil
}

// AuthorInput creates an author.
type AuthorInput struct {
	Name string `json:"name"`
}

type AuthorService struct {
	r   repo.Authors
	rec recorder
}

func (s *AuthorService) List(ctx context.Context) ([]models.Author, error) {
	return s.r.List(ctx)
}

func (s *AuthorService) Get(ctx context.Context, id int64) (models.Author, error) {
	a, err := s.r.GetByID(ctx, id)
	return a, notFound(err, "author")
}

func (s *AuthorService) Create(ctx context.Context, p access.Principal, in AuthorInput) (models.Author, error) {
	if err := access.RequireAuthenticated(p); err != nil {
		return models.Author{}, err
	}
	a := models.Author{Name: strings.TrimSpace(in.Name)}
	if fe := a.Validate(); len(fe) > 0 {
		return models.Author{}, errs.Invalid(fe)
	}
	out, err := s.r.Create(ctx, a)
	if err != nil {
		return models.Author{}, err
	}
	s.rec.record(ctx, p, "author", out.ID, models.AuditCreated, map[string]any{"name": out.Name})
	return out, nil
}

// Delete removes the author together with all of their books.
func (s *AuthorService) Delete(ctx context.Context, p access.Principal, id int64) error {
	if err := access.RequireAuthenticated(p); err != nil {
		return err
	}
	if err := s.r.Delete(ctx, id); err != nil {
		return notFound(err, "author")
	}
	s.rec.record(ctx, p, "author", id, models.AuditDeleted, nil)
	return nil
}
