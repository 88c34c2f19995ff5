package services

import (
	"context"
	"errors"
	"strings"

	"github.com/baharkarakas/librarium/internal/access"
	"github.com/baharkarakas/librarium/internal/errs"
	"github.com/baharkarakas/librarium/internal/models"
	"github.com/baharkarakas/librarium/internal/query"
	repo "github.com/baharkarakas/librarium/internal/repository"
)

// LibraryDetail is a library with its books and, when assigned, its librarian.
type LibraryDetail struct {
	models.Library
	Books     []models.Book     `json:"book_details"`
	Librarian *models.Librarian `json:"librarian"`
}

type LibraryInput struct {
	Name    string  `json:"name"`
	BookIDs []int64 `json:"books"`
}

type LibrarianInput struct {
	Name string `json:"name"`
}

// RoleView is the payload of the per-role landing views.
type RoleView struct {
	View     string      `json:"view"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

type CatalogService struct {
	books      *BookService
	authors    repo.Authors
	libs       repo.Libraries
	librarians repo.Librarians
	rec        recorder
}

func (s *CatalogService) ListBooks(ctx context.Context) ([]models.Book, error) {
	return s.books.List(ctx, query.BookQuery{Order: query.Ordering{Field: "title"}})
}

// BooksByAuthor lists the books of the author with exactly that name.
func (s *CatalogService) BooksByAuthor(ctx context.Context, name string) ([]models.Book, error) {
	a, err := s.authors.GetByName(ctx, name)
	if err != nil {
		return nil, notFound(err, "author")
	}
	return s.books.r.ListByAuthor(ctx, a.ID)
}

func (s *CatalogService) ListLibraries(ctx context.Context) ([]models.Library, error) {
	return s.libs.List(ctx)
}

func (s *CatalogService) Library(ctx context.Context, id int64) (LibraryDetail, error) {
	l, err := s.libs.GetByID(ctx, id)
	if err != nil {
		return LibraryDetail{}, notFound(err, "library")
	}
	d := LibraryDetail{Library: l}
	if d.Books, err = s.libs.Books(ctx, id); err != nil {
		return LibraryDetail{}, notFound(err, "library")
	}
	lib, err := s.librarians.GetByLibrary(ctx, id)
	switch {
	case err == nil:
		d.Librarian = &lib
	case !errors.Is(err, repo.ErrNotFound):
		return LibraryDetail{}, err
	}
	return d, nil
}

// BooksInLibrary lists the books associated with the library.
func (s *CatalogService) BooksInLibrary(ctx context.Context, id int64) ([]models.Book, error) {
	b, err := s.libs.Books(ctx, id)
	return b, notFound(err, "library")
}

func (s *CatalogService) CreateLibrary(ctx context.Context, p access.Principal, in LibraryInput) (models.Library, error) {
	if err := access.RequireRole(p, models.RoleAdmin, models.RoleLibrarian); err != nil {
		return models.Library{}, err
	}
	l := models.Library{Name: strings.TrimSpace(in.Name), BookIDs: in.BookIDs}
	if fe := l.Validate(); len(fe) > 0 {
		return models.Library{}, errs.Invalid(fe)
	}
	out, err := s.libs.Create(ctx, l)
	if errors.Is(err, repo.ErrInvalidReference) {
		return models.Library{}, errs.InvalidField("books", "one or more books do not exist")
	}
	if err != nil {
		return models.Library{}, err
	}
	s.rec.record(ctx, p, "library", out.ID, models.AuditCreated, map[string]any{"name": out.Name})
	return out, nil
}

// DeleteLibrary removes the library and its librarian; its books are kept.
func (s *CatalogService) DeleteLibrary(ctx context.Context, p access.Principal, id int64) error {
	if err := access.RequireRole(p, models.RoleAdmin); err != nil {
		return err
	}
	if err := s.libs.Delete(ctx, id); err != nil {
		return notFound(err, "library")
	}
	s.rec.record(ctx, p, "library", id, models.AuditDeleted, nil)
	return nil
}

func (s *CatalogService) AddBookToLibrary(ctx context.Context, p access.Principal, libraryID, bookID int64) (models.Library, error) {
	if err := access.RequireRole(p, models.RoleAdmin, models.RoleLibrarian); err != nil {
		return models.Library{}, err
	}
	if _, err := s.libs.GetByID(ctx, libraryID); err != nil {
		return models.Library{}, notFound(err, "library")
	}
	if err := s.libs.AddBook(ctx, libraryID, bookID); err != nil {
		if errors.Is(err, repo.ErrInvalidReference) {
			return models.Library{}, errs.InvalidField("book", doesNotExist(bookID))
		}
		return models.Library{}, err
	}
	s.rec.record(ctx, p, "library", libraryID, models.AuditUpdated, map[string]any{"added_book": bookID})
	l, err := s.libs.GetByID(ctx, libraryID)
	return l, notFound(err, "library")
}

func (s *CatalogService) RemoveBookFromLibrary(ctx context.Context, p access.Principal, libraryID, bookID int64) error {
	if err := access.RequireRole(p, models.RoleAdmin, models.RoleLibrarian); err != nil {
		return err
	}
	if _, err := s.libs.GetByID(ctx, libraryID); err != nil {
		return notFound(err, "library")
	}
	if err := s.libs.RemoveBook(ctx, libraryID, bookID); err != nil {
		return notFound(err, "library book")
	}
	s.rec.record(ctx, p, "library", libraryID, models.AuditUpdated, map[string]any{"removed_book": bookID})
	return nil
}

// AssignLibrarian fails with a conflict when the library already has one.
func (s *CatalogService) AssignLibrarian(ctx context.Context, p access.Principal, libraryID int64, in LibrarianInput) (models.Librarian, error) {
	if err := access.RequireRole(p, models.RoleAdmin); err != nil {
		return models.Librarian{}, err
	}
	if _, err := s.libs.GetByID(ctx, libraryID); err != nil {
		return models.Librarian{}, notFound(err, "library")
	}
	l := models.Librarian{Name: strings.TrimSpace(in.Name), LibraryID: libraryID}
	if fe := l.Validate(); len(fe) > 0 {
		return models.Librarian{}, errs.Invalid(fe)
	}
	out, err := s.librarians.Create(ctx, l)
	switch {
	case errors.Is(err, repo.ErrConflict):
		return models.Librarian{}, errs.Conflict("library already has a librarian", err)
	case errors.Is(err, repo.ErrInvalidReference):
		return models.Librarian{}, errs.NotFound("library")
	case err != nil:
		return models.Librarian{}, err
	}
	s.rec.record(ctx, p, "librarian", out.ID, models.AuditCreated, map[string]any{"library": libraryID})
	return out, nil
}

// Librarian returns one librarian by id.
func (s *CatalogService) Librarian(ctx context.Context, id int64) (models.Librarian, error) {
	l, err := s.librarians.GetByID(ctx, id)
	return l, notFound(err, "librarian")
}

// RemoveLibrarian unassigns the library's librarian. Admin only.
func (s *CatalogService) RemoveLibrarian(ctx context.Context, p access.Principal, libraryID int64) error {
	if err := access.RequireRole(p, models.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.libs.GetByID(ctx, libraryID); err != nil {
		return notFound(err, "library")
	}
	l, err := s.librarians.GetByLibrary(ctx, libraryID)
	if err != nil {
		return notFound(err, "librarian")
	}
	if err := s.librarians.Delete(ctx, l.ID); err != nil {
		return notFound(err, "librarian")
	}
	s.rec.record(ctx, p, "librarian", l.ID, models.AuditDeleted, map[string]any{"library": libraryID})
	return nil
}

func (s *CatalogService) LibrarianFor(ctx context.Context, libraryID int64) (models.Librarian, error) {
	if _, err := s.libs.GetByID(ctx, libraryID); err != nil {
		return models.Librarian{}, notFound(err, "library")
	}
	l, err := s.librarians.GetByLibrary(ctx, libraryID)
	return l, notFound(err, "librarian")
}

func (s *CatalogService) AddBook(ctx context.Context, p access.Principal, in BookInput) (models.Book, error) {
	return s.books.create(ctx, p, access.RequirePermission(p, access.PermAddBook), in)
}

func (s *CatalogService) EditBook(ctx context.Context, p access.Principal, id int64, in BookInput) (models.Book, error) {
	return s.books.update(ctx, p, access.RequirePermission(p, access.PermChangeBook), id, in, true)
}

func (s *CatalogService) DeleteBook(ctx context.Context, p access.Principal, id int64) error {
	return s.books.delete(ctx, p, access.RequirePermission(p, access.PermDeleteBook), id)
}

// View serves the landing view reserved for role.
func (s *CatalogService) View(p access.Principal, role models.Role) (RoleView, error) {
	if err := access.RequireRole(p, role); err != nil {
		return RoleView{}, err
	}
	return RoleView{View: strings.ToLower(string(role)), Username: p.Username, Role: role}, nil
}
