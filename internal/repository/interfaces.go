package repository

import (
	"context"
	"errors"

	"github.com/baharkarakas/librarium/internal/models"
	"github.com/baharkarakas/librarium/internal/query"
)

// Store-level errors. Services translate them into errs.AppErr.
var (
	ErrNotFound         = errors.New("record not found")
	ErrConflict         = errors.New("unique constraint violated")
	ErrInvalidReference = errors.New("referenced record does not exist")
)

type Authors interface {
	Create(ctx context.Context, a models.Author) (models.Author, error)
	GetByID(ctx context.Context, id int64) (models.Author, error)
	GetByName(ctx context.Context, name string) (models.Author, error)
	List(ctx context.Context) ([]models.Author, error)
	// Delete removes the author, its books and their library links atomically.
	Delete(ctx context.Context, id int64) error
}

type Books interface {
	Create(ctx context.Context, b models.Book) (models.Book, error)
	GetByID(ctx context.Context, id int64) (models.Book, error)
	List(ctx context.Context, q query.BookQuery) ([]models.Book, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]models.Book, error)
	Update(ctx context.Context, b models.Book) (models.Book, error)
	// Delete removes the book and its library links.
	Delete(ctx context.Context, id int64) error
}

type Libraries interface {
	Create(ctx context.Context, l models.Library) (models.Library, error)
	GetByID(ctx context.Context, id int64) (models.Library, error)
	GetByName(ctx context.Context, name string) (models.Library, error)
	List(ctx context.Context) ([]models.Library, error)
	AddBook(ctx context.Context, libraryID, bookID int64) error
	RemoveBook(ctx context.Context, libraryID, bookID int64) error
	Books(ctx context.Context, libraryID int64) ([]models.Book, error)
	// Delete removes the library, its librarian and its book links. Books stay.
	Delete(ctx context.Context, id int64) error
}

type Librarians interface {
	// Create fails with ErrConflict when the library already has a librarian.
	Create(ctx context.Context, l models.Librarian) (models.Librarian, error)
	GetByID(ctx context.Context, id int64) (models.Librarian, error)
	GetByLibrary(ctx context.Context, libraryID int64) (models.Librarian, error)
	Delete(ctx context.Context, id int64) error
}

type Users interface {
	// Create stores the user together with a profile carrying role.
	Create(ctx context.Context, u models.User, role models.Role) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u models.User) (models.User, error)
	SetRole(ctx context.Context, userID int64, role models.Role) error
	Permissions(ctx context.Context, userID int64) ([]string, error)
	Grant(ctx context.Context, userID int64, perm string) error
	Revoke(ctx context.Context, userID int64, perm string) error
	// Delete removes the user with their comments, posts, grants and profile.
	Delete(ctx context.Context, id int64) error
}

type Posts interface {
	// Create stores p and links p.Tags by name, creating missing tags.
	Create(ctx context.Context, p models.Post) (models.Post, error)
	GetByID(ctx context.Context, id int64) (models.Post, error)
	// List returns one page of matching posts and the total match count.
	List(ctx context.Context, q query.PostQuery) ([]models.Post, int, error)
	// Update rewrites title and content and replaces the tag set with p.Tags.
	Update(ctx context.Context, p models.Post) (models.Post, error)
	// Delete removes the post, its comments and its tag links.
	Delete(ctx context.Context, id int64) error
}

type Comments interface {
	Create(ctx context.Context, c models.Comment) (models.Comment, error)
	GetByID(ctx context.Context, id int64) (models.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]models.Comment, error)
	Update(ctx context.Context, c models.Comment) (models.Comment, error)
	Delete(ctx context.Context, id int64) error
}

type Tags interface {
	List(ctx context.Context) ([]models.Tag, error)
	GetByName(ctx context.Context, name string) (models.Tag, error)
}

type ShelfBooks interface {
	Create(ctx context.Context, b models.ShelfBook) (models.ShelfBook, error)
	GetByID(ctx context.Context, id int64) (models.ShelfBook, error)
	List(ctx context.Context, q query.ShelfQuery) ([]models.ShelfBook, error)
	Update(ctx context.Context, b models.ShelfBook) (models.ShelfBook, error)
	Delete(ctx context.Context, id int64) error
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}

// Repositories bundles one store's implementations.
type Repositories struct {
	Authors    Authors
	Books      Books
	Libraries  Libraries
	Librarians Librarians
	Users      Users
	Posts      Posts
	Comments   Comments
	Tags       Tags
	ShelfBooks ShelfBooks
	AuditLogs  AuditLogs
}
