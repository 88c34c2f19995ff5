package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/baharkarakas/librarium/internal/access"
	"github.com/baharkarakas/librarium/internal/auth"
	"github.com/baharkarakas/librarium/internal/errs"
	"github.com/baharkarakas/librarium/internal/models"
	"github.com/baharkarakas/librarium/internal/query"
	repo "github.com/baharkarakas/librarium/internal/repository"
	"github.com/baharkarakas/librarium/internal/repository/memory"
	"github.com/baharkarakas/librarium/internal/storage/photos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *Services
	store *memory.Store
	repos repo.Repositories
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.New(memory.WithClock(func() time.Time { return fixedNow }))
	repos := store.Repositories()
	svc := New(Deps{
		Repos:         repos,
		Tokens:        auth.NewTokenManager("a-secret", "r-secret", "librarium", time.Minute, time.Hour),
		Photos:        photos.NewFS(t.TempDir()),
		PhotoMaxBytes: 1 << 10,
		Now:           func() time.Time { return fixedNow },
	})
	return fixture{svc: svc, store: store, repos: repos}
}

// user stores a user with role and grants and returns its principal.
func (f fixture) user(t *testing.T, name string, role models.Role, perms ...string) access.Principal {
	t.Helper()
	ctx := context.Background()
	u, err := f.repos.Users.Create(ctx, models.User{Username: name, Email: name + "@example.com"}, role)
	require.NoError(t, err)
	for _, p := range perms {
		require.NoError(t, f.repos.Users.Grant(ctx, u.ID, p))
	}
	p, err := f.svc.Users.Principal(ctx, u.ID)
	require.NoError(t, err)
	return p
}

func (f fixture) author(t *testing.T, name string) models.Author {
	t.Helper()
	a, err := f.repos.Authors.Create(context.Background(), models.Author{Name: name})
	require.NoError(t, err)
	return a
}

func ptr[T any](v T) *T { return &v }

func fieldMsgs(t *testing.T, err error) map[string][]string {
	t.Helper()
	fe, ok := errs.FieldErrors(err)
	require.True(t, ok, "expected a validation error, got %v", err)
	return fe.ByField()
}

func TestBookCreateRequiresAuthentication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.author(t, "George Orwell")

	_, err := f.svc.Books.Create(ctx, access.Anonymous(), BookInput{Title: ptr("1984"), PublicationYear: ptr(1949), AuthorID: ptr(a.ID)})
	assert.True(t, errs.IsForbidden(err))

	books, err := f.svc.Books.List(ctx, query.BookQuery{Order: query.Ordering{Field: "title"}})
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestBookCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.user(t, "reader", models.RoleMember)
	a := f.author(t, "George Orwell")

	_, err := f.svc.Books.Create(ctx, p, BookInput{Title: ptr("Later"), PublicationYear: ptr(2027), AuthorID: ptr(a.ID)})
	assert.Equal(t, []string{models.MsgFutureYear}, fieldMsgs(t, err)["publication_year"])

	_, err = f.svc.Books.Create(ctx, p, BookInput{Title: ptr("Ghost"), PublicationYear: ptr(2000), AuthorID: ptr(int64(99))})
	assert.Contains(t, fieldMsgs(t, err)["author"][0], "does not exist")

	fields := fieldMsgs(t, mustErr(f.svc.Books.Create(ctx, p, BookInput{})))
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "publication_year")
	assert.Contains(t, fields, "author")

	b, err := f.svc.Books.Create(ctx, p, BookInput{Title: ptr(" 1984 "), PublicationYear: ptr(1949), AuthorID: ptr(a.ID)})
	require.NoError(t, err)
	assert.Equal(t, "1984", b.Title)

	trail := f.store.AuditTrail()
	require.Len(t, trail, 1)
	assert.Equal(t, "book", trail[0].EntityType)
	assert.Equal(t, models.AuditCreated, trail[0].Action)
	require.NotNil(t, trail[0].ActorID)
	assert.Equal(t, p.UserID, *trail[0].ActorID)
}

func mustErr[T any](_ T, err error) error { return err }

func TestBookUpdateLooksUpBeforeValidating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.user(t, "reader", models.RoleMember)
	a := f.author(t, "George Orwell")

	_, err := f.svc.Books.Update(ctx, p, 404, BookInput{PublicationYear: ptr(3000)}, true)
	assert.True(t, errs.IsNotFound(err))

	b, err := f.svc.Books.Create(ctx, p, BookInput{Title: ptr("1984"), PublicationYear: ptr(1949), AuthorID: ptr(a.ID)})
	require.NoError(t, err)

	b, err = f.svc.Books.Update(ctx, p, b.ID, BookInput{Title: ptr("Nineteen Eighty-Four")}, true)
	require.NoError(t, err)
	assert.Equal(t, 1949, b.PublicationYear)

	_, err = f.svc.Books.Update(ctx, p, b.ID, BookInput{Title: ptr("Only title")}, false)
	fields := fieldMsgs(t, err)
	assert.Contains(t, fields, "publication_year")
	assert.Contains(t, fields, "author")

	_, err = f.svc.Books.Update(ctx, p, b.ID, BookInput{PublicationYear: ptr(fixedNow.Year() + 1)}, true)
	assert.Equal(t, []string{models.MsgFutureYear}, fieldMsgs(t, err)["publication_year"])
}

func TestAuthorDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.user(t, "reader", models.RoleMember)

	a, err := f.svc.Authors.Create(ctx, p, AuthorInput{Name: "J.K. Rowling"})
	require.NoError(t, err)
	_, err = f.svc.Books.Create(ctx, p, BookInput{Title: ptr("Harry Potter"), PublicationYear: ptr(1997), AuthorID: ptr(a.ID)})
	require.NoError(t, err)

	require.NoError(t, f.svc.Authors.Delete(ctx, p, a.ID))
	books, err := f.svc.Books.List(ctx, query.BookQuery{})
	require.NoError(t, err)
	assert.Empty(t, books)
	assert.True(t, errs.IsNotFound(f.svc.Authors.Delete(ctx, p, a.ID)))
}

func TestCatalogRoleGates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", models.RoleAdmin)
	librarian := f.user(t, "lib", models.RoleLibrarian)
	member := f.user(t, "member", models.RoleMember)

	_, err := f.svc.Catalog.CreateLibrary(ctx, member, LibraryInput{Name: "Central"})
	assert.True(t, errs.IsForbidden(err))

	lib, err := f.svc.Catalog.CreateLibrary(ctx, librarian, LibraryInput{Name: "Central"})
	require.NoError(t, err)

	_, err = f.svc.Catalog.AssignLibrarian(ctx, librarian, lib.ID, LibrarianInput{Name: "Ann"})
	assert.True(t, errs.IsForbidden(err))
	_, err = f.svc.Catalog.AssignLibrarian(ctx, admin, lib.ID, LibrarianInput{Name: "Ann"})
	require.NoError(t, err)
	_, err = f.svc.Catalog.AssignLibrarian(ctx, admin, lib.ID, LibrarianInput{Name: "Bob"})
	assert.True(t, errs.IsConflict(err))
	assert.ErrorIs(t, err, repo.ErrConflict)

	d, err := f.svc.Catalog.Library(ctx, lib.ID)
	require.NoError(t, err)
	require.NotNil(t, d.Librarian)
	assert.Equal(t, "Ann", d.Librarian.Name)

	assert.True(t, errs.IsForbidden(f.svc.Catalog.DeleteLibrary(ctx, librarian, lib.ID)))
	require.NoError(t, f.svc.Catalog.DeleteLibrary(ctx, admin, lib.ID))
	_, err = f.svc.Catalog.LibrarianFor(ctx, lib.ID)
	assert.True(t, errs.IsNotFound(err))
}

func TestRemoveLibrarian(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", models.RoleAdmin)
	librarian := f.user(t, "lib", models.RoleLibrarian)
	lib, err := f.svc.Catalog.CreateLibrary(ctx, admin, LibraryInput{Name: "North"})
	require.NoError(t, err)

	assert.True(t, errs.IsNotFound(f.svc.Catalog.RemoveLibrarian(ctx, admin, lib.ID)))
	ann, err := f.svc.Catalog.AssignLibrarian(ctx, admin, lib.ID, LibrarianInput{Name: "Ann"})
	require.NoError(t, err)

	got, err := f.svc.Catalog.Librarian(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)

	assert.True(t, errs.IsForbidden(f.svc.Catalog.RemoveLibrarian(ctx, librarian, lib.ID)))
	require.NoError(t, f.svc.Catalog.RemoveLibrarian(ctx, admin, lib.ID))
	_, err = f.svc.Catalog.Librarian(ctx, ann.ID)
	assert.True(t, errs.IsNotFound(err))

	// the slot is free again
	_, err = f.svc.Catalog.AssignLibrarian(ctx, admin, lib.ID, LibrarianInput{Name: "Bob"})
	assert.NoError(t, err)
}

func TestCatalogRoleViews(t *testing.T) {
	f := newFixture(t)
	member := f.user(t, "member", models.RoleMember)

	v, err := f.svc.Catalog.View(member, models.RoleMember)
	require.NoError(t, err)
	assert.Equal(t, "member", v.View)

	_, err = f.svc.Catalog.View(member, models.RoleAdmin)
	assert.True(t, errs.IsForbidden(err))
	_, err = f.svc.Catalog.View(access.Anonymous(), models.RoleMember)
	assert.True(t, errs.IsForbidden(err))
}

func TestCatalogBooksNeedNamedPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.author(t, "Jane Austen")
	plain := f.user(t, "plain", models.RoleMember)
	editor := f.user(t, "editor", models.RoleMember, access.PermAddBook, access.PermChangeBook)

	in := BookInput{Title: ptr("Emma"), PublicationYear: ptr(1815), AuthorID: ptr(a.ID)}
	_, err := f.svc.Catalog.AddBook(ctx, plain, in)
	assert.True(t, errs.IsForbidden(err))

	b, err := f.svc.Catalog.AddBook(ctx, editor, in)
	require.NoError(t, err)
	b, err = f.svc.Catalog.EditBook(ctx, editor, b.ID, BookInput{Title: ptr("Emma (revised)")})
	require.NoError(t, err)
	assert.Equal(t, "Emma (revised)", b.Title)

	assert.True(t, errs.IsForbidden(f.svc.Catalog.DeleteBook(ctx, editor, b.ID)))

	byAuthor, err := f.svc.Catalog.BooksByAuthor(ctx, "Jane Austen")
	require.NoError(t, err)
	assert.Len(t, byAuthor, 1)
	_, err = f.svc.Catalog.BooksByAuthor(ctx, "Nobody")
	assert.True(t, errs.IsNotFound(err))
}

func TestLibraryBookLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", models.RoleAdmin)
	a := f.author(t, "Frank Herbert")
	b, err := f.repos.Books.Create(ctx, models.Book{Title: "Dune", PublicationYear: 1965, AuthorID: a.ID})
	require.NoError(t, err)
	lib, err := f.svc.Catalog.CreateLibrary(ctx, admin, LibraryInput{Name: "West"})
	require.NoError(t, err)

	_, err = f.svc.Catalog.AddBookToLibrary(ctx, admin, lib.ID, 999)
	assert.Contains(t, fieldMsgs(t, err), "book")

	lib, err = f.svc.Catalog.AddBookToLibrary(ctx, admin, lib.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, lib.BookIDs)

	require.NoError(t, f.svc.Catalog.RemoveBookFromLibrary(ctx, admin, lib.ID, b.ID))
	assert.True(t, errs.IsNotFound(f.svc.Catalog.RemoveBookFromLibrary(ctx, admin, lib.ID, b.ID)))
	_, err = f.svc.Books.Get(ctx, b.ID)
	assert.NoError(t, err)
}

func TestShelfPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	viewer := f.user(t, "viewer", models.RoleMember, access.PermShelfView)
	keeper := f.user(t, "keeper", models.RoleMember, access.PermShelfCreate, access.PermShelfEdit, access.PermShelfDelete)

	in := ShelfInput{Title: ptr("Dune"), Author: ptr("Frank Herbert"), PublicationYear: ptr(1965)}
	_, err := f.svc.Shelf.Create(ctx, viewer, in)
	assert.True(t, errs.IsForbidden(err))

	b, err := f.svc.Shelf.Create(ctx, keeper, in)
	require.NoError(t, err)

	_, err = f.svc.Shelf.List(ctx, keeper, query.ShelfQuery{})
	assert.True(t, errs.IsForbidden(err))
	got, err := f.svc.Shelf.List(ctx, viewer, query.ShelfQuery{})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = f.svc.Shelf.Update(ctx, keeper, b.ID, ShelfInput{PublicationYear: ptr(fixedNow.Year() + 1)})
	assert.Equal(t, []string{models.MsgFutureYear}, fieldMsgs(t, err)["publication_year"])

	require.NoError(t, f.svc.Shelf.Delete(ctx, keeper, b.ID))
	assert.True(t, errs.IsNotFound(f.svc.Shelf.Delete(ctx, keeper, b.ID)))
}

func TestPostOwnershipAndTags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", models.RoleMember)
	other := f.user(t, "other", models.RoleMember)

	tags := models.TagList{"python", " Python", "WEB-dev"}
	post, err := f.svc.Posts.Create(ctx, owner, PostInput{Title: ptr("Hello world"), Content: ptr("Lorem ipsum dolor"), Tags: &tags})
	require.NoError(t, err)
	assert.Equal(t, []string{"python", "web-dev"}, post.TagNames())
	assert.Equal(t, owner.UserID, post.AuthorID)

	_, err = f.svc.Posts.Update(ctx, other, post.ID, PostInput{Title: ptr("Hijacked title")})
	assert.True(t, errs.IsForbidden(err))
	assert.True(t, errs.IsForbidden(f.svc.Posts.Delete(ctx, other, post.ID)))

	post, err = f.svc.Posts.Update(ctx, owner, post.ID, PostInput{Title: ptr("Hello again")})
	require.NoError(t, err)
	assert.Equal(t, []string{"python", "web-dev"}, post.TagNames(), "tags kept when not supplied")

	bad := models.TagList{"web development"}
	_, err = f.svc.Posts.Update(ctx, owner, post.ID, PostInput{Tags: &bad})
	assert.Contains(t, fieldMsgs(t, err)["tags"][0], "Invalid tag 'web development'")

	_, err = f.svc.Posts.Create(ctx, owner, PostInput{Title: ptr("Hey"), Content: ptr("short")})
	fields := fieldMsgs(t, err)
	assert.Equal(t, []string{models.MsgTitleTooShort}, fields["title"])
	assert.Equal(t, []string{models.MsgContentTooShort}, fields["content"])

	_, err = f.svc.Posts.Create(ctx, access.Anonymous(), PostInput{Title: ptr("Hello world"), Content: ptr("Lorem ipsum dolor")})
	assert.True(t, errs.IsForbidden(err))
}

func TestPostListPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", models.RoleMember)
	for i := 0; i < 6; i++ {
		_, err := f.svc.Posts.Create(ctx, owner, PostInput{Title: ptr("Post title"), Content: ptr("Lorem ipsum dolor")})
		require.NoError(t, err)
	}
	q := query.PostQuery{Page: 1, PageSize: query.DefaultPageSize, Order: query.Ordering{Field: "published_date", Desc: true}}
	page, err := f.svc.Posts.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 6, page.Count)
	assert.Len(t, page.Results, 5)

	q.Page = 3
	_, err = f.svc.Posts.List(ctx, q)
	assert.True(t, errs.IsNotFound(err))

	_, err = f.svc.Tags.Posts(ctx, "missing", q)
	assert.True(t, errs.IsNotFound(err))
}

func TestComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", models.RoleMember)
	other := f.user(t, "other", models.RoleMember)
	post, err := f.svc.Posts.Create(ctx, owner, PostInput{Title: ptr("Hello world"), Content: ptr("Lorem ipsum dolor")})
	require.NoError(t, err)

	c, err := f.svc.Comments.Create(ctx, other, post.ID, CommentInput{Content: "   great read   "})
	require.NoError(t, err)
	assert.Equal(t, "great read", c.Content)
	assert.Equal(t, other.UserID, c.AuthorID)

	_, err = f.svc.Comments.Create(ctx, other, post.ID, CommentInput{Content: " hi "})
	assert.Equal(t, []string{models.MsgCommentTooShort}, fieldMsgs(t, err)["content"])

	_, err = f.svc.Comments.Create(ctx, other, 999, CommentInput{Content: "hello"})
	assert.True(t, errs.IsNotFound(err))

	_, err = f.svc.Comments.Update(ctx, owner, c.ID, CommentInput{Content: "edited by owner of post"})
	assert.True(t, errs.IsForbidden(err))

	detail, err := f.svc.Posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Comments, 1)

	require.NoError(t, f.svc.Posts.Delete(ctx, owner, post.ID))
	_, err = f.repos.Comments.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Users.Register(ctx, RegisterInput{Username: "reader", Email: "r@example.com", Password: "longenough", Password2: "different1"})
	assert.Equal(t, []string{MsgPasswordMismatch}, fieldMsgs(t, err)["password2"])

	u, err := f.svc.Users.Register(ctx, RegisterInput{
		Username: "reader", Email: "r@example.com", Password: "longenough", Password2: "longenough",
		DateOfBirth: ptr("1990-05-01"),
	})
	require.NoError(t, err)
	require.NotNil(t, u.Profile)
	assert.Equal(t, models.RoleMember, u.Profile.Role)

	_, err = f.svc.Users.Register(ctx, RegisterInput{Username: "reader", Email: "x@example.com", Password: "longenough", Password2: "longenough"})
	assert.Equal(t, []string{MsgUsernameTaken}, fieldMsgs(t, err)["username"])

	_, err = f.svc.Users.Login(ctx, "reader", "wrong-password")
	assert.True(t, errs.IsUnauthorized(err))

	pair, err := f.svc.Users.Login(ctx, "reader", "longenough")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	again, err := f.svc.Users.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, again.RefreshToken)

	_, err = f.svc.Users.Refresh(ctx, pair.AccessToken)
	assert.True(t, errs.IsUnauthorized(err))
}

func TestPasswordOverBcryptLimitIsValidationError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	long := strings.Repeat("p", 80)

	_, err := f.svc.Users.Register(ctx, RegisterInput{Username: "reader", Email: "r@example.com", Password: long, Password2: long})
	require.True(t, errs.IsValidation(err), "got %v", err)
	assert.Contains(t, fieldMsgs(t, err), "password")

	_, err = f.svc.Users.CreateSuperuser(ctx, SuperuserInput{Username: "root", Email: "root@example.com", Password: long})
	require.True(t, errs.IsValidation(err), "got %v", err)
	assert.Contains(t, fieldMsgs(t, err), "password")

	exact := strings.Repeat("p", 72)
	_, err = f.svc.Users.Register(ctx, RegisterInput{Username: "reader", Email: "r@example.com", Password: exact, Password2: exact})
	assert.NoError(t, err)
}

func TestCreateSuperuserFlags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Users.CreateSuperuser(ctx, SuperuserInput{Username: "root", Email: "root@example.com", Password: "longenough", IsStaff: ptr(false)})
	assert.Equal(t, []string{MsgSuperuserStaff}, fieldMsgs(t, err)["is_staff"])

	_, err = f.svc.Users.CreateSuperuser(ctx, SuperuserInput{Username: "root", Email: "root@example.com", Password: "longenough", IsSuperuser: ptr(false)})
	assert.Equal(t, []string{MsgSuperuserFlag}, fieldMsgs(t, err)["is_superuser"])

	u, err := f.svc.Users.CreateSuperuser(ctx, SuperuserInput{Username: "root", Email: "root@example.com", Password: "longenough"})
	require.NoError(t, err)
	assert.True(t, u.IsStaff)
	assert.True(t, u.IsSuperuser)
	assert.Equal(t, models.RoleAdmin, u.Profile.Role)
}

func TestGrantAndRoleNeedSuperuser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.user(t, "member", models.RoleMember)

	root, err := f.svc.Users.CreateSuperuser(ctx, SuperuserInput{Username: "root", Email: "root@example.com", Password: "longenough"})
	require.NoError(t, err)
	super, err := f.svc.Users.Principal(ctx, root.ID)
	require.NoError(t, err)

	_, err = f.svc.Users.Grant(ctx, member, member.UserID, access.PermAddBook)
	assert.True(t, errs.IsForbidden(err))

	_, err = f.svc.Users.Grant(ctx, super, member.UserID, "catalog.can_fly")
	assert.Contains(t, fieldMsgs(t, err), "perm")

	perms, err := f.svc.Users.Grant(ctx, super, member.UserID, access.PermAddBook)
	require.NoError(t, err)
	assert.Equal(t, []string{access.PermAddBook}, perms)

	perms, err = f.svc.Users.Revoke(ctx, super, member.UserID, access.PermAddBook)
	require.NoError(t, err)
	assert.Empty(t, perms)

	u, err := f.svc.Users.SetRole(ctx, super, member.UserID, "librarian")
	require.NoError(t, err)
	assert.Equal(t, models.RoleLibrarian, u.Profile.Role)

	_, err = f.svc.Users.SetRole(ctx, super, member.UserID, "janitor")
	assert.Contains(t, fieldMsgs(t, err), "role")

	perms, err = f.svc.Users.GrantByUsername(ctx, "member", access.PermShelfView)
	require.NoError(t, err)
	assert.Equal(t, []string{access.PermShelfView}, perms)
}

func TestDeleteUserNeedsSuperuserAndCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.user(t, "member", models.RoleMember, access.PermShelfView)
	other := f.user(t, "other", models.RoleMember)
	root, err := f.svc.Users.CreateSuperuser(ctx, SuperuserInput{Username: "root", Email: "root@example.com", Password: "longenough"})
	require.NoError(t, err)
	super, err := f.svc.Users.Principal(ctx, root.ID)
	require.NoError(t, err)

	post, err := f.svc.Posts.Create(ctx, member, PostInput{Title: ptr("Going away"), Content: ptr("Last words here")})
	require.NoError(t, err)

	assert.True(t, errs.IsForbidden(f.svc.Users.Delete(ctx, other, member.UserID)))
	assert.True(t, errs.IsNotFound(f.svc.Users.Delete(ctx, super, 999)))

	require.NoError(t, f.svc.Users.Delete(ctx, super, member.UserID))
	_, err = f.svc.Users.Principal(ctx, member.UserID)
	assert.Error(t, err)
	_, err = f.svc.Posts.Get(ctx, post.ID)
	assert.True(t, errs.IsNotFound(err))

	assert.True(t, errs.IsNotFound(f.svc.Users.DeleteByUsername(ctx, "member")))
	require.NoError(t, f.svc.Users.DeleteByUsername(ctx, "other"))
}

func TestUploadPhoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.user(t, "member", models.RoleMember)

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	u, err := f.svc.Users.UploadPhoto(ctx, p, png)
	require.NoError(t, err)
	require.NotNil(t, u.ProfilePhoto)
	assert.Contains(t, *u.ProfilePhoto, "profiles/")

	_, err = f.svc.Users.UploadPhoto(ctx, p, []byte("plain text, not an image"))
	assert.Contains(t, fieldMsgs(t, err), "photo")

	_, err = f.svc.Users.UploadPhoto(ctx, p, make([]byte, 2<<10))
	assert.Contains(t, fieldMsgs(t, err), "photo")

	_, err = f.svc.Users.UploadPhoto(ctx, access.Anonymous(), png)
	assert.True(t, errs.IsForbidden(err))
}
