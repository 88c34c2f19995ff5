package memory

import (
	"context"
	"testing"
	"time"

	"github.com/baharkarakas/librarium/internal/models"
	"github.com/baharkarakas/librarium/internal/query"
	"github.com/baharkarakas/librarium/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagsOf(p models.Post) []string { return p.TagNames() }

func TestAuthorDeleteCascadesBooksAndLinks(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()

	a, err := repos.Authors.Create(ctx, models.Author{Name: "George Orwell"})
	require.NoError(t, err)
	b, err := repos.Books.Create(ctx, models.Book{Title: "1984", PublicationYear: 1949, AuthorID: a.ID})
	require.NoError(t, err)
	assert.Equal(t, "George Orwell", b.AuthorName)

	lib, err := repos.Libraries.Create(ctx, models.Library{Name: "Central"})
	require.NoError(t, err)
	require.NoError(t, repos.Libraries.AddBook(ctx, lib.ID, b.ID))
	require.NoError(t, repos.Libraries.AddBook(ctx, lib.ID, b.ID))

	got, err := repos.Authors.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got.Books, 1)

	require.NoError(t, repos.Authors.Delete(ctx, a.ID))

	_, err = repos.Books.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	lib, err = repos.Libraries.GetByID(ctx, lib.ID)
	require.NoError(t, err)
	assert.Empty(t, lib.BookIDs)
}

func TestBookNeedsExistingAuthor(t *testing.T) {
	repos := NewRepositories()
	_, err := repos.Books.Create(context.Background(), models.Book{Title: "Orphan", AuthorID: 42})
	assert.ErrorIs(t, err, repository.ErrInvalidReference)
}

func TestLibraryDeleteKeepsBooksAndDropsLibrarian(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()

	a, _ := repos.Authors.Create(ctx, models.Author{Name: "Jane Austen"})
	b, _ := repos.Books.Create(ctx, models.Book{Title: "Emma", PublicationYear: 1815, AuthorID: a.ID})
	lib, err := repos.Libraries.Create(ctx, models.Library{Name: "North", BookIDs: []int64{b.ID}})
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, lib.BookIDs)

	l, err := repos.Librarians.Create(ctx, models.Librarian{Name: "Ann", LibraryID: lib.ID})
	require.NoError(t, err)
	_, err = repos.Librarians.Create(ctx, models.Librarian{Name: "Bob", LibraryID: lib.ID})
	assert.ErrorIs(t, err, repository.ErrConflict)

	require.NoError(t, repos.Libraries.Delete(ctx, lib.ID))
	_, err = repos.Librarians.GetByID(ctx, l.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repos.Books.GetByID(ctx, b.ID)
	assert.NoError(t, err)
}

func TestBookDeleteDetachesFromLibraries(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()

	a, _ := repos.Authors.Create(ctx, models.Author{Name: "Frank Herbert"})
	b, _ := repos.Books.Create(ctx, models.Book{Title: "Dune", PublicationYear: 1965, AuthorID: a.ID})
	lib, _ := repos.Libraries.Create(ctx, models.Library{Name: "South", BookIDs: []int64{b.ID}})

	require.NoError(t, repos.Books.Delete(ctx, b.ID))
	got, err := repos.Libraries.Books(ctx, lib.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.ErrorIs(t, repos.Libraries.RemoveBook(ctx, lib.ID, b.ID), repository.ErrNotFound)
}

func TestPostTagsAreReplacedAndShared(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()

	u, err := repos.Users.Create(ctx, models.User{Username: "writer", Email: "w@example.com"}, models.RoleMember)
	require.NoError(t, err)

	p, err := repos.Posts.Create(ctx, models.Post{
		Title: "First post", Content: "Lorem ipsum dolor", AuthorID: u.ID,
		Tags: []models.Tag{{Name: "python"}, {Name: "web-dev"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"python", "web-dev"}, tagsOf(p))

	p2, err := repos.Posts.Create(ctx, models.Post{
		Title: "Second post", Content: "Lorem ipsum dolor", AuthorID: u.ID,
		Tags: []models.Tag{{Name: "python"}},
	})
	require.NoError(t, err)
	assert.Equal(t, p.Tags[0].ID, p2.Tags[0].ID)

	p.Tags = []models.Tag{{Name: "go"}}
	p, err = repos.Posts.Update(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, tagsOf(p))

	all, err := repos.Tags.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPostListPaginatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	repos := NewRepositories(WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))
	u, _ := repos.Users.Create(ctx, models.User{Username: "writer", Email: "w@example.com"}, models.RoleMember)
	for i := 0; i < 7; i++ {
		_, err := repos.Posts.Create(ctx, models.Post{Title: "Post title", Content: "Lorem ipsum dolor", AuthorID: u.ID})
		require.NoError(t, err)
	}

	q := query.PostQuery{Page: 1, PageSize: query.DefaultPageSize, Order: query.Ordering{Field: "published_date", Desc: true}}
	page, total, err := repos.Posts.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, page, 5)
	assert.Equal(t, int64(7), page[0].ID)

	q.Page = 2
	page, _, err = repos.Posts.List(ctx, q)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestPostDeleteCascadesComments(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	u, _ := repos.Users.Create(ctx, models.User{Username: "writer", Email: "w@example.com"}, models.RoleMember)
	p, _ := repos.Posts.Create(ctx, models.Post{Title: "Post title", Content: "Lorem ipsum dolor", AuthorID: u.ID})
	c, err := repos.Comments.Create(ctx, models.Comment{PostID: p.ID, AuthorID: u.ID, Content: "nice"})
	require.NoError(t, err)

	require.NoError(t, repos.Posts.Delete(ctx, p.ID))
	_, err = repos.Comments.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserDeleteCascades(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	author, _ := repos.Users.Create(ctx, models.User{Username: "author", Email: "a@example.com"}, models.RoleMember)
	reader, _ := repos.Users.Create(ctx, models.User{Username: "reader", Email: "r@example.com"}, models.RoleMember)

	p, _ := repos.Posts.Create(ctx, models.Post{Title: "Post title", Content: "Lorem ipsum dolor", AuthorID: author.ID})
	onOwn, _ := repos.Comments.Create(ctx, models.Comment{PostID: p.ID, AuthorID: reader.ID, Content: "first"})
	other, _ := repos.Posts.Create(ctx, models.Post{Title: "Reader post", Content: "Lorem ipsum dolor", AuthorID: reader.ID})
	byAuthor, _ := repos.Comments.Create(ctx, models.Comment{PostID: other.ID, AuthorID: author.ID, Content: "reply"})
	require.NoError(t, repos.Users.Grant(ctx, author.ID, "catalog.can_add_book"))

	require.NoError(t, repos.Users.Delete(ctx, author.ID))

	_, err := repos.Posts.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repos.Comments.GetByID(ctx, onOwn.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repos.Comments.GetByID(ctx, byAuthor.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	perms, err := repos.Users.Permissions(ctx, author.ID)
	require.NoError(t, err)
	assert.Empty(t, perms)

	_, err = repos.Posts.GetByID(ctx, other.ID)
	assert.NoError(t, err)
}

func TestUsernameUniqueAndProfileCreated(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	u, err := repos.Users.Create(ctx, models.User{Username: "dup", Email: "d@example.com"}, models.RoleMember)
	require.NoError(t, err)
	require.NotNil(t, u.Profile)
	assert.Equal(t, models.RoleMember, u.Profile.Role)

	_, err = repos.Users.Create(ctx, models.User{Username: "dup", Email: "e@example.com"}, models.RoleMember)
	assert.ErrorIs(t, err, repository.ErrConflict)

	require.NoError(t, repos.Users.SetRole(ctx, u.ID, models.RoleLibrarian))
	u, err = repos.Users.GetByUsername(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, models.RoleLibrarian, u.Profile.Role)
}

func TestShelfListFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	for _, b := range []models.ShelfBook{
		{Title: "Dune", Author: "Frank Herbert", PublicationYear: 1965},
		{Title: "Emma", Author: "Jane Austen", PublicationYear: 1815},
		{Title: "Persuasion", Author: "Jane Austen", PublicationYear: 1817},
	} {
		_, err := repos.ShelfBooks.Create(ctx, b)
		require.NoError(t, err)
	}
	got, err := repos.ShelfBooks.List(ctx, query.ShelfQuery{Search: "austen", Order: query.Ordering{Field: "publication_year", Desc: true}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Persuasion", got[0].Title)
}
