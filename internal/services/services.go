package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/baharkarakas/librarium/internal/access"
	"github.com/baharkarakas/librarium/internal/auth"
	"github.com/baharkarakas/librarium/internal/errs"
	"github.com/baharkarakas/librarium/internal/metrics"
	"github.com/baharkarakas/librarium/internal/models"
	repo "github.com/baharkarakas/librarium/internal/repository"
	"github.com/baharkarakas/librarium/internal/storage/photos"
)

// Services is every use case the HTTP layer and the CLI call into.
type Services struct {
	Books    *BookService
	Authors  *AuthorService
	Catalog  *CatalogService
	Shelf    *ShelfService
	Posts    *PostService
	Comments *CommentService
	Tags     *TagService
	Users    *UserService
}

type Deps struct {
	Repos         repo.Repositories
	Tokens        *auth.TokenManager
	Photos        photos.Store
	PhotoMaxBytes int64
	Now           func() time.Time // defaults to time.Now
}

func New(d Deps) *Services {
	if d.Now == nil {
		d.Now = time.Now
	}
	rec := recorder{log: d.Repos.AuditLogs}
	books := &BookService{r: d.Repos.Books, authors: d.Repos.Authors, rec: rec, now: d.Now}
	posts := &PostService{r: d.Repos.Posts, comments: d.Repos.Comments, rec: rec, now: d.Now}
	return &Services{
		Books:   books,
		Authors: &AuthorService{r: d.Repos.Authors, rec: rec},
		Catalog: &CatalogService{
			books: books, authors: d.Repos.Authors, libs: d.Repos.Libraries,
			librarians: d.Repos.Librarians, rec: rec,
		},
		Shelf:    &ShelfService{r: d.Repos.ShelfBooks, rec: rec, now: d.Now},
		Posts:    posts,
		Comments: &CommentService{r: d.Repos.Comments, posts: d.Repos.Posts, rec: rec},
		Tags:     &TagService{r: d.Repos.Tags, posts: posts},
		Users: &UserService{
			r: d.Repos.Users, tm: d.Tokens, photos: d.Photos,
			maxPhoto: d.PhotoMaxBytes, rec: rec, now: d.Now,
		},
	}
}

// recorder writes the audit trail and mutation counters after a successful write.
type recorder struct{ log repo.AuditLogs }

func (rc recorder) record(ctx context.Context, p access.Principal, entity string, id int64, action models.AuditAction, details map[string]any) {
	metrics.Mutation(entity, string(action))
	if rc.log == nil {
		return
	}
	eid := strconv.FormatInt(id, 10)
	l := models.AuditLog{EntityType: entity, EntityID: &eid, Action: action, Details: details}
	if p.Authenticated() {
		actor := p.UserID
		l.ActorID = &actor
	}
	// best effort: the write already happened
	if err := rc.log.Create(ctx, l); err != nil {
		slog.WarnContext(ctx, "audit log write failed", "entity", entity, "id", id, "err", err)
	}
}

// notFound maps the store's ErrNotFound to a 404 for entity and passes other errors through.
func notFound(err error, entity string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return errs.NotFound(entity)
	}
	return err
}

func doesNotExist(id int64) string {
	return `Invalid pk "` + strconv.FormatInt(id, 10) + `" - object does not exist.`
}
