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

// PostInput carries a post payload. Tags accept "a, b" or ["a", "b"];
// when Tags is nil on update the stored tags are kept.
type PostInput struct {
	Title   *string         `json:"title"`
	Content *string         `json:"content"`
	Tags    *models.TagList `json:"tags"`
}

type PostPage struct {
	Count    int           `json:"count"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Results  []models.Post `json:"results"`
}

type PostService struct {
	r        repo.Posts
	comments repo.Comments
	rec      recorder
	now      func() time.Time
}

// List returns one page. Pages past the last one are a 404, page 1 never is.
func (s *PostService) List(ctx context.Context, q query.PostQuery) (PostPage, error) {
	items, total, err := s.r.List(ctx, q)
	if err != nil {
		return PostPage{}, err
	}
	if q.Page > 1 && q.Offset() >= total {
		return PostPage{}, errs.NotFound("page")
	}
	return PostPage{Count: total, Page: q.Page, PageSize: q.PageSize, Results: items}, nil
}

// Get returns the post with its comments, oldest first.
func (s *PostService) Get(ctx context.Context, id int64) (models.Post, error) {
	p, err := s.r.GetByID(ctx, id)
	if err != nil {
		return models.Post{}, notFound(err, "post")
	}
	if p.Comments, err = s.comments.ListByPost(ctx, id); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

func (s *PostService) Create(ctx context.Context, p access.Principal, in PostInput) (models.Post, error) {
	if err := access.RequireAuthenticated(p); err != nil {
		return models.Post{}, err
	}
	post := models.Post{AuthorID: p.UserID, PublishedDate: s.now().UTC()}
	if in.Tags == nil {
		in.Tags = &models.TagList{}
	}
	post, err := applyPost(post, in)
	if err != nil {
		return models.Post{}, err
	}
	out, err := s.r.Create(ctx, post)
	if err != nil {
		return models.Post{}, err
	}
	s.rec.record(ctx, p, "post", out.ID, models.AuditCreated, map[string]any{"tags": out.TagNames()})
	return out, nil
}

// Update is owner-only. Supplied tags fully replace the stored set.
func (s *PostService) Update(ctx context.Context, p access.Principal, id int64, in PostInput) (models.Post, error) {
	if err := access.RequireAuthenticated(p); err != nil {
		return models.Post{}, err
	}
	cur, err := s.r.GetByID(ctx, id)
	if err != nil {
		return models.Post{}, notFound(err, "post")
	}
	if err := access.RequireOwner(p, cur.AuthorID); err != nil {
		return models.Post{}, err
	}
	post, err := applyPost(cur, in)
	if err != nil {
		return models.Post{}, err
	}
	out, err := s.r.Update(ctx, post)
	if err != nil {
		return models.Post{}, notFound(err, "post")
	}
	s.rec.record(ctx, p, "post", out.ID, models.AuditUpdated, map[string]any{"tags": out.TagNames()})
	return out, nil
}

// Delete is owner-only and removes the post's comments with it.
func (s *PostService) Delete(ctx context.Context, p access.Principal, id int64) error {
	if err := access.RequireAuthenticated(p); err != nil {
		return err
	}
	cur, err := s.r.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "post")
	}
	if err := access.RequireOwner(p, cur.AuthorID); err != nil {
		return err
	}
	if err := s.r.Delete(ctx, id); err != nil {
		return notFound(err, "post")
	}
	s.rec.record(ctx, p, "post", id, models.AuditDeleted, nil)
	return nil
}

func applyPost(p models.Post, in PostInput) (models.Post, error) {
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	fe := p.Validate()
	if in.Tags != nil {
		names, tagErrs := models.NormalizeTags(*in.Tags)
		fe = append(fe, tagErrs...)
		p.Tags = make([]models.Tag, 0, len(names))
		for _, n := range names {
			p.Tags = append(p.Tags, models.Tag{Name: n})
		}
	}
	if len(fe) > 0 {
		return models.Post{}, errs.Invalid(fe)
	}
	return p, nil
}

type CommentInput struct {
	Content string `json:"content"`
}

type CommentService struct {
	r     repo.Comments
	posts repo.Posts
	rec   recorder
}

// Create binds the comment to the post and to the caller.
func (s *CommentService) Create(ctx context.Context, p access.Principal, postID int64, in CommentInput) (models.Comment, error) {
	if err := access.RequireAuthenticated(p); err != nil {
		return models.Comment{}, err
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return models.Comment{}, notFound(err, "post")
	}
	content, fe := models.NormalizeComment(in.Content)
	if fe != nil {
		return models.Comment{}, errs.Invalid(validate.Errs{*fe})
	}
	out, err := s.r.Create(ctx, models.Comment{PostID: postID, AuthorID: p.UserID, Content: content})
	if errors.Is(err, repo.ErrInvalidReference) {
		return models.Comment{}, errs.NotFound("post")
	}
	if err != nil {
		return models.Comment{}, err
	}
	s.rec.record(ctx, p, "comment", out.ID, models.AuditCreated, map[string]any{"post": postID})
	return out, nil
}

func (s *CommentService) Update(ctx context.Context, p access.Principal, id int64, in CommentInput) (models.Comment, error) {
	if err := access.RequireAuthenticated(p); err != nil {
		return models.Comment{}, err
	}
	cur, err := s.r.GetByID(ctx, id)
	if err != nil {
		return models.Comment{}, notFound(err, "comment")
	}
	if err := access.RequireOwner(p, cur.AuthorID); err != nil {
		return models.Comment{}, err
	}
	content, fe := models.NormalizeComment(in.Content)
	if fe != nil {
		return models.Comment{}, errs.Invalid(validate.Errs{*fe})
	}
	cur.Content = content
	out, err := s.r.Update(ctx, cur)
	if err != nil {
		return models.Comment{}, notFound(err, "comment")
	}
	s.rec.record(ctx, p, "comment", out.ID, models.AuditUpdated, nil)
	return out, nil
}

func (s *CommentService) Delete(ctx context.Context, p access.Principal, id int64) error {
	if err := access.RequireAuthenticated(p); err != nil {
		return err
	}
	cur, err := s.r.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "comment")
	}
	if err := access.RequireOwner(p, cur.AuthorID); err != nil {
		return err
	}
	if err := s.r.Delete(ctx, id); err != nil {
		return notFound(err, "comment")
	}
	s.rec.record(ctx, p, "comment", id, models.AuditDeleted, nil)
	return nil
}

type TagService struct {
	r     repo.Tags
	posts *PostService
}

func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	return s.r.List(ctx)
}

// Posts lists posts carrying the tag; the name is matched case-insensitively.
func (s *TagService) Posts(ctx context.Context, name string, q query.PostQuery) (PostPage, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, err := s.r.GetByName(ctx, name); err != nil {
		return PostPage{}, notFound(err, "tag")
	}
	q.Tag = name
	return s.posts.List(ctx, q)
}
