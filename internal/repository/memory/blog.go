package memory

import (
	"context"
	"sort"

	"github.com/baharkarakas/librarium/internal/models"
	"github.com/baharkarakas/librarium/internal/query"
	"github.com/baharkarakas/librarium/internal/repository"
)

// Posts ------------------------------------------------------------------------

type posts struct{ *Store }

var _ repository.Posts = posts{}

func (s *Store) postLocked(row postRow) models.Post {
	p := models.Post{
		ID:            row.ID,
		Title:         row.Title,
		Content:       row.Content,
		AuthorID:      row.AuthorID,
		PublishedDate: row.PublishedDate,
		Tags:          []models.Tag{},
	}
	for tid := range s.postTags[row.ID] {
		p.Tags = append(p.Tags, s.tags[tid])
	}
	sort.Slice(p.Tags, func(i, j int) bool { return p.Tags[i].Name < p.Tags[j].Name })
	return p
}

// tagIDLocked is get-or-create by name.
func (s *Store) tagIDLocked(name string) int64 {
	if id, ok := s.tagByName[name]; ok {
		return id
	}
	id := s.nextIDLocked("tags")
	s.tags[id] = models.Tag{ID: id, Name: name}
	s.tagByName[name] = id
	return id
}

func (s *Store) replaceTagsLocked(postID int64, tags []models.Tag) {
	links := set{}
	for _, t := range tags {
		links[s.tagIDLocked(t.Name)] = struct{}{}
	}
	s.postTags[postID] = links
}

func (s *Store) deletePostLocked(id int64) {
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
	delete(s.postTags, id)
	delete(s.posts, id)
}

func (r posts) Create(_ context.Context, p models.Post) (models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[p.AuthorID]; !ok {
		return models.Post{}, repository.ErrInvalidReference
	}
	row := postRow{
		ID:            r.nextIDLocked("posts"),
		Title:         p.Title,
		Content:       p.Content,
		AuthorID:      p.AuthorID,
		PublishedDate: p.PublishedDate,
	}
	if row.PublishedDate.IsZero() {
		row.PublishedDate = r.now()
	}
	r.posts[row.ID] = row
	r.replaceTagsLocked(row.ID, p.Tags)
	return r.postLocked(row), nil
}

func (r posts) GetByID(_ context.Context, id int64) (models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.posts[id]
	if !ok {
		return models.Post{}, repository.ErrNotFound
	}
	return r.postLocked(row), nil
}

func (r posts) List(_ context.Context, q query.PostQuery) ([]models.Post, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := []models.Post{}
	for _, row := range r.posts {
		if p := r.postLocked(row); q.Match(p) {
			matched = append(matched, p)
		}
	}
	query.SortPosts(matched, q.Order)
	return query.Paginate(matched, q.Offset(), q.PageSize), len(matched), nil
}

func (r posts) Update(_ context.Context, p models.Post) (models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.posts[p.ID]
	if !ok {
		return models.Post{}, repository.ErrNotFound
	}
	row.Title = p.Title
	row.Content = p.Content
	r.posts[row.ID] = row
	r.replaceTagsLocked(row.ID, p.Tags)
	return r.postLocked(row), nil
}

func (r posts) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return repository.ErrNotFound
	}
	r.deletePostLocked(id)
	return nil
}

// Comments ---------------------------------------------------------------------

type comments struct{ *Store }

var _ repository.Comments = comments{}

func (r comments) Create(_ context.Context, c models.Comment) (models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[c.PostID]; !ok {
		return models.Comment{}, repository.ErrInvalidReference
	}
	if _, ok := r.users[c.AuthorID]; !ok {
		return models.Comment{}, repository.ErrInvalidReference
	}
	c.ID = r.nextIDLocked("comments")
	c.CreatedAt = r.now()
	c.UpdatedAt = c.CreatedAt
	r.comments[c.ID] = c
	return c, nil
}

func (r comments) GetByID(_ context.Context, id int64) (models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.comments[id]
	if !ok {
		return models.Comment{}, repository.ErrNotFound
	}
	return c, nil
}

// ListByPost returns the post's comments oldest first.
func (r comments) ListByPost(_ context.Context, postID int64) ([]models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Comment{}
	for _, id := range sortedKeys(r.comments) {
		if c := r.comments[id]; c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r comments) Update(_ context.Context, c models.Comment) (models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.comments[c.ID]
	if !ok {
		return models.Comment{}, repository.ErrNotFound
	}
	old.Content = c.Content
	old.UpdatedAt = r.now()
	r.comments[old.ID] = old
	return old, nil
}

func (r comments) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.comments, id)
	return nil
}

// Tags -------------------------------------------------------------------------

type tags struct{ *Store }

var _ repository.Tags = tags{}

func (r tags) List(_ context.Context) ([]models.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Tag, 0, len(r.tags))
	for _, t := range r.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r tags) GetByName(_ context.Context, name string) (models.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.tagByName[name]
	if !ok {
		return models.Tag{}, repository.ErrNotFound
	}
	return r.tags[id], nil
}
