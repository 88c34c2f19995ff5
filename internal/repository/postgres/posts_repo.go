package postgres

import (
	"context"
	"strings"

	"github.com/baharkarakas/librarium/internal/models"
	"github.com/baharkarakas/librarium/internal/query"
	"github.com/baharkarakas/librarium/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postsRepo struct{ pool *pgxpool.Pool }

var _ repository.Posts = (*postsRepo)(nil)

const postSelect = `SELECT p.id, p.title, p.content, p.author_id, p.published_date FROM posts p`

var postOrderColumns = map[string]struct {
	col  string
	text bool
}{
	"id":             {"p.id", false},
	"title":          {"p.title", true},
	"published_date": {"p.published_date", false},
}

func scanPost(row pgx.CollectableRow) (models.Post, error) {
	p := models.Post{Tags: []models.Tag{}}
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.PublishedDate)
	return p, err
}

// attachTags loads the tags of every post in one query, ordered by name.
func attachTags(ctx context.Context, q querier, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	idx := make(map[int64]int, len(posts))
	ids := make([]int64, 0, len(posts))
	for i, p := range posts {
		idx[p.ID] = i
		ids = append(ids, p.ID)
	}
	rows, err := q.Query(ctx,
		`SELECT pt.post_id, t.id, t.name
		   FROM post_tags pt
		   JOIN tags t ON t.id = pt.tag_id
		  WHERE pt.post_id = ANY($1)
		  ORDER BY t.name COLLATE "C"`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var postID int64
		var t models.Tag
		if err := rows.Scan(&postID, &t.ID, &t.Name); err != nil {
			return err
		}
		i := idx[postID]
		posts[i].Tags = append(posts[i].Tags, t)
	}
	return rows.Err()
}

// replaceTags swaps the post's tag links for names, creating missing tags.
func replaceTags(ctx context.Context, tx pgx.Tx, postID int64, tags []models.Tag) error {
	if _, err := tx.Exec(ctx, `DELETE FROM post_tags WHERE post_id=$1`, postID); err != nil {
		return err
	}
	for _, t := range tags {
		var tagID int64
		err := tx.QueryRow(ctx,
			`INSERT INTO tags(name) VALUES($1)
			 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			 RETURNING id`, t.Name,
		).Scan(&tagID)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO post_tags(post_id, tag_id) VALUES($1,$2) ON CONFLICT DO NOTHING`,
			postID, tagID); err != nil {
			return err
		}
	}
	return nil
}

func (r *postsRepo) Create(ctx context.Context, p models.Post) (models.Post, error) {
	err := WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO posts(title, content, author_id, published_date)
			 VALUES($1,$2,$3, COALESCE($4, now())) RETURNING id`,
			p.Title, p.Content, p.AuthorID, nullTime(p),
		).Scan(&p.ID)
		if err != nil {
			return err
		}
		return replaceTags(ctx, tx, p.ID, p.Tags)
	})
	if err != nil {
		return models.Post{}, mapErr(err)
	}
	return r.GetByID(ctx, p.ID)
}

func nullTime(p models.Post) any {
	if p.PublishedDate.IsZero() {
		return nil
	}
	return p.PublishedDate
}

func (r *postsRepo) GetByID(ctx context.Context, id int64) (models.Post, error) {
	rows, err := r.pool.Query(ctx, postSelect+` WHERE p.id=$1`, id)
	if err != nil {
		return models.Post{}, err
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanPost)
	if err != nil {
		return models.Post{}, mapErr(err)
	}
	out := []models.Post{p}
	if err := attachTags(ctx, r.pool, out); err != nil {
		return models.Post{}, err
	}
	return out[0], nil
}

const tagExists = `EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.post_id = p.id AND `

func (r *postsRepo) List(ctx context.Context, q query.PostQuery) ([]models.Post, int, error) {
	var w where
	if q.AuthorID != nil {
		w.add("p.author_id = " + w.arg(*q.AuthorID))
	}
	if q.Tag != "" {
		w.add(tagExists + "t.name = " + w.arg(q.Tag) + ")")
	}
	for _, term := range query.Terms(q.Search) {
		a := w.arg(contains(term))
		w.add("(p.title ILIKE " + a + " OR p.content ILIKE " + a + " OR " + tagExists + "t.name ILIKE " + a + "))")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM posts p`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	oc, ok := postOrderColumns[q.Order.Field]
	if !ok {
		oc = postOrderColumns["published_date"]
	}
	var sb strings.Builder
	sb.WriteString(postSelect)
	sb.WriteString(w.sql())
	sb.WriteString(orderBy(oc.col, oc.text, q.Order.Desc, "p.id"))
	sb.WriteString(" LIMIT " + w.arg(q.PageSize) + " OFFSET " + w.arg(q.Offset()))

	rows, err := r.pool.Query(ctx, sb.String(), w.args...)
	if err != nil {
		return nil, 0, err
	}
	out, err := pgx.CollectRows(rows, scanPost)
	if err != nil {
		return nil, 0, err
	}
	if out == nil {
		out = []models.Post{}
	}
	if err := attachTags(ctx, r.pool, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update rewrites title and content and replaces the tag set, atomically.
func (r *postsRepo) Update(ctx context.Context, p models.Post) (models.Post, error) {
	err := WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := expectOne(tx.Exec(ctx,
			`UPDATE posts SET title=$2, content=$3 WHERE id=$1`, p.ID, p.Title, p.Content)); err != nil {
			return err
		}
		return replaceTags(ctx, tx, p.ID, p.Tags)
	})
	if err != nil {
		return models.Post{}, mapErr(err)
	}
	return r.GetByID(ctx, p.ID)
}

func (r *postsRepo) Delete(ctx context.Context, id int64) error {
	return WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE post_id=$1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM post_tags WHERE post_id=$1`, id); err != nil {
			return err
		}
		return expectOne(tx.Exec(ctx, `DELETE FROM posts WHERE id=$1`, id))
	})
}

type commentsRepo struct{ pool *pgxpool.Pool }

var _ repository.Comments = (*commentsRepo)(nil)

const commentSelect = `SELECT id, post_id, author_id, content, created_at, updated_at FROM comments`

func scanComment(row pgx.CollectableRow) (models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *commentsRepo) Create(ctx context.Context, c models.Comment) (models.Comment, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO comments(post_id, author_id, content) VALUES($1,$2,$3)
		 RETURNING id, created_at, updated_at`,
		c.PostID, c.AuthorID, c.Content,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return models.Comment{}, mapErr(err)
	}
	return c, nil
}

func (r *commentsRepo) GetByID(ctx context.Context, id int64) (models.Comment, error) {
	rows, err := r.pool.Query(ctx, commentSelect+` WHERE id=$1`, id)
	if err != nil {
		return models.Comment{}, err
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanComment)
	return c, mapErr(err)
}

func (r *commentsRepo) ListByPost(ctx context.Context, postID int64) ([]models.Comment, error) {
	rows, err := r.pool.Query(ctx, commentSelect+` WHERE post_id=$1 ORDER BY id`, postID)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, scanComment)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Comment{}
	}
	return out, nil
}

func (r *commentsRepo) Update(ctx context.Context, c models.Comment) (models.Comment, error) {
	err := r.pool.QueryRow(ctx,
		`UPDATE comments SET content=$2, updated_at=now() WHERE id=$1
		 RETURNING id, post_id, author_id, content, created_at, updated_at`,
		c.ID, c.Content,
	).Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return models.Comment{}, mapErr(err)
	}
	return c, nil
}

func (r *commentsRepo) Delete(ctx context.Context, id int64) error {
	return expectOne(r.pool.Exec(ctx, `DELETE FROM comments WHERE id=$1`, id))
}

type tagsRepo struct{ pool *pgxpool.Pool }

var _ repository.Tags = (*tagsRepo)(nil)

func scanTag(row pgx.CollectableRow) (models.Tag, error) {
	var t models.Tag
	err := row.Scan(&t.ID, &t.Name)
	return t, err
}

func (r *tagsRepo) List(ctx context.Context) ([]models.Tag, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM tags ORDER BY name COLLATE "C"`)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, scanTag)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Tag{}
	}
	return out, nil
}

func (r *tagsRepo) GetByName(ctx context.Context, name string) (models.Tag, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM tags WHERE name=$1`, name)
	if err != nil {
		return models.Tag{}, err
	}
	t, err := pgx.CollectExactlyOneRow(rows, scanTag)
	return t, mapErr(err)
}
