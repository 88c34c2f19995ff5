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

type booksRepo struct{ pool *pgxpool.Pool }

var _ repository.Books = (*booksRepo)(nil)

const bookSelect = `
SELECT b.id, b.title, b.publication_year, b.author_id, a.name
  FROM books b
  JOIN authors a ON a.id = b.author_id`

var bookOrderColumns = map[string]struct {
	col  string
	text bool
}{
	"title":            {"b.title", true},
	"publication_year": {"b.publication_year", false},
	"author__name":     {"a.name", true},
}

func scanBook(row pgx.CollectableRow) (models.Book, error) {
	var b models.Book
	err := row.Scan(&b.ID, &b.Title, &b.PublicationYear, &b.AuthorID, &b.AuthorName)
	return b, err
}

func queryBooks(ctx context.Context, q querier, sql string, args ...any) ([]models.Book, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, scanBook)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Book{}
	}
	return out, nil
}

func listBooksByAuthor(ctx context.Context, q querier, authorID int64) ([]models.Book, error) {
	return queryBooks(ctx, q, bookSelect+` WHERE b.author_id=$1 ORDER BY b.id`, authorID)
}

func (r *booksRepo) get(ctx context.Context, q querier, id int64) (models.Book, error) {
	rows, err := q.Query(ctx, bookSelect+` WHERE b.id=$1`, id)
	if err != nil {
		return models.Book{}, err
	}
	b, err := pgx.CollectExactlyOneRow(rows, scanBook)
	return b, mapErr(err)
}

func (r *booksRepo) Create(ctx context.Context, b models.Book) (models.Book, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO books(title, publication_year, author_id) VALUES($1,$2,$3) RETURNING id`,
		b.Title, b.PublicationYear, b.AuthorID,
	).Scan(&id)
	if err != nil {
		return models.Book{}, mapErr(err)
	}
	return r.get(ctx, r.pool, id)
}

func (r *booksRepo) GetByID(ctx context.Context, id int64) (models.Book, error) {
	return r.get(ctx, r.pool, id)
}

func (r *booksRepo) List(ctx context.Context, q query.BookQuery) ([]models.Book, error) {
	var w where
	if q.Title != "" {
		w.add("b.title ILIKE " + w.arg(contains(q.Title)))
	}
	if q.AuthorID != nil {
		w.add("b.author_id = " + w.arg(*q.AuthorID))
	}
	if q.PublicationYear != nil {
		w.add("b.publication_year = " + w.arg(*q.PublicationYear))
	}
	for _, term := range query.Terms(q.Search) {
		p := w.arg(contains(term))
		w.add("(b.title ILIKE " + p + " OR a.name ILIKE " + p + ")")
	}
	oc, ok := bookOrderColumns[q.Order.Field]
	if !ok {
		oc = bookOrderColumns["title"]
	}
	var sb strings.Builder
	sb.WriteString(bookSelect)
	sb.WriteString(w.sql())
	sb.WriteString(orderBy(oc.col, oc.text, q.Order.Desc, "b.id"))
	return queryBooks(ctx, r.pool, sb.String(), w.args...)
}

func (r *booksRepo) ListByAuthor(ctx context.Context, authorID int64) ([]models.Book, error) {
	return listBooksByAuthor(ctx, r.pool, authorID)
}

func (r *booksRepo) Update(ctx context.Context, b models.Book) (models.Book, error) {
	err := expectOne(r.pool.Exec(ctx,
		`UPDATE books SET title=$2, publication_year=$3, author_id=$4 WHERE id=$1`,
		b.ID, b.Title, b.PublicationYear, b.AuthorID,
	))
	if err != nil {
		return models.Book{}, err
	}
	return r.get(ctx, r.pool, b.ID)
}

func (r *booksRepo) Delete(ctx context.Context, id int64) error {
	return WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM library_books WHERE book_id=$1`, id); err != nil {
			return err
		}
		return expectOne(tx.Exec(ctx, `DELETE FROM books WHERE id=$1`, id))
	})
}
