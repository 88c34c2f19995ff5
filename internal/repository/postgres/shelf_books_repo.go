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

type shelfBooksRepo struct{ pool *pgxpool.Pool }

var _ repository.ShelfBooks = (*shelfBooksRepo)(nil)

const shelfSelect = `SELECT id, title, author, publication_year FROM shelf_books`

var shelfOrderColumns = map[string]struct {
	col  string
	text bool
}{
	"id":               {"id", false},
	"title":            {"title", true},
	"author":           {"author", true},
	"publication_year": {"publication_year", false},
}

func scanShelfBook(row pgx.CollectableRow) (models.ShelfBook, error) {
	var b models.ShelfBook
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.PublicationYear)
	return b, err
}

func (r *shelfBooksRepo) Create(ctx context.Context, b models.ShelfBook) (models.ShelfBook, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO shelf_books(title, author, publication_year) VALUES($1,$2,$3) RETURNING id`,
		b.Title, b.Author, b.PublicationYear,
	).Scan(&b.ID)
	if err != nil {
		return models.ShelfBook{}, mapErr(err)
	}
	return b, nil
}

func (r *shelfBooksRepo) GetByID(ctx context.Context, id int64) (models.ShelfBook, error) {
	rows, err := r.pool.Query(ctx, shelfSelect+` WHERE id=$1`, id)
	if err != nil {
		return models.ShelfBook{}, err
	}
	b, err := pgx.CollectExactlyOneRow(rows, scanShelfBook)
	return b, mapErr(err)
}

func (r *shelfBooksRepo) List(ctx context.Context, q query.ShelfQuery) ([]models.ShelfBook, error) {
	var w where
	if q.Q != "" {
		w.add("title ILIKE " + w.arg(contains(q.Q)))
	}
	if q.PublicationYear != nil {
		w.add("publication_year = " + w.arg(*q.PublicationYear))
	}
	for _, term := range query.Terms(q.Search) {
		a := w.arg(contains(term))
		w.add("(title ILIKE " + a + " OR author ILIKE " + a + ")")
	}
	oc, ok := shelfOrderColumns[q.Order.Field]
	if !ok {
		oc = shelfOrderColumns["title"]
	}
	var sb strings.Builder
	sb.WriteString(shelfSelect)
	sb.WriteString(w.sql())
	sb.WriteString(orderBy(oc.col, oc.text, q.Order.Desc, "id"))

	rows, err := r.pool.Query(ctx, sb.String(), w.args...)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, scanShelfBook)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.ShelfBook{}
	}
	return out, nil
}

func (r *shelfBooksRepo) Update(ctx context.Context, b models.ShelfBook) (models.ShelfBook, error) {
	err := expectOne(r.pool.Exec(ctx,
		`UPDATE shelf_books SET title=$2, author=$3, publication_year=$4 WHERE id=$1`,
		b.ID, b.Title, b.Author, b.PublicationYear))
	if err != nil {
		return models.ShelfBook{}, err
	}
	return b, nil
}

func (r *shelfBooksRepo) Delete(ctx context.Context, id int64) error {
	return expectOne(r.pool.Exec(ctx, `DELETE FROM shelf_books WHERE id=$1`, id))
}
