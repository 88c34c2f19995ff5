package postgres

import (
	"context"

	"github.com/baharkarakas/librarium/internal/models"
	"github.com/baharkarakas/librarium/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type authorsRepo struct{ pool *pgxpool.Pool }

var _ repository.Authors = (*authorsRepo)(nil)

func (r *authorsRepo) Create(ctx context.Context, a models.Author) (models.Author, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO authors(name) VALUES($1) RETURNING id`, a.Name,
	).Scan(&a.ID)
	if err != nil {
		return models.Author{}, mapErr(err)
	}
	a.Books = []models.Book{}
	return a, nil
}

func (r *authorsRepo) withBooks(ctx context.Context, a models.Author) (models.Author, error) {
	books, err := listBooksByAuthor(ctx, r.pool, a.ID)
	if err != nil {
		return models.Author{}, err
	}
	a.Books = books
	return a, nil
}

func (r *authorsRepo) GetByID(ctx context.Context, id int64) (models.Author, error) {
	var a models.Author
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM authors WHERE id=$1`, id).Scan(&a.ID, &a.Name)
	if err != nil {
		return models.Author{}, mapErr(err)
	}
	return r.withBooks(ctx, a)
}

func (r *authorsRepo) GetByName(ctx context.Context, name string) (models.Author, error) {
	var a models.Author
	err := r.pool.QueryRow(ctx,
		`SELECT id, name FROM authors WHERE name=$1 ORDER BY id LIMIT 1`, name,
	).Scan(&a.ID, &a.Name)
	if err != nil {
		return models.Author{}, mapErr(err)
	}
	return r.withBooks(ctx, a)
}

func (r *authorsRepo) List(ctx context.Context) ([]models.Author, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM authors ORDER BY id`)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Author, error) {
		a := models.Author{Books: []models.Book{}}
		err := row.Scan(&a.ID, &a.Name)
		return a, err
	})
	if err != nil {
		return nil, err
	}

	byAuthor := make(map[int64]int, len(out))
	for i, a := range out {
		byAuthor[a.ID] = i
	}
	books, err := queryBooks(ctx, r.pool, bookSelect+` ORDER BY b.id`)
	if err != nil {
		return nil, err
	}
	for _, b := range books {
		if i, ok := byAuthor[b.AuthorID]; ok {
			out[i].Books = append(out[i].Books, b)
		}
	}
	return out, nil
}

// Delete removes the author's books and their library links in the same
// transaction as the author row.
func (r *authorsRepo) Delete(ctx context.Context, id int64) error {
	return WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM library_books WHERE book_id IN (SELECT id FROM books WHERE author_id=$1)`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM books WHERE author_id=$1`, id); err != nil {
			return err
		}
		return expectOne(tx.Exec(ctx, `DELETE FROM authors WHERE id=$1`, id))
	})
}
