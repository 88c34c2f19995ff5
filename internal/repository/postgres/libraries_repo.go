package postgres

import (
	"context"
	"errors"

	"github.com/baharkarakas/librarium/internal/models"
	"github.com/baharkarakas/librarium/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type librariesRepo struct{ pool *pgxpool.Pool }

var _ repository.Libraries = (*librariesRepo)(nil)

const librarySelect = `
SELECT l.id, l.name,
       COALESCE(array_agg(lb.book_id ORDER BY lb.book_id) FILTER (WHERE lb.book_id IS NOT NULL), '{}')
  FROM libraries l
  LEFT JOIN library_books lb ON lb.library_id = l.id`

func scanLibrary(row pgx.CollectableRow) (models.Library, error) {
	var l models.Library
	err := row.Scan(&l.ID, &l.Name, &l.BookIDs)
	return l, err
}

func (r *librariesRepo) one(ctx context.Context, cond string, arg any) (models.Library, error) {
	rows, err := r.pool.Query(ctx, librarySelect+` WHERE `+cond+` GROUP BY l.id ORDER BY l.id LIMIT 1`, arg)
	if err != nil {
		return models.Library{}, err
	}
	l, err := pgx.CollectExactlyOneRow(rows, scanLibrary)
	return l, mapErr(err)
}

func (r *librariesRepo) Create(ctx context.Context, l models.Library) (models.Library, error) {
	err := WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `INSERT INTO libraries(name) VALUES($1) RETURNING id`, l.Name).Scan(&l.ID); err != nil {
			return err
		}
		if len(l.BookIDs) == 0 {
			return nil
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO library_books(library_id, book_id)
			 SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING`,
			l.ID, l.BookIDs)
		return err
	})
	if err != nil {
		return models.Library{}, mapErr(err)
	}
	return r.GetByID(ctx, l.ID)
}

func (r *librariesRepo) GetByID(ctx context.Context, id int64) (models.Library, error) {
	return r.one(ctx, "l.id = $1", id)
}

func (r *librariesRepo) GetByName(ctx context.Context, name string) (models.Library, error) {
	return r.one(ctx, "l.name = $1", name)
}

func (r *librariesRepo) List(ctx context.Context) ([]models.Library, error) {
	rows, err := r.pool.Query(ctx, librarySelect+` GROUP BY l.id ORDER BY l.id`)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, scanLibrary)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Library{}
	}
	return out, nil
}

func (r *librariesRepo) AddBook(ctx context.Context, libraryID, bookID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO library_books(library_id, book_id) VALUES($1,$2) ON CONFLICT DO NOTHING`,
		libraryID, bookID)
	return mapErr(err)
}

func (r *librariesRepo) RemoveBook(ctx context.Context, libraryID, bookID int64) error {
	return expectOne(r.pool.Exec(ctx,
		`DELETE FROM library_books WHERE library_id=$1 AND book_id=$2`, libraryID, bookID))
}

func (r *librariesRepo) Books(ctx context.Context, libraryID int64) ([]models.Book, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM libraries WHERE id=$1)`, libraryID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, repository.ErrNotFound
	}
	return queryBooks(ctx, r.pool,
		bookSelect+` JOIN library_books lb ON lb.book_id = b.id WHERE lb.library_id=$1 ORDER BY b.id`, libraryID)
}

// Delete drops the library with its librarian and book links. Books stay.
func (r *librariesRepo) Delete(ctx context.Context, id int64) error {
	return WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM librarians WHERE library_id=$1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM library_books WHERE library_id=$1`, id); err != nil {
			return err
		}
		return expectOne(tx.Exec(ctx, `DELETE FROM libraries WHERE id=$1`, id))
	})
}

type librariansRepo struct{ pool *pgxpool.Pool }

var _ repository.Librarians = (*librariansRepo)(nil)

func (r *librariansRepo) Create(ctx context.Context, l models.Librarian) (models.Librarian, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO librarians(name, library_id) VALUES($1,$2) RETURNING id`, l.Name, l.LibraryID,
	).Scan(&l.ID)
	if err != nil {
		return models.Librarian{}, mapErr(err)
	}
	return l, nil
}

func (r *librariansRepo) scanOne(ctx context.Context, sql string, arg any) (models.Librarian, error) {
	var l models.Librarian
	err := r.pool.QueryRow(ctx, sql, arg).Scan(&l.ID, &l.Name, &l.LibraryID)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Librarian{}, repository.ErrNotFound
	}
	return l, err
}

func (r *librariansRepo) GetByID(ctx context.Context, id int64) (models.Librarian, error) {
	return r.scanOne(ctx, `SELECT id, name, library_id FROM librarians WHERE id=$1`, id)
}

func (r *librariansRepo) GetByLibrary(ctx context.Context, libraryID int64) (models.Librarian, error) {
	return r.scanOne(ctx, `SELECT id, name, library_id FROM librarians WHERE library_id=$1`, libraryID)
}

func (r *librariansRepo) Delete(ctx context.Context, id int64) error {
	return expectOne(r.pool.Exec(ctx, `DELETE FROM librarians WHERE id=$1`, id))
}
