package postgres

import (
	"context"
	"errors"

	"github.com/baharkarakas/librarium/internal/models"
	"github.com/baharkarakas/librarium/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type usersRepo struct{ pool *pgxpool.Pool }

var _ repository.Users = (*usersRepo)(nil)

const userSelect = `
SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.password_hash,
       u.date_of_birth, u.profile_photo, u.is_staff, u.is_superuser,
       u.created_at, u.updated_at, p.role
  FROM users u
  LEFT JOIN user_profiles p ON p.user_id = u.id`

func scanUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	var role *string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.DateOfBirth, &u.ProfilePhoto, &u.IsStaff, &u.IsSuperuser,
		&u.CreatedAt, &u.UpdatedAt, &role)
	if err != nil {
		return models.User{}, err
	}
	if role != nil {
		u.Profile = &models.UserProfile{UserID: u.ID, Role: models.Role(*role)}
	}
	return u, nil
}

func (r *usersRepo) one(ctx context.Context, cond string, arg any) (models.User, error) {
	rows, err := r.pool.Query(ctx, userSelect+` WHERE `+cond, arg)
	if err != nil {
		return models.User{}, err
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	return u, mapErr(err)
}

// Create inserts the user and its profile in one transaction.
func (r *usersRepo) Create(ctx context.Context, u models.User, role models.Role) (models.User, error) {
	err := WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO users(username, email, first_name, last_name, password_hash,
			                   date_of_birth, profile_photo, is_staff, is_superuser)
			 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
			u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash,
			u.DateOfBirth, u.ProfilePhoto, u.IsStaff, u.IsSuperuser,
		).Scan(&u.ID)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `INSERT INTO user_profiles(user_id, role) VALUES($1,$2)`, u.ID, string(role))
		return err
	})
	if err != nil {
		return models.User{}, mapErr(err)
	}
	return r.GetByID(ctx, u.ID)
}

func (r *usersRepo) GetByID(ctx context.Context, id int64) (models.User, error) {
	return r.one(ctx, "u.id = $1", id)
}

func (r *usersRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return r.one(ctx, "u.username = $1", username)
}

func (r *usersRepo) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, userSelect+` ORDER BY u.id`)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.User{}
	}
	return out, nil
}

func (r *usersRepo) Update(ctx context.Context, u models.User) (models.User, error) {
	err := expectOne(r.pool.Exec(ctx,
		`UPDATE users SET username=$2, email=$3, first_name=$4, last_name=$5, password_hash=$6,
		        date_of_birth=$7, profile_photo=$8, is_staff=$9, is_superuser=$10, updated_at=now()
		  WHERE id=$1`,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash,
		u.DateOfBirth, u.ProfilePhoto, u.IsStaff, u.IsSuperuser,
	))
	if err != nil {
		return models.User{}, err
	}
	return r.GetByID(ctx, u.ID)
}

func (r *usersRepo) SetRole(ctx context.Context, userID int64, role models.Role) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_profiles(user_id, role) VALUES($1,$2)
		 ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role`,
		userID, string(role))
	if err = mapErr(err); errors.Is(err, repository.ErrInvalidReference) {
		return repository.ErrNotFound
	}
	return err
}

func (r *usersRepo) Permissions(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT codename FROM user_permissions WHERE user_id=$1 ORDER BY codename`, userID)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func (r *usersRepo) Grant(ctx context.Context, userID int64, perm string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_permissions(user_id, codename) VALUES($1,$2) ON CONFLICT DO NOTHING`,
		userID, perm)
	return mapErr(err)
}

func (r *usersRepo) Revoke(ctx context.Context, userID int64, perm string) error {
	return expectOne(r.pool.Exec(ctx,
		`DELETE FROM user_permissions WHERE user_id=$1 AND codename=$2`, userID, perm))
}

// Delete removes the user's comments, posts (with their comments and tag
// links), grants and profile before the user row.
func (r *usersRepo) Delete(ctx context.Context, id int64) error {
	return WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, q := range []string{
			`DELETE FROM comments WHERE author_id=$1 OR post_id IN (SELECT id FROM posts WHERE author_id=$1)`,
			`DELETE FROM post_tags WHERE post_id IN (SELECT id FROM posts WHERE author_id=$1)`,
			`DELETE FROM posts WHERE author_id=$1`,
			`DELETE FROM user_permissions WHERE user_id=$1`,
			`DELETE FROM user_profiles WHERE user_id=$1`,
		} {
			if _, err := tx.Exec(ctx, q, id); err != nil {
				return err
			}
		}
		return expectOne(tx.Exec(ctx, `DELETE FROM users WHERE id=$1`, id))
	})
}
