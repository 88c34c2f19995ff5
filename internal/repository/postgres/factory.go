package postgres

import (
	repo "github.com/baharkarakas/librarium/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositories(pool *pgxpool.Pool) repo.Repositories {
	return repo.Repositories{
		Authors:    &authorsRepo{pool},
		Books:      &booksRepo{pool},
		Libraries:  &librariesRepo{pool},
		Librarians: &librariansRepo{pool},
		Users:      &usersRepo{pool},
		Posts:      &postsRepo{pool},
		Comments:   &commentsRepo{pool},
		Tags:       &tagsRepo{pool},
		ShelfBooks: &shelfBooksRepo{pool},
		AuditLogs:  &auditLogsRepo{pool},
	}
}
