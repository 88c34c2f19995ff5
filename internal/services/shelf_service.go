package services

import (
	"context"
	"strings"
	"time"

	"github.com/baharkarakas/librarium/internal/access"
	"github.com/baharkarakas/librarium/internal/errs"
	"github.com/baharkarakas/librarium/internal/models"
	"github.com/baharkarakas/librarium/internal/query"
	repo "github.com/baharkarakas/librarium/internal/repository"
	"github.com/baharkarakas/librarium/internal/validate"
)

type ShelfInput struct {
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	PublicationYear *int    `json:"publication_year"`
}

type ShelfService struct {
	r   repo.ShelfBooks
	rec recorder
	now func() time.Time
}

// Browse is the public listing; it needs no permission.
func (s *ShelfService) Browse(ctx context.Context, q query.ShelfQuery) ([]models.ShelfBook, error) {
	return s.r.List(ctx, q)
}

func (s *ShelfService) List(ctx context.Context, p access.Principal, q query.ShelfQuery) ([]models.ShelfBook, error) {
	if err := access.RequirePermission(p, access.PermShelfView); err != nil {
		return nil, err
	}
	return s.r.List(ctx, q)
}

func (s *ShelfService) Create(ctx context.Context, p access.Principal, in ShelfInput) (models.ShelfBook, error) {
	if err := access.RequirePermission(p, access.PermShelfCreate); err != nil {
		return models.ShelfBook{}, err
	}
	var fe validate.Errs
	fe.Add(validate.Present("publication_year", in.PublicationYear))
	b := applyShelf(models.ShelfBook{}, in)
	if err := s.check(b, fe); err != nil {
		return models.ShelfBook{}, err
	}
	out, err := s.r.Create(ctx, b)
	if err != nil {
		return models.ShelfBook{}, err
	}
	s.rec.record(ctx, p, "shelf_book", out.ID, models.AuditCreated, map[string]any{"title": out.Title})
	return out, nil
}

// Update merges the supplied fields into the stored record.
func (s *ShelfService) Update(ctx context.Context, p access.Principal, id int64, in ShelfInput) (models.ShelfBook, error) {
	if err := access.RequirePermission(p, access.PermShelfEdit); err != nil {
		return models.ShelfBook{}, err
	}
	cur, err := s.r.GetByID(ctx, id)
	if err != nil {
		return models.ShelfBook{}, notFound(err, "book")
	}
	b := applyShelf(cur, in)
	if err := s.check(b, nil); err != nil {
		return models.ShelfBook{}, err
	}
	out, err := s.r.Update(ctx, b)
	if err != nil {
		return models.ShelfBook{}, notFound(err, "book")
	}
	s.rec.record(ctx, p, "shelf_book", out.ID, models.AuditUpdated, nil)
	return out, nil
}

func (s *ShelfService) Delete(ctx context.Context, p access.Principal, id int64) error {
	if err := access.RequirePermission(p, access.PermShelfDelete); err != nil {
		return err
	}
	if err := s.r.Delete(ctx, id); err != nil {
		return notFound(err, "book")
	}
	s.rec.record(ctx, p, "shelf_book", id, models.AuditDeleted, nil)
	return nil
}

func applyShelf(b models.ShelfBook, in ShelfInput) models.ShelfBook {
	if in.Title != nil {
		b.Title = strings.TrimSpace(*in.Title)
	}
	if in.Author != nil {
		b.Author = strings.TrimSpace(*in.Author)
	}
	if in.PublicationYear != nil {
		b.PublicationYear = *in.PublicationYear
	}
	return b
}

func (s *ShelfService) check(b models.ShelfBook, fe validate.Errs) error {
	fe = append(fe, b.Validate(s.now())...)
	if len(fe) > 0 {
		return errs.Invalid(fe)
	}
	return nil
}
