package memory

import (
	"context"

	"github.com/baharkarakas/librarium/internal/models"
	"github.com/baharkarakas/librarium/internal/query"
	"github.com/baharkarakas/librarium/internal/repository"
)

type shelfBooks struct{ *Store }

var _ repository.ShelfBooks = shelfBooks{}

func (r shelfBooks) Create(_ context.Context, b models.ShelfBook) (models.ShelfBook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = r.nextIDLocked("shelf_books")
	r.shelf[b.ID] = b
	return b, nil
}

func (r shelfBooks) GetByID(_ context.Context, id int64) (models.ShelfBook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.shelf[id]
	if !ok {
		return models.ShelfBook{}, repository.ErrNotFound
	}
	return b, nil
}

func (r shelfBooks) List(_ context.Context, q query.ShelfQuery) ([]models.ShelfBook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.ShelfBook{}
	for _, b := range r.shelf {
		if q.Match(b) {
			out = append(out, b)
		}
	}
	query.SortShelf(out, q.Order)
	return out, nil
}

func (r shelfBooks) Update(_ context.Context, b models.ShelfBook) (models.ShelfBook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shelf[b.ID]; !ok {
		return models.ShelfBook{}, repository.ErrNotFound
	}
	r.shelf[b.ID] = b
	return b, nil
}

func (r shelfBooks) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shelf[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.shelf, id)
	return nil
}
