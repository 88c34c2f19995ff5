package memory

import (
	"context"

	"github.com/baharkarakas/librarium/internal/models"
	"github.com/baharkarakas/librarium/internal/query"
	"github.com/baharkarakas/librarium/internal/repository"
)

// Authors ----------------------------------------------------------------------

type authors struct{ *Store }

var _ repository.Authors = authors{}

func (s *Store) authorLocked(a models.Author) models.Author {
	a.Books = []models.Book{}
	for _, id := range sortedKeys(s.books) {
		if b := s.books[id]; b.AuthorID == a.ID {
			b.AuthorName = a.Name
			a.Books = append(a.Books, b)
		}
	}
	return a
}

func (r authors) Create(_ context.Context, a models.Author) (models.Author, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.nextIDLocked("authors")
	a.Books = nil
	r.authors[a.ID] = a
	return r.authorLocked(a), nil
}

func (r authors) GetByID(_ context.Context, id int64) (models.Author, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.authors[id]
	if !ok {
		return models.Author{}, repository.ErrNotFound
	}
	return r.authorLocked(a), nil
}

// GetByName returns the lowest-id author with exactly that name.
func (r authors) GetByName(_ context.Context, name string) (models.Author, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range sortedKeys(r.authors) {
		if a := r.authors[id]; a.Name == name {
			return r.authorLocked(a), nil
		}
	}
	return models.Author{}, repository.ErrNotFound
}

func (r authors) List(_ context.Context) ([]models.Author, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Author, 0, len(r.authors))
	for _, id := range sortedKeys(r.authors) {
		out = append(out, r.authorLocked(r.authors[id]))
	}
	return out, nil
}

func (r authors) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.authors[id]; !ok {
		return repository.ErrNotFound
	}
	for bid, b := range r.books {
		if b.AuthorID == id {
			r.deleteBookLocked(bid)
		}
	}
	delete(r.authors, id)
	return nil
}

// Books ------------------------------------------------------------------------

type books struct{ *Store }

var _ repository.Books = books{}

func (s *Store) bookLocked(b models.Book) models.Book {
	b.AuthorName = s.authors[b.AuthorID].Name
	return b
}

func (s *Store) deleteBookLocked(id int64) {
	for _, ids := range s.libraryBooks {
		delete(ids, id)
	}
	delete(s.books, id)
}

func (r books) Create(_ context.Context, b models.Book) (models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.authors[b.AuthorID]; !ok {
		return models.Book{}, repository.ErrInvalidReference
	}
	b.ID = r.nextIDLocked("books")
	b.AuthorName = ""
	r.books[b.ID] = b
	return r.bookLocked(b), nil
}

func (r books) GetByID(_ context.Context, id int64) (models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.books[id]
	if !ok {
		return models.Book{}, repository.ErrNotFound
	}
	return r.bookLocked(b), nil
}

func (r books) List(_ context.Context, q query.BookQuery) ([]models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Book{}
	for _, b := range r.books {
		b = r.bookLocked(b)
		if q.Match(b) {
			out = append(out, b)
		}
	}
	query.SortBooks(out, q.Order)
	return out, nil
}

func (r books) ListByAuthor(_ context.Context, authorID int64) ([]models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Book{}
	for _, id := range sortedKeys(r.books) {
		if b := r.books[id]; b.AuthorID == authorID {
			out = append(out, r.bookLocked(b))
		}
	}
	return out, nil
}

func (r books) Update(_ context.Context, b models.Book) (models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[b.ID]; !ok {
		return models.Book{}, repository.ErrNotFound
	}
	if _, ok := r.authors[b.AuthorID]; !ok {
		return models.Book{}, repository.ErrInvalidReference
	}
	b.AuthorName = ""
	r.books[b.ID] = b
	return r.bookLocked(b), nil
}

func (r books) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return repository.ErrNotFound
	}
	r.deleteBookLocked(id)
	return nil
}

// Libraries --------------------------------------------------------------------

type libraries struct{ *Store }

var _ repository.Libraries = libraries{}

func (s *Store) libraryLocked(l models.Library) models.Library {
	l.BookIDs = sortedKeys(s.libraryBooks[l.ID])
	return l
}

func (r libraries) Create(_ context.Context, l models.Library) (models.Library, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bid := range l.BookIDs {
		if _, ok := r.books[bid]; !ok {
			return models.Library{}, repository.ErrInvalidReference
		}
	}
	l.ID = r.nextIDLocked("libraries")
	links := set{}
	for _, bid := range l.BookIDs {
		links[bid] = struct{}{}
	}
	r.libraryBooks[l.ID] = links
	l.BookIDs = nil
	r.libraries[l.ID] = l
	return r.libraryLocked(l), nil
}

func (r libraries) GetByID(_ context.Context, id int64) (models.Library, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.libraries[id]
	if !ok {
		return models.Library{}, repository.ErrNotFound
	}
	return r.libraryLocked(l), nil
}

func (r libraries) GetByName(_ context.Context, name string) (models.Library, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range sortedKeys(r.libraries) {
		if l := r.libraries[id]; l.Name == name {
			return r.libraryLocked(l), nil
		}
	}
	return models.Library{}, repository.ErrNotFound
}

func (r libraries) List(_ context.Context) ([]models.Library, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Library, 0, len(r.libraries))
	for _, id := range sortedKeys(r.libraries) {
		out = append(out, r.libraryLocked(r.libraries[id]))
	}
	return out, nil
}

// AddBook is idempotent: linking an already linked book is not an error.
func (r libraries) AddBook(_ context.Context, libraryID, bookID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.libraries[libraryID]; !ok {
		return repository.ErrInvalidReference
	}
	if _, ok := r.books[bookID]; !ok {
		return repository.ErrInvalidReference
	}
	r.libraryBooks[libraryID][bookID] = struct{}{}
	return nil
}

func (r libraries) RemoveBook(_ context.Context, libraryID, bookID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	links := r.libraryBooks[libraryID]
	if _, ok := links[bookID]; !ok {
		return repository.ErrNotFound
	}
	delete(links, bookID)
	return nil
}

func (r libraries) Books(_ context.Context, libraryID int64) ([]models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.libraries[libraryID]; !ok {
		return nil, repository.ErrNotFound
	}
	out := []models.Book{}
	for _, bid := range sortedKeys(r.libraryBooks[libraryID]) {
		out = append(out, r.bookLocked(r.books[bid]))
	}
	return out, nil
}

func (r libraries) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.libraries[id]; !ok {
		return repository.ErrNotFound
	}
	for lid, l := range r.librarians {
		if l.LibraryID == id {
			delete(r.librarians, lid)
		}
	}
	delete(r.libraryBooks, id)
	delete(r.libraries, id)
	return nil
}

// Librarians -------------------------------------------------------------------

type librarians struct{ *Store }

var _ repository.Librarians = librarians{}

func (r librarians) Create(_ context.Context, l models.Librarian) (models.Librarian, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.libraries[l.LibraryID]; !ok {
		return models.Librarian{}, repository.ErrInvalidReference
	}
	for _, other := range r.librarians {
		if other.LibraryID == l.LibraryID {
			return models.Librarian{}, repository.ErrConflict
		}
	}
	l.ID = r.nextIDLocked("librarians")
	r.librarians[l.ID] = l
	return l, nil
}

func (r librarians) GetByID(_ context.Context, id int64) (models.Librarian, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.librarians[id]
	if !ok {
		return models.Librarian{}, repository.ErrNotFound
	}
	return l, nil
}

func (r librarians) GetByLibrary(_ context.Context, libraryID int64) (models.Librarian, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.librarians {
		if l.LibraryID == libraryID {
			return l, nil
		}
	}
	return models.Librarian{}, repository.ErrNotFound
}

func (r librarians) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.librarians[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.librarians, id)
	return nil
}
