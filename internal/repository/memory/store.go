// Package memory is an in-memory implementation of the repository
// interfaces. It is safe for concurrent use and is intended for tests and
// local development (APP_STORE=memory). Every mutation, cascades included,
// runs under one lock, so a failed write leaves no partial state.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/baharkarakas/librarium/internal/models"
	"github.com/baharkarakas/librarium/internal/repository"
)

type set map[int64]struct{}

type postRow struct {
	ID            int64
	Title         string
	Content       string
	AuthorID      int64
	PublishedDate time.Time
}

// Store holds every table. The per-entity repositories are thin views on it.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time
	seq map[string]int64

	authors      map[int64]models.Author
	books        map[int64]models.Book
	libraries    map[int64]models.Library
	libraryBooks map[int64]set // library id -> book ids
	librarians   map[int64]models.Librarian

	users    map[int64]models.User
	profiles map[int64]models.Role
	perms    map[int64]map[string]struct{}

	posts     map[int64]postRow
	postTags  map[int64]set // post id -> tag ids
	tags      map[int64]models.Tag
	tagByName map[string]int64
	comments  map[int64]models.Comment

	shelf map[int64]models.ShelfBook
	audit []models.AuditLog
}

type Option func(*Store)

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		now:          func() time.Time { return time.Now().UTC() },
		seq:          make(map[string]int64),
		authors:      make(map[int64]models.Author),
		books:        make(map[int64]models.Book),
		libraries:    make(map[int64]models.Library),
		libraryBooks: make(map[int64]set),
		librarians:   make(map[int64]models.Librarian),
		users:        make(map[int64]models.User),
		profiles:     make(map[int64]models.Role),
		perms:        make(map[int64]map[string]struct{}),
		posts:        make(map[int64]postRow),
		postTags:     make(map[int64]set),
		tags:         make(map[int64]models.Tag),
		tagByName:    make(map[string]int64),
		comments:     make(map[int64]models.Comment),
		shelf:        make(map[int64]models.ShelfBook),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewRepositories returns every repository backed by a fresh Store.
func NewRepositories(opts ...Option) repository.Repositories {
	return New(opts...).Repositories()
}

func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Authors:    authors{s},
		Books:      books{s},
		Libraries:  libraries{s},
		Librarians: librarians{s},
		Users:      users{s},
		Posts:      posts{s},
		Comments:   comments{s},
		Tags:       tags{s},
		ShelfBooks: shelfBooks{s},
		AuditLogs:  auditLogs{s},
	}
}

// nextIDLocked hands out ids per table, starting at 1 like BIGSERIAL.
func (s *Store) nextIDLocked(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

func sortedKeys[V any](m map[int64]V) []int64 {
	out := make([]int64, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AuditLogs --------------------------------------------------------------------

type auditLogs struct{ *Store }

var _ repository.AuditLogs = auditLogs{}

func (r auditLogs) Create(_ context.Context, l models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.ID = r.nextIDLocked("audit_logs")
	l.CreatedAt = r.now()
	r.audit = append(r.audit, l)
	return nil
}

// AuditTrail returns a copy of every audit entry written so far.
func (s *Store) AuditTrail() []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AuditLog(nil), s.audit...)
}
