package memory

import (
	"context"
	"sort"

	"github.com/baharkarakas/librarium/internal/models"
	"github.com/baharkarakas/librarium/internal/repository"
)

type users struct{ *Store }

var _ repository.Users = users{}

func (s *Store) userLocked(u models.User) models.User {
	if role, ok := s.profiles[u.ID]; ok {
		u.Profile = &models.UserProfile{UserID: u.ID, Role: role}
	}
	if u.DateOfBirth != nil {
		d := *u.DateOfBirth
		u.DateOfBirth = &d
	}
	if u.ProfilePhoto != nil {
		p := *u.ProfilePhoto
		u.ProfilePhoto = &p
	}
	return u
}

func (s *Store) usernameTakenLocked(username string, except int64) bool {
	for id, u := range s.users {
		if id != except && u.Username == username {
			return true
		}
	}
	return false
}

func (r users) Create(_ context.Context, u models.User, role models.Role) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.usernameTakenLocked(u.Username, 0) {
		return models.User{}, repository.ErrConflict
	}
	u.ID = r.nextIDLocked("users")
	u.CreatedAt = r.now()
	u.UpdatedAt = u.CreatedAt
	u.Profile = nil
	r.users[u.ID] = u
	r.profiles[u.ID] = role
	return r.userLocked(u), nil
}

func (r users) GetByID(_ context.Context, id int64) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return r.userLocked(u), nil
}

func (r users) GetByUsername(_ context.Context, username string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			return r.userLocked(u), nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (r users) List(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.User, 0, len(r.users))
	for _, id := range sortedKeys(r.users) {
		out = append(out, r.userLocked(r.users[id]))
	}
	return out, nil
}

func (r users) Update(_ context.Context, u models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.users[u.ID]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	if r.usernameTakenLocked(u.Username, u.ID) {
		return models.User{}, repository.ErrConflict
	}
	u.CreatedAt = old.CreatedAt
	u.UpdatedAt = r.now()
	u.Profile = nil
	r.users[u.ID] = u
	return r.userLocked(u), nil
}

func (r users) SetRole(_ context.Context, userID int64, role models.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; !ok {
		return repository.ErrNotFound
	}
	r.profiles[userID] = role
	return nil
}

func (r users) Permissions(_ context.Context, userID int64) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.perms[userID]))
	for p := range r.perms[userID] {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

func (r users) Grant(_ context.Context, userID int64, perm string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; !ok {
		return repository.ErrInvalidReference
	}
	if r.perms[userID] == nil {
		r.perms[userID] = make(map[string]struct{})
	}
	r.perms[userID][perm] = struct{}{}
	return nil
}

func (r users) Revoke(_ context.Context, userID int64, perm string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.perms[userID][perm]; !ok {
		return repository.ErrNotFound
	}
	delete(r.perms[userID], perm)
	return nil
}

func (r users) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	for cid, c := range r.comments {
		if c.AuthorID == id {
			delete(r.comments, cid)
		}
	}
	for pid, p := range r.posts {
		if p.AuthorID == id {
			r.deletePostLocked(pid)
		}
	}
	delete(r.perms, id)
	delete(r.profiles, id)
	delete(r.users, id)
	return nil
}
