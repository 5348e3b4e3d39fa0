package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/model"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

func newUserRepository() *userRepository {
	return &userRepository{
		users: make(map[string]*model.User),
	}
}

func copyUser(u *model.User) *model.User {
	copied := *u
	return &copied
}

func (r *userRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Email]; exists {
		return nil, goerr.Wrap(model.ErrConflict, "user already exists", goerr.V("email", user.Email))
	}

	now := time.Now().UTC()
	created := copyUser(user)
	created.CreatedAt = now
	created.UpdatedAt = now

	r.users[created.Email] = created
	return copyUser(created), nil
}

func (r *userRepository) Get(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[email]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("email", email))
	}
	return copyUser(user), nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*model.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, copyUser(user))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.users[user.Email]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("email", user.Email))
	}

	updated := copyUser(user)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.users[updated.Email] = updated
	return copyUser(updated), nil
}

func (r *userRepository) Delete(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[email]; !exists {
		return goerr.Wrap(ErrNotFound, "user not found", goerr.V("email", email))
	}
	delete(r.users, email)
	return nil
}

func (r *userRepository) TouchLastAccess(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[email]
	if !exists {
		return goerr.Wrap(ErrNotFound, "user not found", goerr.V("email", email))
	}
	user.LastAccessAt = time.Now().UTC()
	return nil
}
