package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/interfaces"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

type UserUseCase struct {
	repo interfaces.Repository
	now  func() time.Time
}

func newUserUseCase(repo interfaces.Repository, now func() time.Time) *UserUseCase {
	return &UserUseCase{
		repo: repo,
		now:  now,
	}
}

// Create registers a user account with a hashed credential
func (uc *UserUseCase) Create(ctx context.Context, email, name, password string, role types.UserRole) (*model.User, error) {
	user := &model.User{
		Email:  email,
		Name:   name,
		Role:   role,
		Active: true,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := user.SetPassword(password); err != nil {
		return nil, goerr.Wrap(err, "password rejected", goerr.V(UserEmailKey, email))
	}

	created, err := uc.repo.User().Create(ctx, user)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create user", goerr.V(UserEmailKey, email))
	}

	return created, nil
}

func (uc *UserUseCase) Get(ctx context.Context, email string) (*model.User, error) {
	user, err := uc.repo.User().Get(ctx, email)
	if err != nil {
		return nil, goerr.Wrap(ErrUserNotFound, "user not found", goerr.V(UserEmailKey, email))
	}
	return user, nil
}

func (uc *UserUseCase) List(ctx context.Context) ([]*model.User, error) {
	users, err := uc.repo.User().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list users")
	}
	return users, nil
}

func (uc *UserUseCase) Delete(ctx context.Context, email string) error {
	if err := uc.repo.User().Delete(ctx, email); err != nil {
		return goerr.Wrap(ErrUserNotFound, "user not found", goerr.V(UserEmailKey, email))
	}
	return nil
}

// Deactivate disables an account without removing it
func (uc *UserUseCase) Deactivate(ctx context.Context, email string) (*model.User, error) {
	user, err := uc.repo.User().Get(ctx, email)
	if err != nil {
		return nil, goerr.Wrap(ErrUserNotFound, "user not found", goerr.V(UserEmailKey, email))
	}

	user.Active = false

	updated, err := uc.repo.User().Update(ctx, user)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to deactivate user", goerr.V(UserEmailKey, email))
	}

	return updated, nil
}

// Authenticate verifies a credential and records the access time.
// Unknown accounts and bad passwords return the same error so callers
// cannot probe for registered emails.
func (uc *UserUseCase) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := uc.repo.User().Get(ctx, email)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidCredentials, "authentication failed")
	}

	if !user.VerifyPassword(password) {
		return nil, goerr.Wrap(ErrInvalidCredentials, "authentication failed")
	}

	if !user.Active {
		return nil, goerr.Wrap(ErrUserInactive, "account is disabled", goerr.V(UserEmailKey, email))
	}

	if err := uc.repo.User().TouchLastAccess(ctx, email); err != nil {
		return nil, goerr.Wrap(err, "failed to record access time", goerr.V(UserEmailKey, email))
	}

	user.LastAccessAt = uc.now()
	return user, nil
}
