package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secops-lab/magerisk/pkg/domain/types"
	"github.com/secops-lab/magerisk/pkg/usecase"
)

func TestUserUseCase_CreateHashesPassword(t *testing.T) {
	uc := newTestUseCases(t)
	ctx := context.Background()

	created, err := uc.User.Create(ctx, "alice@example.com", "Alice", "s3cret-pass", types.UserRoleAdmin)
	gt.NoError(t, err).Required()

	gt.Value(t, created.PasswordHash).NotEqual("s3cret-pass")
	gt.Value(t, created.PasswordHash).NotEqual("")
	gt.Bool(t, created.Active).True()

	_, err = uc.User.Create(ctx, "bob@example.com", "Bob", "short", types.UserRoleOperator)
	gt.Error(t, err)
}

func TestUserUseCase_Authenticate(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		uc := newTestUseCases(t)
		ctx := context.Background()

		_, err := uc.User.Create(ctx, "alice@example.com", "Alice", "s3cret-pass", types.UserRoleAuditor)
		gt.NoError(t, err).Required()

		user, err := uc.User.Authenticate(ctx, "alice@example.com", "s3cret-pass")
		gt.NoError(t, err).Required()
		gt.Value(t, user.Email).Equal("alice@example.com")
		gt.Bool(t, user.LastAccessAt.IsZero()).False()
	})

	t.Run("wrong password and unknown account look identical", func(t *testing.T) {
		uc := newTestUseCases(t)
		ctx := context.Background()

		_, err := uc.User.Create(ctx, "alice@example.com", "Alice", "s3cret-pass", types.UserRoleAuditor)
		gt.NoError(t, err).Required()

		_, errWrong := uc.User.Authenticate(ctx, "alice@example.com", "wrong-pass")
		gt.Error(t, errWrong)
		gt.Bool(t, errors.Is(errWrong, usecase.ErrInvalidCredentials)).True()

		_, errUnknown := uc.User.Authenticate(ctx, "nobody@example.com", "whatever-pass")
		gt.Error(t, errUnknown)
		gt.Bool(t, errors.Is(errUnknown, usecase.ErrInvalidCredentials)).True()
	})

	t.Run("deactivated account is rejected", func(t *testing.T) {
		uc := newTestUseCases(t)
		ctx := context.Background()

		_, err := uc.User.Create(ctx, "alice@example.com", "Alice", "s3cret-pass", types.UserRoleAuditor)
		gt.NoError(t, err).Required()

		_, err = uc.User.Deactivate(ctx, "alice@example.com")
		gt.NoError(t, err).Required()

		_, err = uc.User.Authenticate(ctx, "alice@example.com", "s3cret-pass")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrUserInactive)).True()
	})
}
