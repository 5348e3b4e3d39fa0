package interfaces

import (
	"context"

	"github.com/secops-lab/magerisk/pkg/domain/model"
)

// UserRepository persists platform users keyed by email
type UserRepository interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	Get(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Update(ctx context.Context, user *model.User) (*model.User, error)
	Delete(ctx context.Context, email string) error

	// TouchLastAccess records the last access timestamp
	TouchLastAccess(ctx context.Context, email string) error
}
