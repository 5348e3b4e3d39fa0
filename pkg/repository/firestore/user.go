package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type userDocument struct {
	Email        string    `firestore:"email"`
	PasswordHash string    `firestore:"password_hash"`
	Name         string    `firestore:"name"`
	Role         string    `firestore:"role"`
	Active       bool      `firestore:"active"`
	LastAccessAt time.Time `firestore:"last_access_at"`
	CreatedAt    time.Time `firestore:"created_at"`
	UpdatedAt    time.Time `firestore:"updated_at"`
}

type userRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newUserRepository(client *firestore.Client) *userRepository {
	return &userRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *userRepository) usersCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_users"
	}
	return "users"
}

func userToDocument(user *model.User) *userDocument {
	return &userDocument{
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Name:         user.Name,
		Role:         string(user.Role),
		Active:       user.Active,
		LastAccessAt: user.LastAccessAt,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func userToModel(doc *userDocument) *model.User {
	return &model.User{
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		Name:         doc.Name,
		Role:         types.UserRole(doc.Role),
		Active:       doc.Active,
		LastAccessAt: doc.LastAccessAt,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	doc := userToDocument(user)
	docRef := r.client.Collection(r.usersCollection()).Doc(user.Email)

	if _, err := docRef.Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(model.ErrConflict, "user already exists", goerr.V("email", user.Email))
		}
		return nil, goerr.Wrap(err, "failed to create user", goerr.V("email", user.Email))
	}

	return userToModel(doc), nil
}

func (r *userRepository) Get(ctx context.Context, email string) (*model.User, error) {
	docRef := r.client.Collection(r.usersCollection()).Doc(email)
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("email", email))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("email", email))
	}

	var data userDocument
	if err := doc.DataTo(&data); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user document", goerr.V("email", email))
	}
	return userToModel(&data), nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	iter := r.client.Collection(r.usersCollection()).OrderBy("email", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var users []*model.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate users")
		}

		var data userDocument
		if err := doc.DataTo(&data); err != nil {
			return nil, goerr.Wrap(err, "failed to decode user document")
		}
		users = append(users, userToModel(&data))
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) (*model.User, error) {
	existing, err := r.Get(ctx, user.Email)
	if err != nil {
		return nil, err
	}

	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now().UTC()

	doc := userToDocument(user)
	docRef := r.client.Collection(r.usersCollection()).Doc(user.Email)
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to update user", goerr.V("email", user.Email))
	}

	return userToModel(doc), nil
}

func (r *userRepository) Delete(ctx context.Context, email string) error {
	if _, err := r.Get(ctx, email); err != nil {
		return err
	}

	docRef := r.client.Collection(r.usersCollection()).Doc(email)
	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete user", goerr.V("email", email))
	}
	return nil
}

func (r *userRepository) TouchLastAccess(ctx context.Context, email string) error {
	docRef := r.client.Collection(r.usersCollection()).Doc(email)
	if _, err := docRef.Update(ctx, []firestore.Update{
		{Path: "last_access_at", Value: time.Now().UTC()},
	}); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "user not found", goerr.V("email", email))
		}
		return goerr.Wrap(err, "failed to touch last access", goerr.V("email", email))
	}
	return nil
}
