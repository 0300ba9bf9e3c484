package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/craftfolio/craftfolio-api/internal/domain/entity"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// IdentityRepository is the relational credential store.
type IdentityRepository interface {
	// Create inserts the identity row inside a transaction and runs
	// documentLeg before committing. An error from documentLeg rolls the
	// insert back; this is the compensating action for the two-phase
	// cross-store create (there is no 2PC across heterogeneous stores).
	Create(ctx context.Context, ident *entity.Identity, documentLeg func(ctx context.Context) error) error
	GetByEmail(ctx context.Context, email string) (*entity.Identity, error)
	GetByCrossRef(ctx context.Context, crossRef string) (*entity.Identity, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateEmail(ctx context.Context, crossRef, email string) error
	UpdatePassword(ctx context.Context, crossRef, passwordHash string) error
	// Deactivate soft-deletes the row (active=false, deleted_at=now) inside a
	// transaction and runs documentLeg before committing, mirroring Create.
	Deactivate(ctx context.Context, crossRef string, documentLeg func(ctx context.Context) error) error
	CountActive(ctx context.Context) (int64, error)
}

// ProfileRepository is the document-store profile collection.
type ProfileRepository interface {
	Create(ctx context.Context, p *entity.Profile) error
	GetByCrossRef(ctx context.Context, crossRef string) (*entity.Profile, error)
	GetByFriendlyID(ctx context.Context, friendlyID string) (*entity.Profile, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Profile, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.Profile, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, p *entity.Profile) error
	SoftDeleteByCrossRef(ctx context.Context, crossRef string) error
	// List pages profiles newest-first; search filters by username,
	// friendly_id, or bio (case-insensitive substring).
	List(ctx context.Context, search string, page, limit int) ([]entity.Profile, int64, error)
	Count(ctx context.Context) (int64, error)
}

// PostRepository is the document-store post collection.
type PostRepository interface {
	Create(ctx context.Context, p *entity.Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Post, error)
	List(ctx context.Context, page, limit int) ([]entity.Post, int64, error)
	ListByProfile(ctx context.Context, profileID primitive.ObjectID) ([]entity.Post, error)
	// ToggleLike flips profileID's membership in the like set as one atomic
	// document update and returns the resulting state.
	ToggleLike(ctx context.Context, postID, profileID primitive.ObjectID) (liked bool, likes int, err error)
	AddComment(ctx context.Context, postID primitive.ObjectID, c entity.Comment) error
	RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// ProjectRepository is the document-store project collection.
type ProjectRepository interface {
	Create(ctx context.Context, p *entity.Project) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Project, error)
	ListByProfile(ctx context.Context, profileID primitive.ObjectID) ([]entity.Project, error)
	Update(ctx context.Context, p *entity.Project) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// ProfileIndex is the optional search index over profiles used by admin
// search. Implementations must be safe to skip: a nil index falls back to
// the document store's substring search.
type ProfileIndex interface {
	Index(ctx context.Context, p *entity.Profile) error
	// Search returns matching profile ids, best first.
	Search(ctx context.Context, query string, page, limit int) ([]primitive.ObjectID, int64, error)
	Remove(ctx context.Context, id primitive.ObjectID) error
}
