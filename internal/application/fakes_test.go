package application

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/craftfolio/craftfolio-api/internal/domain/entity"
	repo "github.com/craftfolio/craftfolio-api/internal/domain/repository"
	"github.com/craftfolio/craftfolio-api/internal/infrastructure/postgres"
)

// In-memory repositories mirroring the store semantics the services rely on:
// unique email, transactional document leg, atomic like toggle.

type fakeIdentities struct {
	byCrossRef map[string]*entity.Identity
	nextID     int64
}

func newFakeIdentities() *fakeIdentities {
	return &fakeIdentities{byCrossRef: map[string]*entity.Identity{}}
}

func (f *fakeIdentities) findByEmail(email string) *entity.Identity {
	for _, id := range f.byCrossRef {
		if strings.EqualFold(id.Email, email) {
			return id
		}
	}
	return nil
}

func (f *fakeIdentities) Create(ctx context.Context, ident *entity.Identity, documentLeg func(ctx context.Context) error) error {
	if f.findByEmail(ident.Email) != nil {
		return postgres.ErrDuplicate
	}
	// The document leg runs before the row becomes visible, like the real
	// transaction: a failing leg leaves no identity behind.
	if documentLeg != nil {
		if err := documentLeg(ctx); err != nil {
			return err
		}
	}
	f.nextID++
	ident.ID = f.nextID
	ident.Active = true
	cp := *ident
	f.byCrossRef[ident.CrossRef] = &cp
	return nil
}

func (f *fakeIdentities) GetByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	if id := f.findByEmail(email); id != nil {
		cp := *id
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeIdentities) GetByCrossRef(ctx context.Context, crossRef string) (*entity.Identity, error) {
	if id, ok := f.byCrossRef[crossRef]; ok {
		cp := *id
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeIdentities) EmailExists(ctx context.Context, email string) (bool, error) {
	return f.findByEmail(email) != nil, nil
}

func (f *fakeIdentities) UpdateEmail(ctx context.Context, crossRef, email string) error {
	if other := f.findByEmail(email); other != nil && other.CrossRef != crossRef {
		return postgres.ErrDuplicate
	}
	id, ok := f.byCrossRef[crossRef]
	if !ok {
		return repo.ErrNotFound
	}
	id.Email = email
	return nil
}

func (f *fakeIdentities) UpdatePassword(ctx context.Context, crossRef, passwordHash string) error {
	id, ok := f.byCrossRef[crossRef]
	if !ok {
		return repo.ErrNotFound
	}
	id.PasswordHash = passwordHash
	return nil
}

func (f *fakeIdentities) Deactivate(ctx context.Context, crossRef string, documentLeg func(ctx context.Context) error) error {
	id, ok := f.byCrossRef[crossRef]
	if !ok || !id.Active {
		return repo.ErrNotFound
	}
	if documentLeg != nil {
		if err := documentLeg(ctx); err != nil {
			return err
		}
	}
	now := time.Now().UTC()
	id.Active = false
	id.DeletedAt = &now
	return nil
}

func (f *fakeIdentities) CountActive(ctx context.Context) (int64, error) {
	var n int64
	for _, id := range f.byCrossRef {
		if id.Active {
			n++
		}
	}
	return n, nil
}

var _ repo.IdentityRepository = (*fakeIdentities)(nil)

type fakeProfiles struct {
	byID map[primitive.ObjectID]*entity.Profile
	// createErr forces the next Create to fail, for rollback tests.
	createErr error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{byID: map[primitive.ObjectID]*entity.Profile{}}
}

func (f *fakeProfiles) Create(ctx context.Context, p *entity.Profile) error {
	if f.createErr != nil {
		return f.createErr
	}
	p.ID = primitive.NewObjectID()
	p.Active = true
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProfiles) GetByCrossRef(ctx context.Context, crossRef string) (*entity.Profile, error) {
	for _, p := range f.byID {
		if p.CrossRef == crossRef {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeProfiles) GetByFriendlyID(ctx context.Context, friendlyID string) (*entity.Profile, error) {
	for _, p := range f.byID {
		if p.FriendlyID == friendlyID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeProfiles) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Profile, error) {
	if p, ok := f.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeProfiles) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.Profile, error) {
	out := make([]entity.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProfiles) UsernameExists(ctx context.Context, username string) (bool, error) {
	for _, p := range f.byID {
		if strings.EqualFold(p.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProfiles) Update(ctx context.Context, p *entity.Profile) error {
	if _, ok := f.byID[p.ID]; !ok {
		return repo.ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProfiles) SoftDeleteByCrossRef(ctx context.Context, crossRef string) error {
	for _, p := range f.byID {
		if p.CrossRef == crossRef {
			now := time.Now().UTC()
			p.Active = false
			p.DeletedAt = &now
			return nil
		}
	}
	return repo.ErrNotFound
}

func (f *fakeProfiles) List(ctx context.Context, search string, page, limit int) ([]entity.Profile, int64, error) {
	out := make([]entity.Profile, 0, len(f.byID))
	for _, p := range f.byID {
		if search != "" && !strings.Contains(strings.ToLower(p.Username), strings.ToLower(search)) {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeProfiles) Count(ctx context.Context) (int64, error) {
	return int64(len(f.byID)), nil
}

var _ repo.ProfileRepository = (*fakeProfiles)(nil)

type fakePosts struct {
	byID map[primitive.ObjectID]*entity.Post
}

func newFakePosts() *fakePosts {
	return &fakePosts{byID: map[primitive.ObjectID]*entity.Post{}}
}

func (f *fakePosts) Create(ctx context.Context, p *entity.Post) error {
	p.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Likes == nil {
		p.Likes = []primitive.ObjectID{}
	}
	if p.Comments == nil {
		p.Comments = []entity.Comment{}
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePosts) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Post, error) {
	if p, ok := f.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakePosts) List(ctx context.Context, page, limit int) ([]entity.Post, int64, error) {
	out := make([]entity.Post, 0, len(f.byID))
	for _, p := range f.byID {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakePosts) ListByProfile(ctx context.Context, profileID primitive.ObjectID) ([]entity.Post, error) {
	var out []entity.Post
	for _, p := range f.byID {
		if p.ProfileID == profileID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePosts) ToggleLike(ctx context.Context, postID, profileID primitive.ObjectID) (bool, int, error) {
	p, ok := f.byID[postID]
	if !ok {
		return false, 0, repo.ErrNotFound
	}
	for i, id := range p.Likes {
		if id == profileID {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return false, len(p.Likes), nil
		}
	}
	p.Likes = append(p.Likes, profileID)
	return true, len(p.Likes), nil
}

func (f *fakePosts) AddComment(ctx context.Context, postID primitive.ObjectID, c entity.Comment) error {
	p, ok := f.byID[postID]
	if !ok {
		return repo.ErrNotFound
	}
	p.Comments = append(p.Comments, c)
	return nil
}

func (f *fakePosts) RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	p, ok := f.byID[postID]
	if !ok {
		return repo.ErrNotFound
	}
	for i, c := range p.Comments {
		if c.ID == commentID {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (f *fakePosts) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := f.byID[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakePosts) Count(ctx context.Context) (int64, error) {
	return int64(len(f.byID)), nil
}

var _ repo.PostRepository = (*fakePosts)(nil)

type fakeProjects struct {
	byID map[primitive.ObjectID]*entity.Project
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{byID: map[primitive.ObjectID]*entity.Project{}}
}

func (f *fakeProjects) Create(ctx context.Context, p *entity.Project) error {
	p.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProjects) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Project, error) {
	if p, ok := f.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeProjects) ListByProfile(ctx context.Context, profileID primitive.ObjectID) ([]entity.Project, error) {
	var out []entity.Project
	for _, p := range f.byID {
		if p.ProfileID == profileID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProjects) Update(ctx context.Context, p *entity.Project) error {
	if _, ok := f.byID[p.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProjects) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := f.byID[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeProjects) Count(ctx context.Context) (int64, error) {
	return int64(len(f.byID)), nil
}

var _ repo.ProjectRepository = (*fakeProjects)(nil)
