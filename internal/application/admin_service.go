package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/craftfolio/craftfolio-api/internal/domain/entity"
	repo "github.com/craftfolio/craftfolio-api/internal/domain/repository"
	"github.com/craftfolio/craftfolio-api/pkg/apperr"
)

// AdminService owns moderation: user listing, deletions, and platform counts.
// Every action is logged with the acting admin's cross_ref.
type AdminService struct {
	Identities repo.IdentityRepository
	Profiles   repo.ProfileRepository
	Posts      repo.PostRepository
	Projects   repo.ProjectRepository
	Index      repo.ProfileIndex // optional; nil falls back to document search
	Logger     *logrus.Logger
}

func NewAdminService(identities repo.IdentityRepository, profiles repo.ProfileRepository, posts repo.PostRepository, projects repo.ProjectRepository, index repo.ProfileIndex, logger *logrus.Logger) *AdminService {
	return &AdminService{Identities: identities, Profiles: profiles, Posts: posts, Projects: projects, Index: index, Logger: logger}
}

// AdminUserRow is one row of the admin user list, joining both stores.
// Role is "unknown" when the relational row cannot be resolved; the join
// failure is logged, never silently reported as a regular user.
type AdminUserRow struct {
	ProfileID      string     `json:"profile_id"`
	FriendlyID     string     `json:"friendly_id"`
	Username       string     `json:"username"`
	Email          string     `json:"email,omitempty"`
	Role           string     `json:"role"`
	Active         bool       `json:"active"`
	ProfilePicture string     `json:"profile_picture,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}

type AdminUserList struct {
	Users       []AdminUserRow `json:"users"`
	Total       int64          `json:"total"`
	CurrentPage int            `json:"current_page"`
}

// ListUsers pages profiles with an optional search term. The search index is
// used when available; otherwise the document store's substring match serves.
func (s *AdminService) ListUsers(ctx context.Context, search string, page, limit int) (*AdminUserList, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var (
		profiles []entity.Profile
		total    int64
		err      error
	)
	if search != "" && s.Index != nil {
		profiles, total, err = s.searchViaIndex(ctx, search, page, limit)
		if err != nil {
			s.Logger.WithError(err).Warn("index search failed, falling back to document search")
			profiles, total, err = s.Profiles.List(ctx, search, page, limit)
		}
	} else {
		profiles, total, err = s.Profiles.List(ctx, search, page, limit)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "user listing failed", err)
	}

	rows := make([]AdminUserRow, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		row := AdminUserRow{
			ProfileID:      p.ID.Hex(),
			FriendlyID:     p.FriendlyID,
			Username:       p.Username,
			Role:           "unknown",
			Active:         p.Active,
			ProfilePicture: p.ProfilePicture,
			CreatedAt:      p.CreatedAt,
			DeletedAt:      p.DeletedAt,
		}
		ident, ierr := s.Identities.GetByCrossRef(ctx, p.CrossRef)
		if ierr != nil {
			s.Logger.WithError(ierr).WithField("cross_ref", p.CrossRef).Warn("profile has no resolvable identity row")
		} else {
			row.Email = ident.Email
			row.Role = ident.Role
		}
		rows = append(rows, row)
	}
	return &AdminUserList{Users: rows, Total: total, CurrentPage: page}, nil
}

func (s *AdminService) searchViaIndex(ctx context.Context, search string, page, limit int) ([]entity.Profile, int64, error) {
	ids, total, err := s.Index.Search(ctx, search, page, limit)
	if err != nil {
		return nil, 0, err
	}
	profiles, err := s.Profiles.GetByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	// Re-impose the index's relevance order; GetByIDs does not preserve it.
	byID := make(map[primitive.ObjectID]entity.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	ordered := make([]entity.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, total, nil
}

// DeleteUser soft-deletes an account. Admins cannot delete themselves and
// nobody can delete a super admin.
func (s *AdminService) DeleteUser(ctx context.Context, actorCrossRef, targetCrossRef string) error {
	if actorCrossRef == targetCrossRef {
		return apperr.New(apperr.Validation, "Cannot delete your own admin account")
	}
	target, err := s.Identities.GetByCrossRef(ctx, targetCrossRef)
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.New(apperr.NotFound, "User not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "user deletion failed", err)
	}
	if target.Role == entity.RoleSuperAdmin {
		s.Logger.WithFields(logrus.Fields{"admin": actorCrossRef, "target": targetCrossRef}).Warn("attempt to delete a super admin blocked")
		return apperr.New(apperr.Forbidden, "Cannot delete another super admin account")
	}

	var profile *entity.Profile
	if p, perr := s.Profiles.GetByCrossRef(ctx, targetCrossRef); perr == nil {
		profile = p
	}

	err = s.Identities.Deactivate(ctx, targetCrossRef, func(ctx context.Context) error {
		if derr := s.Profiles.SoftDeleteByCrossRef(ctx, targetCrossRef); derr != nil && !errors.Is(derr, repo.ErrNotFound) {
			return derr
		}
		return nil
	})
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.New(apperr.NotFound, "User not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "user deletion failed", err)
	}

	if s.Index != nil && profile != nil {
		if ierr := s.Index.Remove(ctx, profile.ID); ierr != nil {
			s.Logger.WithError(ierr).WithField("cross_ref", targetCrossRef).Warn("profile index removal failed")
		}
	}
	s.Logger.WithFields(logrus.Fields{"admin": actorCrossRef, "target": targetCrossRef}).Info("admin deleted user")
	return nil
}

// DeletePost removes any post, regardless of owner.
func (s *AdminService) DeletePost(ctx context.Context, actorCrossRef, postID string) error {
	oid, err := parseObjectID(postID)
	if err != nil {
		return err
	}
	if err := s.Posts.Delete(ctx, oid); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.New(apperr.NotFound, "Post not found")
		}
		return apperr.Wrap(apperr.Internal, "post deletion failed", err)
	}
	s.Logger.WithFields(logrus.Fields{"admin": actorCrossRef, "post_id": postID}).Info("admin deleted post")
	return nil
}

// DeleteComment removes any comment from any post.
func (s *AdminService) DeleteComment(ctx context.Context, actorCrossRef, postID, commentID string) error {
	poid, err := parseObjectID(postID)
	if err != nil {
		return err
	}
	coid, err := parseObjectID(commentID)
	if err != nil {
		return err
	}
	if err := s.Posts.RemoveComment(ctx, poid, coid); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.New(apperr.NotFound, "Comment not found")
		}
		return apperr.Wrap(apperr.Internal, "comment deletion failed", err)
	}
	s.Logger.WithFields(logrus.Fields{"admin": actorCrossRef, "post_id": postID, "comment_id": commentID}).Info("admin deleted comment")
	return nil
}

// DeleteProject removes any project, regardless of owner.
func (s *AdminService) DeleteProject(ctx context.Context, actorCrossRef, projectID string) error {
	oid, err := parseObjectID(projectID)
	if err != nil {
		return err
	}
	if err := s.Projects.Delete(ctx, oid); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.New(apperr.NotFound, "Project not found")
		}
		return apperr.Wrap(apperr.Internal, "project deletion failed", err)
	}
	s.Logger.WithFields(logrus.Fields{"admin": actorCrossRef, "project_id": projectID}).Info("admin deleted project")
	return nil
}

// Analytics is the admin dashboard's platform counts.
type Analytics struct {
	ActiveUsers int64 `json:"active_users"`
	Profiles    int64 `json:"profiles"`
	Posts       int64 `json:"posts"`
	Projects    int64 `json:"projects"`
}

func (s *AdminService) GetAnalytics(ctx context.Context) (*Analytics, error) {
	activeUsers, err := s.Identities.CountActive(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "analytics failed", err)
	}
	profiles, err := s.Profiles.Count(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "analytics failed", err)
	}
	posts, err := s.Posts.Count(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "analytics failed", err)
	}
	projects, err := s.Projects.Count(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "analytics failed", err)
	}
	return &Analytics{ActiveUsers: activeUsers, Profiles: profiles, Posts: posts, Projects: projects}, nil
}
