package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/craftfolio/craftfolio-api/internal/domain/entity"
	repo "github.com/craftfolio/craftfolio-api/internal/domain/repository"
	"github.com/craftfolio/craftfolio-api/pkg/apperr"
	"github.com/craftfolio/craftfolio-api/pkg/uploader"
)

// UserService owns profile reads/writes and account deletion.
type UserService struct {
	Identities repo.IdentityRepository
	Profiles   repo.ProfileRepository
	Index      repo.ProfileIndex // optional
	Uploader   uploader.Uploader // optional; nil keeps raw URLs as-is
	Logger     *logrus.Logger
}

func NewUserService(identities repo.IdentityRepository, profiles repo.ProfileRepository, index repo.ProfileIndex, up uploader.Uploader, logger *logrus.Logger) *UserService {
	return &UserService{Identities: identities, Profiles: profiles, Index: index, Uploader: up, Logger: logger}
}

// GetPublicProfile returns the profile behind a friendly id. Deactivated
// profiles are indistinguishable from missing ones.
func (s *UserService) GetPublicProfile(ctx context.Context, friendlyID string) (*entity.Profile, error) {
	p, err := s.Profiles.GetByFriendlyID(ctx, friendlyID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "Profile not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "profile lookup failed", err)
	}
	if !p.Active {
		return nil, apperr.New(apperr.NotFound, "Profile not found")
	}
	return p, nil
}

// MinimalInfo is the session owner's identity summary for the frontend shell.
type MinimalInfo struct {
	ProfileID      string `json:"profile_id"`
	FriendlyID     string `json:"friendly_id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

func (s *UserService) GetLoggedUser(ctx context.Context, crossRef string) (*MinimalInfo, error) {
	p, err := s.Profiles.GetByCrossRef(ctx, crossRef)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "Profile not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "profile lookup failed", err)
	}
	return &MinimalInfo{
		ProfileID:      p.ID.Hex(),
		FriendlyID:     p.FriendlyID,
		Username:       p.Username,
		ProfilePicture: p.ProfilePicture,
	}, nil
}

type UpdateProfileInput struct {
	Username       *string
	Bio            *string
	Profession     *string
	Age            *int
	CountryOrigin  *string
	ProfilePicture *string // raw URL, re-hosted on change
	CoverImage     *string // raw URL, re-hosted on change
	Location       *entity.Location
}

// UpdateProfile applies a partial update to the session owner's profile.
// Image URLs are re-hosted through the uploader so the platform never serves
// third-party-hosted assets.
func (s *UserService) UpdateProfile(ctx context.Context, crossRef string, in UpdateProfileInput) (*entity.Profile, error) {
	p, err := s.Profiles.GetByCrossRef(ctx, crossRef)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "Profile not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "profile update failed", err)
	}

	if in.Username != nil && *in.Username != p.Username {
		if exists, err := s.Profiles.UsernameExists(ctx, *in.Username); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "profile update failed", err)
		} else if exists {
			return nil, apperr.New(apperr.Conflict, "Username already exists")
		}
		p.Username = *in.Username
	}
	if in.Bio != nil {
		p.Bio = *in.Bio
	}
	if in.Profession != nil {
		p.Profession = *in.Profession
	}
	if in.Age != nil {
		p.Age = in.Age
	}
	if in.CountryOrigin != nil {
		p.CountryOrigin = *in.CountryOrigin
	}
	if in.Location != nil {
		p.Location = *in.Location
	}
	if in.ProfilePicture != nil && *in.ProfilePicture != p.ProfilePicture {
		url, err := s.rehost(ctx, *in.ProfilePicture, "profiles")
		if err != nil {
			return nil, err
		}
		p.ProfilePicture = url
	}
	if in.CoverImage != nil && *in.CoverImage != p.CoverImage {
		url, err := s.rehost(ctx, *in.CoverImage, "covers")
		if err != nil {
			return nil, err
		}
		p.CoverImage = url
	}

	p.CompletedProfile = p.Completed()
	if err := s.Profiles.Update(ctx, p); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "profile update failed", err)
	}
	if s.Index != nil {
		if ierr := s.Index.Index(ctx, p); ierr != nil {
			s.Logger.WithError(ierr).WithField("cross_ref", crossRef).Warn("profile index update failed")
		}
	}
	return p, nil
}

func (s *UserService) rehost(ctx context.Context, rawURL, folder string) (string, error) {
	if s.Uploader == nil || rawURL == "" {
		return rawURL, nil
	}
	return s.Uploader.Upload(ctx, rawURL, folder)
}

// DeleteAccount soft-deletes the session owner in both stores. The
// relational leg is transactional with the document leg executed before
// commit; a document failure rolls the relational change back.
func (s *UserService) DeleteAccount(ctx context.Context, crossRef string) error {
	var existing *entity.Profile
	if p, err := s.Profiles.GetByCrossRef(ctx, crossRef); err == nil {
		existing = p
	}

	err := s.Identities.Deactivate(ctx, crossRef, func(ctx context.Context) error {
		if derr := s.Profiles.SoftDeleteByCrossRef(ctx, crossRef); derr != nil && !errors.Is(derr, repo.ErrNotFound) {
			return derr
		}
		return nil
	})
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.New(apperr.NotFound, "Account not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "account deletion failed", err)
	}

	if s.Index != nil && existing != nil {
		if ierr := s.Index.Remove(ctx, existing.ID); ierr != nil {
			s.Logger.WithError(ierr).WithField("cross_ref", crossRef).Warn("profile index removal failed")
		}
	}
	s.Logger.WithField("cross_ref", crossRef).Info("account soft-deleted")
	return nil
}
